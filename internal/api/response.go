package api

import (
	"encoding/json"
	"errors"
	"net/http"

	errs "github.com/matzehuels/tuigraph/pkg/errors"
)

// response is the envelope of every JSON reply.
type response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body response) {
	data, err := json.Marshal(body)
	if err != nil {
		status = http.StatusInternalServerError
		data, _ = json.Marshal(response{Error: "encode response: " + err.Error(), Code: string(errs.ErrCodeInternal)})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(data, '\n'))
}

func sendSuccess(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, response{Success: true, Data: data})
}

// sendError maps the error code of err to an HTTP status.
func sendError(w http.ResponseWriter, err error) {
	code := errs.GetCode(err)
	if code == "" {
		code = errs.ErrCodeInternal
	}
	writeJSON(w, statusFor(code), response{Error: detail(err), Code: string(code)})
}

func detail(err error) string {
	msg := errs.UserMessage(err)
	var e *errs.Error
	if errors.As(err, &e) && e.Cause != nil {
		msg += ": " + errs.UserMessage(e.Cause)
	}
	return msg
}

func statusFor(code errs.Code) int {
	switch code {
	case errs.ErrCodeInvalidInput, errs.ErrCodeInvalidGraph, errs.ErrCodeInvalidName, errs.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case errs.ErrCodeInvalidLiteral, errs.ErrCodeRender:
		return http.StatusUnprocessableEntity
	case errs.ErrCodeNotFound, errs.ErrCodeFileNotFound, errs.ErrCodeSessionNotFound:
		return http.StatusNotFound
	case errs.ErrCodeUnsupported:
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

// decodeJSON reads a size-limited JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidInput, err, "invalid JSON body")
	}
	return nil
}
