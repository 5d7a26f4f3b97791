package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/tuigraph/pkg/catalog"
	"github.com/matzehuels/tuigraph/pkg/document"
	"github.com/matzehuels/tuigraph/pkg/graph"
	"github.com/matzehuels/tuigraph/pkg/session"
	"github.com/matzehuels/tuigraph/pkg/value"
)

// key builds the message bubbletea sends for a named key or a typed rune.
func key(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

// press feeds keys to m and returns the final model and the last command.
func press(t *testing.T, m EditorModel, keys ...string) (EditorModel, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(key(k))
		m = next.(EditorModel)
	}
	return m, cmd
}

// typeText types s one rune at a time.
func typeText(t *testing.T, m EditorModel, s string) EditorModel {
	t.Helper()
	for _, r := range s {
		m, _ = press(t, m, string(r))
	}
	return m
}

func defaultCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("Default() error: %v", err)
	}
	return cat
}

func newTestEditor(t *testing.T, g *graph.Graph) EditorModel {
	t.Helper()
	return newEditorModel(context.Background(), editorConfig{
		Catalog: defaultCatalog(t),
		Graph:   g,
		Output:  filepath.Join(t.TempDir(), "out.toml"),
	})
}

// addNode drives the node editor from the graph editor screen, leaving all
// parameters empty.
func addNode(t *testing.T, m EditorModel, typ, label string) EditorModel {
	t.Helper()
	m, _ = press(t, m, "n")
	m = typeText(t, m, typ)
	m, _ = press(t, m, "enter")
	m = typeText(t, m, label)
	m, _ = press(t, m, "enter")
	for m.screen == screenNodeEditor {
		m, _ = press(t, m, "enter")
	}
	return m
}

func TestEditorBuildsGraph(t *testing.T) {
	m := newTestEditor(t, nil)
	m, _ = press(t, m, "g", "e")
	if m.screen != screenGraphEditor {
		t.Fatalf("screen = %v, want graph editor", m.screen)
	}

	m = addNode(t, m, "cstr", "lane1.t1")
	m = addNode(t, m, "sensor", "")

	m, _ = press(t, m, "e")
	m = typeText(t, m, "lane1_t1_out")
	m, _ = press(t, m, "enter", "1", "enter", "2", "enter")
	if m.screen != screenGraphEditor {
		t.Fatalf("screen after edge commit = %v, want graph editor", m.screen)
	}

	g := m.Graph()
	wantNodes := []graph.NodeInstance{
		graph.NewNodeInstance(1, "cstr", "lane1.t1"),
		graph.NewNodeInstance(2, "sensor", ""),
	}
	if diff := cmp.Diff(wantNodes, g.Nodes); diff != "" {
		t.Errorf("nodes mismatch (-want +got):\n%s", diff)
	}
	wantEdges := []graph.Edge{{ID: 1, From: 1, To: 2, Label: "lane1_t1_out"}}
	if diff := cmp.Diff(wantEdges, g.Edges); diff != "" {
		t.Errorf("edges mismatch (-want +got):\n%s", diff)
	}
	if !m.Dirty() {
		t.Error("model should be dirty after edits")
	}

	out, err := document.Render(g, m.cfg.Catalog)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	want := "[[units.cstr]]\nname = \"lane1.t1\"\nout = \"lane1_t1_out\"\n"
	if !strings.Contains(out, want) {
		t.Errorf("document missing cstr record:\n%s", out)
	}
}

func TestEditorNodeTypeRequired(t *testing.T) {
	m := newTestEditor(t, nil)
	m, _ = press(t, m, "g", "e", "n", "enter")
	if m.node.field != nodeFieldType {
		t.Fatalf("field = %v, want type field to stay active", m.node.field)
	}
	if m.node.err == "" {
		t.Error("empty type should report an error")
	}
}

func TestEditorParamParseError(t *testing.T) {
	m := newTestEditor(t, nil)
	m, _ = press(t, m, "g", "e", "n")
	m = typeText(t, m, "sensor")
	m, _ = press(t, m, "enter")
	m = typeText(t, m, "s")
	m, _ = press(t, m, "enter", "enter", "enter") // label, name, in

	if got := m.node.params[m.node.param]; got != "threshold" {
		t.Fatalf("active param = %q, want threshold", got)
	}
	if !strings.Contains(m.View(), `derived: "s"`) {
		t.Errorf("view should preview the derived name:\n%s", m.View())
	}

	m = typeText(t, m, "abc")
	m, _ = press(t, m, "enter")
	if got := m.node.params[m.node.param]; got != "threshold" {
		t.Fatalf("parse error should keep threshold active, got %q", got)
	}
	if m.node.errors["threshold"] == "" {
		t.Fatal("parse error not reported")
	}
	if _, ok := m.node.values["threshold"]; ok {
		t.Error("failed parse must not set a value")
	}

	m, _ = press(t, m, "backspace", "backspace", "backspace")
	m = typeText(t, m, " 0.5 ")
	m, _ = press(t, m, "enter", "enter") // threshold, enabled
	if m.screen != screenGraphEditor {
		t.Fatalf("screen = %v, want graph editor after commit", m.screen)
	}

	n, ok := m.Graph().Node(1)
	if !ok {
		t.Fatal("node 1 not added")
	}
	want := map[string]value.Value{"threshold": value.Float(0.5)}
	if diff := cmp.Diff(want, n.Values); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestEditorEditExistingNode(t *testing.T) {
	g := graph.New()
	n := graph.NewNodeInstance(1, "sensor", "s1")
	n.SetValue("threshold", value.Float(0.5))
	n.SetValue("enabled", value.Bool(true))
	if err := g.AddNode(n); err != nil {
		t.Fatal(err)
	}

	m := newTestEditor(t, g)
	m, _ = press(t, m, "g", "enter")
	if m.screen != screenNodeEditor || m.node.id != 1 {
		t.Fatalf("enter on graph screen should edit node 1, got screen %v id %d", m.screen, m.node.id)
	}
	if got := m.node.inputs["threshold"]; got != "0.5" {
		t.Errorf("threshold pre-fill = %q, want 0.5", got)
	}
	if got := m.node.inputs["enabled"]; got != "true" {
		t.Errorf("enabled pre-fill = %q, want true", got)
	}

	// Type and label unchanged, then clear threshold.
	m, _ = press(t, m, "enter", "enter", "down", "down", "backspace", "backspace", "backspace", "enter", "enter")
	if m.screen != screenGraphEditor {
		t.Fatalf("screen = %v, want graph editor", m.screen)
	}

	got, _ := m.Graph().Node(1)
	want := map[string]value.Value{"enabled": value.Bool(true)}
	if diff := cmp.Diff(want, got.Values); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}
	if len(m.Graph().Nodes) != 1 {
		t.Errorf("editing must not add nodes, got %d", len(m.Graph().Nodes))
	}
}

func TestEditorCancelKeepsNode(t *testing.T) {
	g := graph.New()
	n := graph.NewNodeInstance(1, "sensor", "s1")
	n.SetValue("threshold", value.Float(0.5))
	if err := g.AddNode(n); err != nil {
		t.Fatal(err)
	}

	m := newTestEditor(t, g)
	m, _ = press(t, m, "g", "enter", "enter", "backspace", "backspace", "enter", "down", "down")
	m = typeText(t, m, "x")
	m, _ = press(t, m, "enter", "esc")

	got, _ := m.Graph().Node(1)
	if got.Label != "s1" {
		t.Errorf("label = %q, cancelled edit must not change it", got.Label)
	}
	if diff := cmp.Diff(map[string]value.Value{"threshold": value.Float(0.5)}, got.Values); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}
	if m.Dirty() {
		t.Error("cancelled edit should not mark the model dirty")
	}
}

func TestEditorEdgeFields(t *testing.T) {
	m := newTestEditor(t, nil)
	m, _ = press(t, m, "g", "e", "e")

	m = typeText(t, m, "ab")
	m, _ = press(t, m, "backspace")
	if m.edge.label != "a" {
		t.Errorf("label = %q, want a", m.edge.label)
	}

	m, _ = press(t, m, "tab", "1", "x", "2")
	if m.edge.field != edgeFieldFrom || m.edge.from != 12 {
		t.Errorf("from = %d on field %v, want 12 on from", m.edge.from, m.edge.field)
	}

	m, _ = press(t, m, "enter", "7", "backspace")
	if m.edge.field != edgeFieldFrom || m.edge.to != 0 {
		t.Errorf("backspace on to should clear it and step back, got to=%d field=%v", m.edge.to, m.edge.field)
	}

	m, _ = press(t, m, "backspace")
	if m.edge.field != edgeFieldLabel || m.edge.from != 0 {
		t.Errorf("backspace on from should clear it and step back, got from=%d field=%v", m.edge.from, m.edge.field)
	}

	m, _ = press(t, m, "tab", "tab", "tab")
	if m.edge.field != edgeFieldLabel {
		t.Errorf("tab should cycle back to label, got %v", m.edge.field)
	}
}

func TestEditorEdgeRequiresEndpoints(t *testing.T) {
	m := newTestEditor(t, nil)
	m, _ = press(t, m, "g", "e", "e", "enter", "enter", "enter")
	if m.screen != screenEdgeEditor {
		t.Fatalf("commit without ids should stay in edge editor, got %v", m.screen)
	}
	if m.edge.field != edgeFieldFrom || m.edge.err == "" {
		t.Errorf("want error on from field, got field %v err %q", m.edge.field, m.edge.err)
	}

	m, _ = press(t, m, "esc")
	if m.screen != screenGraphEditor || len(m.Graph().Edges) != 0 {
		t.Errorf("esc should cancel, got screen %v and %d edges", m.screen, len(m.Graph().Edges))
	}
}

func TestEditorDanglingEdge(t *testing.T) {
	m := newTestEditor(t, nil)
	m, _ = press(t, m, "g", "e", "e", "enter", "4", "enter", "5")
	if !strings.Contains(m.View(), "#4 does not exist") {
		t.Errorf("view should warn about missing endpoint:\n%s", m.View())
	}
	m, _ = press(t, m, "enter")
	want := []graph.Edge{{ID: 1, From: 4, To: 5}}
	if diff := cmp.Diff(want, m.Graph().Edges); diff != "" {
		t.Errorf("edges mismatch (-want +got):\n%s", diff)
	}
}

func TestEditorTypeCompletion(t *testing.T) {
	m := newTestEditor(t, nil)
	tests := []struct {
		typed string
		want  string
	}{
		{"", "cstr"},
		{"cstr", "merge"},
		{"sensor", "cstr"},
		{"s", "sensor"},
		{"zzz", "cstr"},
	}
	for _, tt := range tests {
		if got := m.completeType(tt.typed); got != tt.want {
			t.Errorf("completeType(%q) = %q, want %q", tt.typed, got, tt.want)
		}
	}
}

func TestEditorExport(t *testing.T) {
	g := graph.New()
	if err := g.AddNode(graph.NewNodeInstance(1, "cstr", "c1")); err != nil {
		t.Fatal(err)
	}
	m := newTestEditor(t, g)

	m, cmd := press(t, m, "w")
	if cmd == nil {
		t.Fatal("w should return an export command")
	}
	next, _ := m.Update(cmd())
	m = next.(EditorModel)
	if m.statusErr {
		t.Fatalf("export failed: %s", m.status)
	}

	data, err := os.ReadFile(m.cfg.Output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	want, _ := document.Render(g, m.cfg.Catalog)
	if string(data) != want {
		t.Errorf("exported document mismatch:\ngot:\n%s\nwant:\n%s", data, want)
	}
}

func TestEditorExportError(t *testing.T) {
	m := newEditorModel(context.Background(), editorConfig{
		Catalog: defaultCatalog(t),
		Output:  filepath.Join(t.TempDir(), "missing", "out.toml"),
	})
	m, cmd := press(t, m, "w")
	next, _ := m.Update(cmd())
	m = next.(EditorModel)
	if !m.statusErr || !strings.Contains(m.status, "export failed") {
		t.Errorf("status = %q (err %v), want export failure", m.status, m.statusErr)
	}
}

func TestEditorExit(t *testing.T) {
	m := newTestEditor(t, nil)

	m, _ = press(t, m, "q")
	if m.screen != screenExiting {
		t.Fatalf("q on main should ask to exit, got %v", m.screen)
	}
	m, _ = press(t, m, "n")
	if m.screen != screenMain {
		t.Fatalf("n should return to main, got %v", m.screen)
	}

	m, cmd := press(t, m, "q", "y")
	if cmd == nil {
		t.Fatal("y should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("y should return tea.Quit")
	}
	if !m.Confirmed() {
		t.Error("quit through the prompt should be confirmed")
	}
}

func TestEditorCtrlC(t *testing.T) {
	m := newTestEditor(t, nil)
	m, cmd := press(t, m, "g", "e", "n", "ctrl+c")
	if cmd == nil {
		t.Fatal("ctrl+c should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("ctrl+c should return tea.Quit")
	}
	if m.Confirmed() {
		t.Error("ctrl+c must not count as confirmed")
	}
}

func TestEditorSavesSession(t *testing.T) {
	ctx := context.Background()
	store, err := session.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	sess := session.New("demo", nil)
	before := sess.UpdatedAt

	m := newEditorModel(ctx, editorConfig{
		Catalog: defaultCatalog(t),
		Graph:   sess.Graph,
		Output:  filepath.Join(t.TempDir(), "out.toml"),
		Store:   store,
		Session: sess,
	})
	m, _ = press(t, m, "g", "e")
	m = addNode(t, m, "cstr", "c1")
	m, _ = press(t, m, "q", "q", "q")
	if m.screen != screenExiting {
		t.Fatalf("screen = %v, want exit prompt", m.screen)
	}

	time.Sleep(time.Millisecond)
	m, cmd := press(t, m, "y")
	if cmd == nil {
		t.Fatal("y should return a save command")
	}
	next, quit := m.Update(cmd())
	m = next.(EditorModel)
	if quit == nil || !m.Confirmed() {
		t.Fatalf("successful save should quit, status %q", m.status)
	}

	got, err := store.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if len(got.Graph.Nodes) != 1 || got.Graph.Nodes[0].Label != "c1" {
		t.Errorf("saved graph = %+v, want one node c1", got.Graph.Nodes)
	}
	if !got.UpdatedAt.After(before) {
		t.Errorf("UpdatedAt = %v, want after %v", got.UpdatedAt, before)
	}
}

func TestEditorViewScreens(t *testing.T) {
	m := newTestEditor(t, nil)
	tests := []struct {
		keys []string
		want string
	}{
		{nil, "Main"},
		{[]string{"g"}, "no nodes yet"},
		{[]string{"g", "e"}, "n new node"},
		{[]string{"g", "e", "n"}, "new node"},
		{[]string{"g", "e", "e"}, "new edge #1"},
		{[]string{"q"}, "Quit?"},
	}
	for _, tt := range tests {
		got, _ := press(t, m, tt.keys...)
		if view := got.View(); !strings.Contains(view, tt.want) {
			t.Errorf("keys %v: view missing %q:\n%s", tt.keys, tt.want, view)
		}
	}
}

func TestEditorExitPromptNamesGraphFile(t *testing.T) {
	m := newTestEditor(t, nil)
	m.cfg.GraphPath = "pipeline.toml"

	m, _ = press(t, m, "q")
	if strings.Contains(m.View(), "pipeline.toml") {
		t.Error("clean graph should not offer to save")
	}

	m, _ = press(t, m, "n", "g", "e")
	m = addNode(t, m, "sensor", "s1")
	m, _ = press(t, m, "q", "q", "q")
	if m.screen != screenExiting {
		t.Fatalf("screen = %v, want exit", m.screen)
	}
	if view := m.View(); !strings.Contains(view, "Save graph to") || !strings.Contains(view, "pipeline.toml") {
		t.Errorf("exit prompt should name the graph file:\n%s", view)
	}
}
