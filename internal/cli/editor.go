package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/tuigraph/pkg/catalog"
	errs "github.com/matzehuels/tuigraph/pkg/errors"
	"github.com/matzehuels/tuigraph/pkg/graph"
	"github.com/matzehuels/tuigraph/pkg/literal"
	"github.com/matzehuels/tuigraph/pkg/resolve"
	"github.com/matzehuels/tuigraph/pkg/session"
	"github.com/matzehuels/tuigraph/pkg/value"
)

// Editor styles
var (
	editorFrameStyle  = lipgloss.NewStyle().Padding(1, 2)
	editorActiveStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	editorLabelStyle  = lipgloss.NewStyle().Foreground(colorGray).Width(14)
)

// =============================================================================
// Screens
// =============================================================================

type screen int

const (
	screenMain screen = iota
	screenGraph
	screenGraphEditor
	screenNodeEditor
	screenEdgeEditor
	screenExiting
)

func (s screen) String() string {
	switch s {
	case screenMain:
		return "Main"
	case screenGraph:
		return "Graph"
	case screenGraphEditor:
		return "Graph Editor"
	case screenNodeEditor:
		return "Node Editor"
	case screenEdgeEditor:
		return "Edge Editor"
	case screenExiting:
		return "Exit"
	}
	return "?"
}

// =============================================================================
// Forms
// =============================================================================

type nodeField int

const (
	nodeFieldType nodeField = iota
	nodeFieldLabel
	nodeFieldParam
)

// nodeForm holds the node editor state. Values starts as a copy of the
// edited node's explicit values and is only written back on commit.
type nodeForm struct {
	id     uint64 // node being edited; 0 adds a new node
	field  nodeField
	typ    string
	label  string
	params []string
	param  int
	inputs map[string]string
	values map[string]value.Value
	errors map[string]string
	err    string // type or label error
}

func (f *nodeForm) current() string {
	switch f.field {
	case nodeFieldType:
		return f.typ
	case nodeFieldLabel:
		return f.label
	}
	return f.inputs[f.params[f.param]]
}

func (f *nodeForm) setCurrent(s string) {
	switch f.field {
	case nodeFieldType:
		f.typ = s
	case nodeFieldLabel:
		f.label = s
	default:
		f.inputs[f.params[f.param]] = s
	}
}

type edgeField int

const (
	edgeFieldLabel edgeField = iota
	edgeFieldFrom
	edgeFieldTo
)

type edgeForm struct {
	field edgeField
	label string
	from  uint64
	to    uint64
	err   string
}

// maxTypedID bounds id entry so accumulated digits cannot overflow.
const maxTypedID = 1<<53 - 1

// =============================================================================
// Messages
// =============================================================================

type exportedMsg struct {
	path string
	err  error
}

type savedMsg struct {
	err error
}

// =============================================================================
// EditorModel
// =============================================================================

// editorConfig wires the editor to its collaborators. Store and Session are
// both nil when the edit is not session backed. GraphPath is the file a
// confirmed quit writes the graph back to, if any.
type editorConfig struct {
	Catalog   *catalog.Catalog
	Graph     *graph.Graph
	GraphPath string
	Output    string
	Store     session.Store
	Session   *session.Session
}

// EditorModel is the bubbletea model of the interactive graph editor.
type EditorModel struct {
	ctx context.Context
	cfg editorConfig

	screen screen
	cursor int
	offset int
	height int

	node nodeForm
	edge edgeForm

	status    string
	statusErr bool
	dirty     bool
	confirmed bool // quit through the exit screen
}

func newEditorModel(ctx context.Context, cfg editorConfig) EditorModel {
	if cfg.Graph == nil {
		cfg.Graph = graph.New()
	}
	if cfg.Catalog == nil {
		cfg.Catalog = catalog.Empty()
	}
	return EditorModel{ctx: ctx, cfg: cfg, height: 15}
}

// Graph returns the edited graph.
func (m EditorModel) Graph() *graph.Graph { return m.cfg.Graph }

// Confirmed reports whether the user quit through the exit prompt (and the
// session, if any, was saved) rather than with ctrl+c.
func (m EditorModel) Confirmed() bool { return m.confirmed }

// Dirty reports whether nodes or edges were added or changed.
func (m EditorModel) Dirty() bool { return m.dirty }

func (m EditorModel) Init() tea.Cmd {
	return nil
}

func (m EditorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-12, 5)
		return m, nil
	case exportedMsg:
		if msg.err != nil {
			m.setError("export failed: %s", errs.UserMessage(msg.err))
		} else {
			m.setStatus("wrote %s", msg.path)
		}
		return m, nil
	case savedMsg:
		if msg.err != nil {
			m.screen = screenMain
			m.setError("save failed: %s", errs.UserMessage(msg.err))
			return m, nil
		}
		m.confirmed = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.screen {
		case screenMain:
			return m.updateMain(msg)
		case screenGraph:
			return m.updateGraph(msg)
		case screenGraphEditor:
			return m.updateGraphEditor(msg)
		case screenNodeEditor:
			return m.updateNodeEditor(msg), nil
		case screenEdgeEditor:
			return m.updateEdgeEditor(msg), nil
		case screenExiting:
			return m.updateExiting(msg)
		}
	}
	return m, nil
}

func (m EditorModel) updateMain(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "g", "G":
		m.screen = screenGraph
	case "w", "W":
		return m, m.exportCmd()
	case "q", "Q", "esc":
		m.screen = screenExiting
	}
	return m, nil
}

func (m EditorModel) updateGraph(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	nodes := m.cfg.Graph.SortedNodes()
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			if m.cursor < m.offset {
				m.offset = m.cursor
			}
		}
	case "down", "j":
		if m.cursor < len(nodes)-1 {
			m.cursor++
			if m.cursor >= m.offset+m.height {
				m.offset = m.cursor - m.height + 1
			}
		}
	case "enter":
		if m.cursor < len(nodes) {
			m.openNodeEditor(nodes[m.cursor])
		}
	case "e", "E":
		m.screen = screenGraphEditor
	case "w", "W":
		return m, m.exportCmd()
	case "q", "Q", "esc":
		m.screen = screenMain
	}
	return m, nil
}

func (m EditorModel) updateGraphEditor(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "n", "N":
		m.openNodeEditor(nil)
	case "e", "E":
		m.edge = edgeForm{}
		m.screen = screenEdgeEditor
	case "q", "Q", "esc":
		m.screen = screenGraph
	}
	return m, nil
}

func (m EditorModel) updateExiting(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		if m.cfg.Store != nil && m.cfg.Session != nil {
			return m, m.saveCmd()
		}
		m.confirmed = true
		return m, tea.Quit
	case "n", "N", "q", "Q", "esc":
		m.screen = screenMain
	}
	return m, nil
}

// =============================================================================
// Node Editor
// =============================================================================

// openNodeEditor starts editing n, or a new node when n is nil.
func (m *EditorModel) openNodeEditor(n *graph.NodeInstance) {
	f := nodeForm{
		inputs: map[string]string{},
		values: map[string]value.Value{},
		errors: map[string]string{},
	}
	if n != nil {
		f.id = n.ID
		f.typ = n.Type
		f.label = n.Label
		for k, v := range n.Values {
			f.values[k] = v
		}
	}
	m.node = f
	m.loadParams()
	m.screen = screenNodeEditor
}

// loadParams refreshes the parameter fields for the form's type and
// pre-fills them from the explicit values.
func (m *EditorModel) loadParams() {
	f := &m.node
	f.params = nil
	f.param = 0
	if def, ok := m.cfg.Catalog.Type(f.typ); ok {
		f.params = def.ParamNames()
	}
	for _, name := range f.params {
		f.inputs[name] = literal.Format(f.values[name])
	}
}

func (m EditorModel) updateNodeEditor(msg tea.KeyMsg) EditorModel {
	f := &m.node
	switch msg.Type {
	case tea.KeyEsc:
		m.node = nodeForm{}
		m.screen = screenGraphEditor
		m.setStatus("node edit cancelled")
	case tea.KeyEnter:
		m.nodeEnter()
	case tea.KeyTab:
		if f.field == nodeFieldType {
			f.typ = m.completeType(f.typ)
		}
	case tea.KeyUp:
		if f.field == nodeFieldParam && f.param > 0 {
			f.param--
		}
	case tea.KeyDown:
		if f.field == nodeFieldParam && f.param < len(f.params)-1 {
			f.param++
		}
	case tea.KeyBackspace:
		s := []rune(f.current())
		if len(s) > 0 {
			f.setCurrent(string(s[:len(s)-1]))
		}
	case tea.KeyRunes, tea.KeySpace:
		f.setCurrent(f.current() + typed(msg))
	}
	return m
}

// nodeEnter validates the active field and advances, committing after the
// last field.
func (m *EditorModel) nodeEnter() {
	f := &m.node
	switch f.field {
	case nodeFieldType:
		if err := errs.ValidateName(f.typ); err != nil {
			f.err = errs.UserMessage(err)
			return
		}
		f.err = ""
		m.loadParams()
		f.field = nodeFieldLabel
		return
	case nodeFieldLabel:
		if err := errs.ValidateLabel(f.label); err != nil {
			f.err = errs.UserMessage(err)
			return
		}
		f.err = ""
		if len(f.params) > 0 {
			f.field = nodeFieldParam
			return
		}
		m.commitNode()
		return
	}

	name := f.params[f.param]
	raw := f.inputs[name]
	def, _ := m.cfg.Catalog.Type(f.typ)
	pdef, _ := def.Param(name)
	if raw == "" {
		delete(f.values, name)
		delete(f.errors, name)
	} else {
		v, err := literal.Parse(raw, pdef)
		if err != nil {
			f.errors[name] = err.Error()
			return
		}
		f.values[name] = v
		delete(f.errors, name)
	}
	if f.param < len(f.params)-1 {
		f.param++
		return
	}
	m.commitNode()
}

func (m *EditorModel) commitNode() {
	f := m.node
	g := m.cfg.Graph
	if n, ok := g.Node(f.id); ok {
		n.Type = f.typ
		n.Label = f.label
		n.Values = f.values
		m.setStatus("updated node #%d", n.ID)
	} else {
		n := graph.NewNodeInstance(g.NextNodeID(), f.typ, f.label)
		n.Values = f.values
		if err := g.AddNode(n); err != nil {
			m.node.err = errs.UserMessage(err)
			return
		}
		m.setStatus("added node #%d", n.ID)
	}
	m.dirty = true
	m.node = nodeForm{}
	m.screen = screenGraphEditor
}

// completeType completes the typed text to the first catalog type with that
// prefix. A complete type name advances to the next one, so repeated Tab
// presses cycle through the catalog.
func (m EditorModel) completeType(typed string) string {
	names := m.cfg.Catalog.TypeNames()
	if len(names) == 0 {
		return typed
	}
	for i, n := range names {
		if n == typed {
			return names[(i+1)%len(names)]
		}
	}
	for _, n := range names {
		if strings.HasPrefix(n, typed) {
			return n
		}
	}
	return names[0]
}

// =============================================================================
// Edge Editor
// =============================================================================

func (m EditorModel) updateEdgeEditor(msg tea.KeyMsg) EditorModel {
	f := &m.edge
	switch msg.Type {
	case tea.KeyEsc:
		m.edge = edgeForm{}
		m.screen = screenGraphEditor
		m.setStatus("edge edit cancelled")
	case tea.KeyTab:
		f.field = (f.field + 1) % 3
	case tea.KeyEnter:
		if f.field < edgeFieldTo {
			f.field++
			return m
		}
		m.commitEdge()
	case tea.KeyBackspace:
		switch f.field {
		case edgeFieldLabel:
			if s := []rune(f.label); len(s) > 0 {
				f.label = string(s[:len(s)-1])
			}
		case edgeFieldFrom:
			f.from = 0
			f.field = edgeFieldLabel
		case edgeFieldTo:
			f.to = 0
			f.field = edgeFieldFrom
		}
	case tea.KeyRunes, tea.KeySpace:
		if f.field == edgeFieldLabel {
			f.label += typed(msg)
			return m
		}
		for _, r := range msg.Runes {
			if r < '0' || r > '9' {
				continue
			}
			id := &f.from
			if f.field == edgeFieldTo {
				id = &f.to
			}
			if next := *id*10 + uint64(r-'0'); next <= maxTypedID {
				*id = next
			}
		}
	}
	return m
}

func (m *EditorModel) commitEdge() {
	f := &m.edge
	switch {
	case f.from == 0:
		f.err, f.field = "from id required", edgeFieldFrom
		return
	case f.to == 0:
		f.err, f.field = "to id required", edgeFieldTo
		return
	}
	if err := errs.ValidateLabel(f.label); err != nil {
		f.err, f.field = errs.UserMessage(err), edgeFieldLabel
		return
	}
	e := m.cfg.Graph.AddEdge(f.from, f.to, f.label)
	m.setStatus("added edge #%d %d → %d", e.ID, e.From, e.To)
	m.dirty = true
	m.edge = edgeForm{}
	m.screen = screenGraphEditor
}

// =============================================================================
// Commands
// =============================================================================

func (m EditorModel) exportCmd() tea.Cmd {
	ctx, path, g, cat := m.ctx, m.cfg.Output, m.cfg.Graph, m.cfg.Catalog
	return func() tea.Msg {
		_, err := exportDocument(ctx, path, g, cat)
		return exportedMsg{path: path, err: err}
	}
}

func (m EditorModel) saveCmd() tea.Cmd {
	ctx, store, sess, g := m.ctx, m.cfg.Store, m.cfg.Session, m.cfg.Graph
	return func() tea.Msg {
		sess.Graph = g
		sess.Touch()
		return savedMsg{err: store.Set(ctx, sess)}
	}
}

// typed returns the text a rune or space key inserts.
func typed(msg tea.KeyMsg) string {
	if msg.Type == tea.KeySpace && len(msg.Runes) == 0 {
		return " "
	}
	return string(msg.Runes)
}

func (m *EditorModel) setStatus(format string, args ...any) {
	m.status, m.statusErr = fmt.Sprintf(format, args...), false
}

func (m *EditorModel) setError(format string, args ...any) {
	m.status, m.statusErr = fmt.Sprintf(format, args...), true
}

// =============================================================================
// View
// =============================================================================

func (m EditorModel) View() string {
	var b strings.Builder

	title := appName + " · " + m.screen.String()
	if m.cfg.Session != nil {
		title += " · " + m.cfg.Session.Name
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n\n")

	switch m.screen {
	case screenMain:
		b.WriteString(m.viewMain())
	case screenGraph, screenGraphEditor:
		b.WriteString(m.viewGraph())
	case screenNodeEditor:
		b.WriteString(m.viewNodeEditor())
	case screenEdgeEditor:
		b.WriteString(m.viewEdgeEditor())
	case screenExiting:
		b.WriteString(m.viewExiting())
	}

	b.WriteString("\n\n")
	if m.status != "" {
		if m.statusErr {
			b.WriteString(StyleError.Render(m.status))
		} else {
			b.WriteString(StyleSuccess.Render(m.status))
		}
		b.WriteString("\n")
	}
	b.WriteString(listDimStyle.Render(m.keyHints()))
	return editorFrameStyle.Render(b.String())
}

func (m EditorModel) keyHints() string {
	switch m.screen {
	case screenMain:
		return "g graph  w write " + m.cfg.Output + "  q quit"
	case screenGraph:
		return "↑/↓ select  ⏎ edit node  e add  w write  q back"
	case screenGraphEditor:
		return "n new node  e new edge  q back"
	case screenNodeEditor:
		return "⏎ next/commit  tab complete type  ↑/↓ param  esc cancel"
	case screenEdgeEditor:
		return "⏎ next/commit  tab next field  ⌫ clear id  esc cancel"
	case screenExiting:
		return "y yes  n no"
	}
	return ""
}

func (m EditorModel) viewMain() string {
	g := m.cfg.Graph
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", editorLabelStyle.Render("catalog"), StyleValue.Render(fmt.Sprintf("%d types, root %q", len(m.cfg.Catalog.Types), m.cfg.Catalog.Root())))
	fmt.Fprintf(&b, "%s %s\n", editorLabelStyle.Render("graph"), StyleValue.Render(fmt.Sprintf("%d nodes, %d edges", len(g.Nodes), len(g.Edges))))
	if d := len(g.DanglingEdges()); d > 0 {
		fmt.Fprintf(&b, "%s %s\n", editorLabelStyle.Render(""), StyleWarning.Render(fmt.Sprintf("%d dangling edges", d)))
	}
	fmt.Fprintf(&b, "%s %s", editorLabelStyle.Render("output"), StyleValue.Render(m.cfg.Output))
	return b.String()
}

func (m EditorModel) viewGraph() string {
	g := m.cfg.Graph
	nodes := g.SortedNodes()
	if len(nodes) == 0 {
		return StyleDim.Render("no nodes yet")
	}

	end := min(m.offset+m.height, len(nodes))
	rows := make([][]string, 0, end-m.offset)
	for i := m.offset; i < end; i++ {
		n := nodes[i]
		cursor := "  "
		if i == m.cursor && m.screen == screenGraph {
			cursor = "▸ "
		}
		typ := n.Type
		if _, ok := m.cfg.Catalog.Type(n.Type); !ok {
			typ += " (unknown)"
		}
		rows = append(rows, []string{
			cursor,
			strconv.FormatUint(n.ID, 10),
			typ,
			n.Label,
			strings.Join(g.IncomingLabels(n.ID), ", "),
			strings.Join(g.OutgoingLabels(n.ID), ", "),
		})
	}

	var b strings.Builder
	b.WriteString(renderTable([]string{"", "ID", "Type", "Label", "In", "Out"}, rows))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]  %d edges", m.cursor+1, len(nodes), len(g.Edges))))
	return b.String()
}

func (m EditorModel) viewNodeEditor() string {
	f := m.node
	var b strings.Builder

	heading := "new node"
	if f.id != 0 {
		heading = fmt.Sprintf("node #%d", f.id)
	}
	b.WriteString(StyleHighlight.Render(heading))
	b.WriteString("\n\n")

	b.WriteString(m.field("type", f.typ, f.field == nodeFieldType))
	b.WriteString(m.field("label", f.label, f.field == nodeFieldLabel))
	if f.err != "" {
		b.WriteString("  " + StyleError.Render(f.err) + "\n")
	}
	if len(f.params) == 0 {
		if f.field != nodeFieldType {
			if _, ok := m.cfg.Catalog.Type(f.typ); !ok {
				b.WriteString(StyleWarning.Render("unknown type: explicit values are kept as they are") + "\n")
			}
		}
		return b.String()
	}

	b.WriteString("\n")
	def, _ := m.cfg.Catalog.Type(f.typ)
	preview := graph.NewNodeInstance(f.id, f.typ, f.label)
	if f.id == 0 {
		preview.ID = m.cfg.Graph.NextNodeID()
	}
	for i, name := range f.params {
		pdef, _ := def.Param(name)
		active := f.field == nodeFieldParam && f.param == i
		b.WriteString(m.field(name, f.inputs[name], active))
		switch {
		case f.errors[name] != "":
			b.WriteString("  " + StyleError.Render(f.errors[name]) + "\n")
		case f.inputs[name] == "":
			hint := pdef.Describe()
			if v, ok := resolve.Derived(m.cfg.Graph, &preview, pdef); ok {
				if lit, err := value.Literal(v); err == nil {
					hint = "derived: " + lit
				}
			}
			b.WriteString("  " + StyleDim.Render(hint) + "\n")
		}
	}
	return b.String()
}

func (m EditorModel) viewEdgeEditor() string {
	f := m.edge
	id := func(v uint64) string {
		if v == 0 {
			return ""
		}
		return strconv.FormatUint(v, 10)
	}

	var b strings.Builder
	b.WriteString(StyleHighlight.Render(fmt.Sprintf("new edge #%d", m.cfg.Graph.NextEdgeID())))
	b.WriteString("\n\n")
	b.WriteString(m.field("label", f.label, f.field == edgeFieldLabel))
	b.WriteString(m.field("from", id(f.from), f.field == edgeFieldFrom))
	b.WriteString(m.field("to", id(f.to), f.field == edgeFieldTo))
	if f.err != "" {
		b.WriteString("  " + StyleError.Render(f.err) + "\n")
	}
	for _, v := range []uint64{f.from, f.to} {
		if v == 0 {
			continue
		}
		if _, ok := m.cfg.Graph.Node(v); !ok {
			b.WriteString(StyleWarning.Render(fmt.Sprintf("node #%d does not exist (edge will dangle)", v)) + "\n")
		}
	}
	return b.String()
}

func (m EditorModel) viewExiting() string {
	if m.cfg.Store != nil && m.cfg.Session != nil {
		return fmt.Sprintf("Save session %s and quit? (y/n)", StyleValue.Render(m.cfg.Session.Name))
	}
	if m.dirty && m.cfg.GraphPath != "" {
		return fmt.Sprintf("Save graph to %s and quit? (y/n)", StyleValue.Render(m.cfg.GraphPath))
	}
	if m.dirty {
		return "Quit? Unsaved changes are lost unless written with w. (y/n)"
	}
	return "Quit? (y/n)"
}

func (m EditorModel) field(name, text string, active bool) string {
	if active {
		return editorLabelStyle.Render(name) + " " + editorActiveStyle.Render(text+"█") + "\n"
	}
	return editorLabelStyle.Render(name) + " " + StyleValue.Render(text) + "\n"
}
