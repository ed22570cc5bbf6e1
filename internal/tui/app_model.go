package tui

import (
	"daiw-cli/internal/assistant"
	"daiw-cli/internal/model"
	"daiw-cli/internal/store"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"go.uber.org/zap"
)

type pane int

const (
	paneChain pane = iota
	paneInspector
	paneAssistant
)

func (p pane) next() pane { return (p + 1) % 3 }

type modalKind int

const (
	modalNone modalKind = iota
	modalConfirmDelete
	modalRename
	modalEditField
	modalHelp
)

type appModel struct {
	session *store.Session
	router  *assistant.Router
	logger  *zap.Logger

	width  int
	height int
	focus  pane

	chain list.Model
	// fieldIdx indexes inspectorFields of the focused node.
	fieldIdx int

	chat    viewport.Model
	input   textinput.Model
	typing  bool
	spin    spinner.Model
	tracker assistant.Tracker
	// lyricsBusy holds lyrics nodes with a generation in flight.
	lyricsBusy map[string]bool
	imageSize  model.ImageSize
	listening  bool

	modal           modalKind
	confirmFocus    confirmModalFocus
	pendingDeleteID string
	editNodeID      string
	editField       string
	editLine        textinput.Model
	editArea        textarea.Model
	editMultiline   bool

	minibufferText string
}

func newAppModel(opts Options) appModel {
	s := opts.Session
	if s == nil {
		s = store.Seed(model.DefaultProjectMeta())
	}
	router := opts.Router
	if router == nil {
		router = assistant.NewRouter(nil, opts.Logger)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	size := opts.ImageSize
	if size == "" {
		size = model.ImageSize1K
	}

	in := textinput.New()
	in.Placeholder = "Ask for ideas, an analysis, lyrics or cover art"
	in.Prompt = "> "
	in.CharLimit = 2000

	line := textinput.New()
	line.Prompt = ""
	line.CharLimit = 500

	area := textarea.New()
	area.ShowLineNumbers = false
	area.Prompt = ""
	area.CharLimit = 0

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	m := appModel{
		session:    s,
		router:     router,
		logger:     logger,
		focus:      paneChain,
		chain:      newList(nodeItems(s.Nodes, s.SelectedID)),
		chat:       viewport.New(0, 0),
		input:      in,
		spin:       sp,
		lyricsBusy: map[string]bool{},
		imageSize:  size,
		editLine:   line,
		editArea:   area,
	}
	m.syncChainCursor()
	return m
}

func (m *appModel) showMinibuffer(text string) {
	m.minibufferText = text
}

// selectedNode resolves the focus on every use; it may have been removed.
func (m appModel) selectedNode() (model.Node, bool) {
	n, ok := m.session.Selected()
	if !ok {
		return model.Node{}, false
	}
	return *n, true
}

// inspectorFields lists the rows the inspector shows for n.
func inspectorFields(n model.Node) []string {
	return append([]string{"name"}, model.FieldNames(n.Type)...)
}
