// Package documents provides the indexed documents view for the TUI.
package documents

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// ErrNoCatalogService is returned when the catalog service is not configured.
var ErrNoCatalogService = errors.New("catalog service not available")

// View lists the indexed documents and offers an index reset.
type View struct {
	ctx            context.Context
	styles         *styles.Styles
	catalogService driving.CatalogService

	documents    []domain.IndexedDocument
	selected     int
	scrollOffset int
	width        int
	height       int
	ready        bool
	err          error
	loading      bool
	confirming   bool
	notice       string
}

// NewView creates a new documents view.
func NewView(s *styles.Styles, catalogService driving.CatalogService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		ctx:            context.Background(),
		styles:         s,
		catalogService: catalogService,
	}
}

// WithContext sets the context used for catalog calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init starts loading the document listing.
func (v *View) Init() tea.Cmd {
	v.loading = true
	v.confirming = false
	v.notice = ""
	return v.loadDocuments()
}

func (v *View) loadDocuments() tea.Cmd {
	svc := v.catalogService
	ctx := v.ctx
	return func() tea.Msg {
		if svc == nil {
			return messages.DocumentsLoaded{Err: ErrNoCatalogService}
		}
		docs, err := svc.Documents(ctx)
		return messages.DocumentsLoaded{Documents: docs, Err: err}
	}
}

func (v *View) clearIndex() tea.Cmd {
	svc := v.catalogService
	ctx := v.ctx
	return func() tea.Msg {
		if svc == nil {
			return messages.IndexCleared{Err: ErrNoCatalogService}
		}
		return messages.IndexCleared{Err: svc.Reset(ctx)}
	}
}

// Update handles messages for the documents view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		if v.confirming {
			return v.handleConfirmKey(msg)
		}
		return v.handleKeyMsg(msg)

	case messages.DocumentsLoaded:
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		v.documents = msg.Documents
		if v.selected >= len(v.documents) {
			v.selected = max(len(v.documents)-1, 0)
		}
		v.adjustScroll()
		return v, nil

	case messages.IndexCleared:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.notice = "Vector index cleared"
		v.selected = 0
		v.scrollOffset = 0
		v.loading = true
		return v, v.loadDocuments()

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.selected > 0 {
			v.selected--
			v.adjustScroll()
		}
	case "down", "j":
		if v.selected < len(v.documents)-1 {
			v.selected++
			v.adjustScroll()
		}
	case "r":
		v.loading = true
		v.notice = ""
		return v, v.loadDocuments()
	case "x":
		if len(v.documents) > 0 {
			v.confirming = true
		}
	case "esc":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}

	return v, nil
}

func (v *View) handleConfirmKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	v.confirming = false
	if msg.String() == "y" {
		return v, v.clearIndex()
	}
	return v, nil
}

// adjustScroll adjusts the scroll offset to keep the selected item visible.
func (v *View) adjustScroll() {
	visible := v.visibleItemCount()
	if v.selected < v.scrollOffset {
		v.scrollOffset = v.selected
	} else if v.selected >= v.scrollOffset+visible {
		v.scrollOffset = v.selected - visible + 1
	}
}

func (v *View) visibleItemCount() int {
	// title, header, footer and padding
	return max(v.height-9, 1)
}

// View renders the documents view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render(fmt.Sprintf("Indexed documents (%d)", len(v.documents))))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading documents..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case len(v.documents) == 0:
		if v.notice != "" {
			b.WriteString(v.styles.Success.Render(v.notice))
			b.WriteString("\n")
		}
		b.WriteString(v.styles.Muted.Render("No documents indexed. Ingest PDFs with `docqa ingest`."))
	default:
		b.WriteString(v.renderTable())
	}

	b.WriteString("\n\n")
	if v.confirming {
		b.WriteString(v.styles.Warning.Render(
			fmt.Sprintf("Delete all passages of %d documents? [y] yes  [any key] cancel", len(v.documents))))
		return b.String()
	}
	b.WriteString(v.styles.Help.Render("[↑/↓] navigate  [r] reload  [x] clear index  [esc] back"))
	return b.String()
}

func (v *View) renderTable() string {
	var b strings.Builder

	nameWidth := max(v.width-30, 20)
	b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  %-*s %9s %6s", nameWidth, "NAME", "PASSAGES", "PAGES")))
	b.WriteString("\n")

	visible := v.visibleItemCount()
	end := min(v.scrollOffset+visible, len(v.documents))
	for i := v.scrollOffset; i < end; i++ {
		b.WriteString(v.renderDocument(i, v.documents[i], nameWidth))
		b.WriteString("\n")
	}

	if len(v.documents) > visible {
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [%d-%d of %d]", v.scrollOffset+1, end, len(v.documents))))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (v *View) renderDocument(index int, doc domain.IndexedDocument, nameWidth int) string {
	name := doc.Name
	if len([]rune(name)) > nameWidth {
		name = string([]rune(name)[:nameWidth-3]) + "..."
	}

	pages := "-"
	if doc.Pages > 0 {
		pages = fmt.Sprintf("%d", doc.Pages)
	}

	if index == v.selected {
		return v.styles.Selected.Render(fmt.Sprintf("> %-*s %9d %6s", nameWidth, name, doc.Passages, pages))
	}
	return v.styles.Normal.Render(fmt.Sprintf("  %-*s %9d %6s", nameWidth, name, doc.Passages, pages))
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Documents returns the current document listing.
func (v *View) Documents() []domain.IndexedDocument {
	return v.documents
}

// SelectedIndex returns the currently selected document index.
func (v *View) SelectedIndex() int {
	return v.selected
}

// SelectedDocument returns the currently selected document, or nil.
func (v *View) SelectedDocument() *domain.IndexedDocument {
	if v.selected < len(v.documents) {
		return &v.documents[v.selected]
	}
	return nil
}

// Confirming reports whether an index reset is awaiting confirmation.
func (v *View) Confirming() bool {
	return v.confirming
}

// Loading reports whether the listing is being fetched.
func (v *View) Loading() bool {
	return v.loading
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
