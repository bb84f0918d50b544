package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/wifiprov/internal/portal"
	"github.com/muurk/wifiprov/internal/provision"
)

// Messages posted by the controller through Renderer
type (
	indicatorMsg   struct{ indicator provision.Indicator }
	errorMsg       struct{ text string }
	networksMsg    struct{ networks []portal.Network }
	scanMetaMsg    struct{ text string }
	connectMetaMsg struct{ text string }
	navigateMsg    struct{ nav provision.Navigation }

	// sessionEndedMsg is posted when the controller's Run returns.
	sessionEndedMsg struct{ err error }

	// tickMsg refreshes relative timestamps.
	tickMsg struct{}
)

// Sender delivers messages into a running program. *tea.Program
// implements it.
type Sender interface {
	Send(msg tea.Msg)
}

// Renderer adapts a bubbletea program to provision.Renderer. Each call
// becomes one message, so all screen state changes happen in Model.Update.
type Renderer struct {
	to Sender
}

var _ provision.Renderer = (*Renderer)(nil)

// NewRenderer creates a renderer posting to s.
func NewRenderer(s Sender) *Renderer {
	return &Renderer{to: s}
}

// RenderIndicator implements provision.Renderer
func (r *Renderer) RenderIndicator(ind provision.Indicator) {
	r.to.Send(indicatorMsg{indicator: ind})
}

// RenderError implements provision.Renderer
func (r *Renderer) RenderError(message string) {
	r.to.Send(errorMsg{text: message})
}

// RenderNetworks implements provision.Renderer
func (r *Renderer) RenderNetworks(networks []portal.Network) {
	r.to.Send(networksMsg{networks: networks})
}

// RenderScanMeta implements provision.Renderer
func (r *Renderer) RenderScanMeta(text string) {
	r.to.Send(scanMetaMsg{text: text})
}

// RenderConnectMeta implements provision.Renderer
func (r *Renderer) RenderConnectMeta(text string) {
	r.to.Send(connectMetaMsg{text: text})
}

// Navigate implements provision.Renderer
func (r *Renderer) Navigate(nav provision.Navigation) {
	r.to.Send(navigateMsg{nav: nav})
}
