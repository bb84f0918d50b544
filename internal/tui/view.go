package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/muurk/wifiprov/internal/provision"
	"github.com/muurk/wifiprov/internal/ui"
)

// View renders the current screen
func (m Model) View() string {
	var content, helpText string
	switch m.CurrentScreen {
	case ScreenConnected:
		content = m.buildConnectedContent()
		helpText = m.help.View(m.doneKeys)
	case ScreenCredentials:
		content = m.buildNetworksContent() + "\n" + m.buildFormContent()
		helpText = m.help.View(m.formKeys)
	default:
		content = m.buildNetworksContent()
		helpText = m.help.View(m.keys)
	}
	return RenderApplicationContainer(content, helpText, m.Width, m.Height)
}

// buildStatusContent renders the indicator, error region and submission line
func (m Model) buildStatusContent() string {
	var b strings.Builder

	label := m.indicator.Label
	if label == "" {
		label = "Checking device…"
	}
	b.WriteString(ui.IndicatorStyle(m.indicator.State).Render(ui.StateMarker + " " + label))
	b.WriteString("  ")
	b.WriteString(SubtleStyle.Render(m.info.Portal))
	b.WriteString("\n")

	if m.errorText != "" {
		b.WriteString(ui.ErrorMessageStyle.Render(ui.FailureMarker + " " + m.errorText))
		b.WriteString("\n")
	}
	if m.connectMeta != "" {
		b.WriteString(m.spinner.View() + " " + ui.MetaStyle.Render(m.connectMeta))
		b.WriteString("\n")
	}
	return b.String()
}

// buildNetworksContent renders the status area and the network list
func (m Model) buildNetworksContent() string {
	var b strings.Builder

	b.WriteString(m.buildStatusContent())
	b.WriteString("\n")

	heading := []string{TitleStyle.Render("Networks")}
	if m.scanMeta != "" {
		meta := m.scanMeta
		if m.scanMeta == provision.LabelScanning {
			meta = m.spinner.View() + " " + meta
		}
		heading = append(heading, ui.MetaStyle.Render(meta))
	}
	if !m.updatedAt.IsZero() {
		heading = append(heading, ui.MetaStyle.Render("updated "+humanize.RelTime(m.updatedAt, m.now(), "ago", "from now")))
	}
	b.WriteString(strings.Join(heading, SubtleStyle.Render(" · ")))
	b.WriteString("\n")

	if len(m.list.Items()) == 0 {
		b.WriteString(ui.MetaStyle.Render("  No networks found"))
	} else {
		b.WriteString(m.list.View())
	}
	b.WriteString("\n")
	return b.String()
}

// buildFormContent renders the credential inputs
func (m Model) buildFormContent() string {
	var rows []string

	title := "Join " + m.form.ssid
	if m.form.hidden {
		title = "Join a hidden network"
	}
	rows = append(rows, TitleStyle.Render(title))

	labels := map[int]string{
		fieldSSID:       "Network",
		fieldPassphrase: "Passphrase",
		fieldUsername:   "Username",
	}
	for _, field := range m.form.fields() {
		style := BlurredInputStyle
		if field == m.form.focus {
			style = FocusedInputStyle
		}
		label := style.Width(12).Render(labels[field])
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, label, m.form.inputs[field].View()))
	}

	return FormBoxStyle.Render(strings.Join(rows, "\n"))
}

// buildConnectedContent renders the final screen
func (m Model) buildConnectedContent() string {
	var b strings.Builder

	b.WriteString(SuccessBoxStyle.Render(ui.SuccessMarker + " Device connected"))
	b.WriteString("\n\n")

	if nav := m.navigation; nav != nil {
		rows := [][2]string{{"Landing page", nav.URL}}
		if nav.SSID != "" {
			rows = append(rows, [2]string{"Network", nav.SSID})
		}
		if nav.IP != "" {
			rows = append(rows, [2]string{"Device IP", nav.IP})
		}
		for _, r := range rows {
			b.WriteString(ui.ResultKeyStyle.Render(r[0]+":") + " " + ui.ResultValueStyle.Render(r[1]))
			b.WriteString("\n")
		}
	}

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(ui.ErrorMessageStyle.Render(ui.FailureMarker + " " + m.err.Error()))
		b.WriteString("\n")
	}
	return b.String()
}
