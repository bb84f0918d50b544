package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/wifiprov/internal/portal"
	"github.com/muurk/wifiprov/internal/provision"
	"github.com/muurk/wifiprov/internal/ui"
)

// Commander accepts user requests. *provision.Controller implements it.
type Commander interface {
	Scan()
	Connect(creds portal.Credentials)
}

var _ Commander = (*provision.Controller)(nil)

// Info is static session information shown on screen.
type Info struct {
	Portal        string // Portal base URL
	Session       string // Controller session ID
	AllowUnlisted bool   // Offer manual SSID entry for hidden networks
}

// Screen represents the active screen
type Screen int

const (
	ScreenNetworks Screen = iota
	ScreenCredentials
	ScreenConnected
)

// networkItem wraps a scan result for use with bubbles/list
type networkItem struct {
	network portal.Network
}

// FilterValue implements list.Item
func (n networkItem) FilterValue() string { return n.network.SSID }

// networkDelegate renders one network per line
type networkDelegate struct{}

func (networkDelegate) Height() int { return 1 }

func (networkDelegate) Spacing() int { return 0 }

func (networkDelegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }

func (networkDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	n, ok := item.(networkItem)
	if !ok {
		return
	}
	marker := "  "
	if index == m.Index() {
		marker = SelectedMarkerStyle.Render("→ ")
	}
	fmt.Fprint(w, marker+ui.RenderNetworkRow(n.network))
}

// Credential form fields
const (
	fieldSSID = iota
	fieldPassphrase
	fieldUsername
	fieldCount
)

// credentialForm holds the inputs for one submission. It is reset as soon
// as the credentials are handed to the controller.
type credentialForm struct {
	inputs [fieldCount]textinput.Model
	ssid   string // Fixed SSID when picked from the list
	hidden bool   // SSID typed by the user
	focus  int
}

// newCredentialForm builds the inputs without length limits; whatever is
// typed reaches the controller and the device unchanged.
func newCredentialForm() credentialForm {
	var f credentialForm

	ssid := textinput.New()
	ssid.Placeholder = "network name"
	ssid.CharLimit = 0
	ssid.Width = 32
	f.inputs[fieldSSID] = ssid

	pass := textinput.New()
	pass.Placeholder = "passphrase"
	pass.EchoMode = textinput.EchoPassword
	pass.EchoCharacter = '•'
	pass.CharLimit = 0
	pass.Width = 32
	f.inputs[fieldPassphrase] = pass

	user := textinput.New()
	user.Placeholder = "optional, enterprise networks"
	user.CharLimit = 0
	user.Width = 32
	f.inputs[fieldUsername] = user

	return f
}

// fields returns the visible fields in tab order.
func (f *credentialForm) fields() []int {
	if f.hidden {
		return []int{fieldSSID, fieldPassphrase, fieldUsername}
	}
	return []int{fieldPassphrase, fieldUsername}
}

func (f *credentialForm) open(ssid string, hidden bool) tea.Cmd {
	f.reset()
	f.ssid = ssid
	f.hidden = hidden
	return f.setFocus(f.fields()[0])
}

func (f *credentialForm) setFocus(field int) tea.Cmd {
	f.focus = field
	var cmd tea.Cmd
	for i := range f.inputs {
		if i == field {
			cmd = f.inputs[i].Focus()
		} else {
			f.inputs[i].Blur()
		}
	}
	return cmd
}

func (f *credentialForm) next() tea.Cmd {
	fields := f.fields()
	for i, field := range fields {
		if field == f.focus {
			return f.setFocus(fields[(i+1)%len(fields)])
		}
	}
	return f.setFocus(fields[0])
}

func (f *credentialForm) credentials() portal.Credentials {
	ssid := f.ssid
	if f.hidden {
		ssid = f.inputs[fieldSSID].Value()
	}
	return portal.Credentials{
		SSID:       ssid,
		Passphrase: f.inputs[fieldPassphrase].Value(),
		Username:   f.inputs[fieldUsername].Value(),
	}
}

func (f *credentialForm) reset() {
	for i := range f.inputs {
		f.inputs[i].Reset()
		f.inputs[i].Blur()
	}
	f.ssid = ""
	f.hidden = false
}

// Model is the provisioning screen. It mirrors what the controller renders
// and turns key presses into controller commands.
type Model struct {
	ctrl Commander
	info Info
	now  func() time.Time

	CurrentScreen Screen

	indicator   provision.Indicator
	errorText   string
	scanMeta    string
	connectMeta string
	networks    []portal.Network
	updatedAt   time.Time

	navigation *provision.Navigation
	err        error

	list     list.Model
	form     credentialForm
	spinner  spinner.Model
	help     help.Model
	keys     listKeyMap
	formKeys formKeyMap
	doneKeys doneKeyMap

	Width  int
	Height int
}

// NewModel creates the provisioning screen sending commands to ctrl.
func NewModel(ctrl Commander, info Info) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	l := list.New(nil, networkDelegate{}, MinTerminalWidth, 10)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	l.SetShowPagination(true)

	return Model{
		ctrl:      ctrl,
		info:      info,
		now:       time.Now,
		indicator: provision.Indicator{State: provision.StateUnknown},
		list:      l,
		form:      newCredentialForm(),
		spinner:   s,
		help:      help.New(),
		keys:      newListKeyMap(info.AllowUnlisted),
		formKeys:  newFormKeyMap(),
		doneKeys:  newDoneKeyMap(),
		Width:     MinTerminalWidth,
	}
}

// Init starts the spinner and the relative-time refresh.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tick())
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return tickMsg{} })
}

// Navigation returns the hand-off, or nil if the device never connected.
func (m Model) Navigation() *provision.Navigation {
	return m.navigation
}

// Err returns the error that ended the session, if any.
func (m Model) Err() error {
	return m.err
}

// Update handles controller messages and user input
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.help.Width = msg.Width - 4
		listHeight := msg.Height - chromeHeight
		if listHeight < 3 {
			listHeight = 3
		}
		m.list.SetSize(msg.Width-6, listHeight)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.CurrentScreen {
		case ScreenCredentials:
			return m.updateCredentials(msg)
		case ScreenConnected:
			if key.Matches(msg, m.doneKeys.Quit) {
				return m, tea.Quit
			}
			return m, nil
		default:
			return m.updateNetworks(msg)
		}

	case indicatorMsg:
		m.indicator = msg.indicator
		return m, nil

	case errorMsg:
		m.errorText = msg.text
		return m, nil

	case networksMsg:
		m.networks = msg.networks
		m.updatedAt = m.now()
		items := make([]list.Item, len(msg.networks))
		for i, n := range msg.networks {
			items[i] = networkItem{network: n}
		}
		cmd := m.list.SetItems(items)
		m.list.Select(0)
		return m, cmd

	case scanMetaMsg:
		m.scanMeta = msg.text
		return m, nil

	case connectMetaMsg:
		m.connectMeta = msg.text
		return m, nil

	case navigateMsg:
		nav := msg.nav
		m.navigation = &nav
		m.indicator = provision.Indicator{State: provision.StateConnected, Label: provision.LabelConnected}
		m.connectMeta = ""
		m.errorText = ""
		m.form.reset()
		m.CurrentScreen = ScreenConnected
		return m, nil

	case sessionEndedMsg:
		if msg.err != nil && !errors.Is(msg.err, context.Canceled) {
			m.err = msg.err
		}
		if m.navigation == nil {
			return m, tea.Quit
		}
		return m, nil

	case tickMsg:
		if m.CurrentScreen == ScreenConnected {
			return m, nil
		}
		return m, tick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// updateNetworks handles keyboard input on the network list
func (m Model) updateNetworks(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		m.list.CursorUp()

	case key.Matches(msg, m.keys.Down):
		m.list.CursorDown()

	case key.Matches(msg, m.keys.Scan):
		return m, m.scanCmd()

	case key.Matches(msg, m.keys.Hidden):
		m.CurrentScreen = ScreenCredentials
		return m, m.form.open("", true)

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.Connect):
		item, ok := m.list.SelectedItem().(networkItem)
		if !ok {
			// The controller reports the missing selection.
			return m, m.connectCmd(portal.Credentials{})
		}
		if !item.network.Secure {
			return m, m.connectCmd(portal.Credentials{SSID: item.network.SSID})
		}
		m.CurrentScreen = ScreenCredentials
		return m, m.form.open(item.network.SSID, false)
	}

	return m, nil
}

// updateCredentials handles keyboard input in the credential form
func (m Model) updateCredentials(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.formKeys.Cancel):
		m.form.reset()
		m.CurrentScreen = ScreenNetworks
		return m, nil

	case key.Matches(msg, m.formKeys.Next):
		return m, m.form.next()

	case key.Matches(msg, m.formKeys.Submit):
		creds := m.form.credentials()
		m.form.reset()
		m.CurrentScreen = ScreenNetworks
		return m, m.connectCmd(creds)
	}

	var cmd tea.Cmd
	m.form.inputs[m.form.focus], cmd = m.form.inputs[m.form.focus].Update(msg)
	return m, cmd
}

// scanCmd and connectCmd hand requests to the controller off the update
// goroutine, since the controller may itself be waiting to deliver a message.
func (m Model) scanCmd() tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		ctrl.Scan()
		return nil
	}
}

func (m Model) connectCmd(creds portal.Credentials) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		ctrl.Connect(creds)
		return nil
	}
}
