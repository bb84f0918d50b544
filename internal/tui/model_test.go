package tui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muurk/wifiprov/internal/portal"
	"github.com/muurk/wifiprov/internal/provision"
)

type fakeCommander struct {
	mu       sync.Mutex
	scans    int
	connects []portal.Credentials
}

func (f *fakeCommander) Scan() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scans++
}

func (f *fakeCommander) Connect(creds portal.Credentials) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connects = append(f.connects, creds)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	next, ok := updated.(Model)
	require.True(t, ok, "Update returned %T", updated)
	return next, cmd
}

func homeNetworks() []portal.Network {
	return []portal.Network{
		{SSID: "HomeNet", RSSI: -48, Secure: true},
		{SSID: "Neighbor-5G", RSSI: -63, Secure: true},
		{SSID: "CoffeeShop", RSSI: -71, Secure: false},
	}
}

func withNetworks(t *testing.T, info Info) (Model, *fakeCommander) {
	t.Helper()
	ctrl := &fakeCommander{}
	m := NewModel(ctrl, info)
	m.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	m, _ = update(t, m, networksMsg{networks: homeNetworks()})
	return m, ctrl
}

func TestModel_NetworksReplaceList(t *testing.T) {
	m, _ := withNetworks(t, Info{})
	require.Len(t, m.list.Items(), 3)
	assert.Equal(t, "HomeNet", m.list.SelectedItem().(networkItem).network.SSID)
	assert.False(t, m.updatedAt.IsZero())

	m, _ = update(t, m, networksMsg{networks: []portal.Network{{SSID: "Guest", RSSI: -63}}})
	require.Len(t, m.list.Items(), 1)
	assert.Equal(t, "Guest", m.list.Items()[0].(networkItem).network.SSID)
	assert.NotContains(t, m.View(), "HomeNet")
}

func TestModel_CursorMoves(t *testing.T) {
	m, _ := withNetworks(t, Info{})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, m.list.Index())
	m, _ = update(t, m, runes("k"))
	assert.Equal(t, 0, m.list.Index())
}

func TestModel_ScanKey(t *testing.T) {
	m, ctrl := withNetworks(t, Info{})
	_, cmd := update(t, m, runes("s"))
	require.NotNil(t, cmd)
	cmd()
	assert.Equal(t, 1, ctrl.scans)
}

func TestModel_SecureNetworkAsksForPassphrase(t *testing.T) {
	m, ctrl := withNetworks(t, Info{})

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, ScreenCredentials, m.CurrentScreen)
	assert.Equal(t, "HomeNet", m.form.ssid)
	assert.Equal(t, fieldPassphrase, m.form.focus)
	assert.Empty(t, ctrl.connects)

	// Letters that are list shortcuts go to the input here.
	m, _ = update(t, m, runes("hunter2s"))
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, fieldUsername, m.form.focus)
	m, _ = update(t, m, runes("alice"))

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	cmd()

	require.Len(t, ctrl.connects, 1)
	assert.Equal(t, portal.Credentials{SSID: "HomeNet", Passphrase: "hunter2s", Username: "alice"}, ctrl.connects[0])
	assert.Equal(t, ScreenNetworks, m.CurrentScreen)
	assert.Empty(t, m.form.inputs[fieldPassphrase].Value(), "passphrase must not be retained")
	assert.Empty(t, m.form.inputs[fieldUsername].Value())
}

func TestModel_LongCredentialsPassedVerbatim(t *testing.T) {
	m, ctrl := withNetworks(t, Info{})
	psk := strings.Repeat("ab", 32)
	user := "svc-provisioning@" + strings.Repeat("corp", 15) + ".example"

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, ScreenCredentials, m.CurrentScreen)
	m, _ = update(t, m, runes(psk))
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m, _ = update(t, m, runes(user))

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	cmd()

	require.Len(t, ctrl.connects, 1)
	assert.Len(t, ctrl.connects[0].Passphrase, 64)
	assert.Equal(t, psk, ctrl.connects[0].Passphrase)
	assert.Len(t, ctrl.connects[0].Username, 85)
	assert.Equal(t, user, ctrl.connects[0].Username)
}

func TestModel_HiddenSSIDNotTruncated(t *testing.T) {
	m, ctrl := withNetworks(t, Info{AllowUnlisted: true})
	long := strings.Repeat("x", 40)

	m, _ = update(t, m, runes("h"))
	require.Equal(t, ScreenCredentials, m.CurrentScreen)
	m, _ = update(t, m, runes(long))

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	cmd()

	// The controller rejects it with a message instead of a silent cut.
	require.Len(t, ctrl.connects, 1)
	assert.Equal(t, long, ctrl.connects[0].SSID)
}

func TestModel_OpenNetworkConnectsDirectly(t *testing.T) {
	m, ctrl := withNetworks(t, Info{})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	cmd()

	assert.Equal(t, ScreenNetworks, m.CurrentScreen)
	require.Len(t, ctrl.connects, 1)
	assert.Equal(t, portal.Credentials{SSID: "CoffeeShop"}, ctrl.connects[0])
}

func TestModel_EnterWithoutNetworksDefersToController(t *testing.T) {
	ctrl := &fakeCommander{}
	m := NewModel(ctrl, Info{})

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	cmd()

	require.Len(t, ctrl.connects, 1)
	assert.Empty(t, ctrl.connects[0].SSID)
}

func TestModel_CancelForm(t *testing.T) {
	m, ctrl := withNetworks(t, Info{})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = update(t, m, runes("secret"))

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Nil(t, cmd)
	assert.Equal(t, ScreenNetworks, m.CurrentScreen)
	assert.Empty(t, m.form.inputs[fieldPassphrase].Value())
	assert.Empty(t, ctrl.connects)
}

func TestModel_HiddenNetwork(t *testing.T) {
	t.Run("disabled by default", func(t *testing.T) {
		m, _ := withNetworks(t, Info{})
		m, _ = update(t, m, runes("h"))
		assert.Equal(t, ScreenNetworks, m.CurrentScreen)
	})

	t.Run("allowed", func(t *testing.T) {
		m, ctrl := withNetworks(t, Info{AllowUnlisted: true})
		m, _ = update(t, m, runes("h"))
		require.Equal(t, ScreenCredentials, m.CurrentScreen)
		assert.True(t, m.form.hidden)
		assert.Equal(t, fieldSSID, m.form.focus)

		m, _ = update(t, m, runes("Attic"))
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
		m, _ = update(t, m, runes("pw123456"))
		_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
		require.NotNil(t, cmd)
		cmd()

		require.Len(t, ctrl.connects, 1)
		assert.Equal(t, portal.Credentials{SSID: "Attic", Passphrase: "pw123456"}, ctrl.connects[0])
	})
}

func TestModel_MirrorsController(t *testing.T) {
	m, _ := withNetworks(t, Info{Portal: "http://192.168.4.1"})

	m, _ = update(t, m, indicatorMsg{indicator: provision.Indicator{State: provision.StateConnecting, Label: provision.LabelConnecting}})
	m, _ = update(t, m, errorMsg{text: "Wrong username or password"})
	m, _ = update(t, m, scanMetaMsg{text: "3 networks"})
	m, _ = update(t, m, connectMetaMsg{text: provision.LabelSending})

	view := m.View()
	assert.Contains(t, view, provision.LabelConnecting)
	assert.Contains(t, view, "Wrong username or password")
	assert.Contains(t, view, "3 networks")
	assert.Contains(t, view, provision.LabelSending)
	assert.Contains(t, view, "http://192.168.4.1")

	m, _ = update(t, m, errorMsg{text: ""})
	m, _ = update(t, m, connectMetaMsg{text: ""})
	view = m.View()
	assert.NotContains(t, view, "Wrong username or password")
	assert.NotContains(t, view, provision.LabelSending)
}

func TestModel_Navigate(t *testing.T) {
	m, _ := withNetworks(t, Info{})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = update(t, m, runes("half-typed"))

	nav := provision.Navigation{URL: "http://192.168.4.1/hello.html", SSID: "HomeNet", IP: "192.168.1.57"}
	m, _ = update(t, m, navigateMsg{nav: nav})

	require.Equal(t, ScreenConnected, m.CurrentScreen)
	require.NotNil(t, m.Navigation())
	assert.Equal(t, nav, *m.Navigation())
	assert.Empty(t, m.form.inputs[fieldPassphrase].Value())

	view := m.View()
	assert.Contains(t, view, "hello.html")
	assert.Contains(t, view, "192.168.1.57")

	// The session ending normally keeps the final screen up.
	m, cmd := update(t, m, sessionEndedMsg{})
	assert.Nil(t, cmd)

	_, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModel_SessionEnded(t *testing.T) {
	m := NewModel(&fakeCommander{}, Info{})

	next, cmd := update(t, m, sessionEndedMsg{err: context.Canceled})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.NoError(t, next.Err())

	boom := errors.New("boom")
	next, _ = update(t, m, sessionEndedMsg{err: boom})
	assert.ErrorIs(t, next.Err(), boom)
}

func TestModel_QuitKeys(t *testing.T) {
	m, _ := withNetworks(t, Info{})
	for _, k := range []tea.KeyMsg{runes("q"), {Type: tea.KeyEsc}, {Type: tea.KeyCtrlC}} {
		_, cmd := update(t, m, k)
		require.NotNil(t, cmd, k.String())
		assert.IsType(t, tea.QuitMsg{}, cmd(), k.String())
	}
}

func TestModel_UpdatedAgo(t *testing.T) {
	m, _ := withNetworks(t, Info{})
	base := m.updatedAt
	m.now = func() time.Time { return base.Add(3 * time.Second) }
	assert.Contains(t, m.View(), "updated 3 seconds ago")
}

type recordingSender struct {
	msgs []tea.Msg
}

func (r *recordingSender) Send(msg tea.Msg) {
	r.msgs = append(r.msgs, msg)
}

func TestRenderer_PostsMessages(t *testing.T) {
	s := &recordingSender{}
	r := NewRenderer(s)

	r.RenderIndicator(provision.Indicator{State: provision.StateDisconnected, Label: provision.LabelNotConnected})
	r.RenderError("x")
	r.RenderNetworks(homeNetworks())
	r.RenderScanMeta(provision.LabelScanning)
	r.RenderConnectMeta("")
	r.Navigate(provision.Navigation{URL: "u"})

	require.Len(t, s.msgs, 6)
	assert.IsType(t, indicatorMsg{}, s.msgs[0])
	assert.Equal(t, errorMsg{text: "x"}, s.msgs[1])
	assert.Len(t, s.msgs[2].(networksMsg).networks, 3)
	assert.Equal(t, scanMetaMsg{text: provision.LabelScanning}, s.msgs[3])
	assert.Equal(t, connectMetaMsg{}, s.msgs[4])
	assert.Equal(t, navigateMsg{nav: provision.Navigation{URL: "u"}}, s.msgs[5])
}

func TestRenderApplicationContainer(t *testing.T) {
	out := RenderApplicationContainer("body", "help", 80, 0)
	assert.Contains(t, out, AppName)
	assert.Contains(t, out, "body")
	assert.Contains(t, out, "help")
	assert.True(t, strings.Count(out, "\n") > 3)
}
