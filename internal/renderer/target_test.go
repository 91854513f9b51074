package renderer

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/versecast/versecast/internal/model"
)

// mockConnection records every remote call in order and lets tests drive
// connectivity events.
type mockConnection struct {
	mu            sync.Mutex
	calls         []string
	connected     bool
	onConnect     []func()
	onConnectOnce []func()
	onDisconnect  []func(error)
	clips         []string
}

func newMockConnection() *mockConnection {
	return &mockConnection{connected: true}
}

func (m *mockConnection) record(call string) {
	m.mu.Lock()
	m.calls = append(m.calls, call)
	m.mu.Unlock()
}

func (m *mockConnection) recorded() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *mockConnection) AddTemplate(_ context.Context, channel, layer int, template string, _ map[string]any, _ bool) error {
	m.record(fmt.Sprintf("add-template %d-%d %s", channel, layer, template))
	return nil
}

func (m *mockConnection) UpdateTemplate(_ context.Context, channel, layer int, _ map[string]any) error {
	m.record(fmt.Sprintf("update-template %d-%d", channel, layer))
	return nil
}

func (m *mockConnection) PlayMedia(_ context.Context, channel, layer int, clip, _ string) error {
	m.record(fmt.Sprintf("play-media %d-%d %s", channel, layer, clip))
	return nil
}

func (m *mockConnection) Play(_ context.Context, channel, layer int) error {
	m.record(fmt.Sprintf("play %d-%d", channel, layer))
	return nil
}

func (m *mockConnection) Stop(_ context.Context, channel, layer int) error {
	m.record(fmt.Sprintf("stop %d-%d", channel, layer))
	return nil
}

func (m *mockConnection) Clear(_ context.Context, channel, layer int) error {
	m.record(fmt.Sprintf("clear %d-%d", channel, layer))
	return nil
}

func (m *mockConnection) Swap(_ context.Context, channel, layerA, layerB int) error {
	m.record(fmt.Sprintf("swap %d-%d %d-%d", channel, layerA, channel, layerB))
	return nil
}

func (m *mockConnection) Invoke(_ context.Context, channel, layer int, method string) error {
	m.record(fmt.Sprintf("invoke %d-%d %s", channel, layer, method))
	return nil
}

func (m *mockConnection) Raw(_ context.Context, command string) error {
	m.record("raw " + command)
	return nil
}

func (m *mockConnection) ListMedia(context.Context) ([]string, error) {
	m.record("cls")
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clips, nil
}

func (m *mockConnection) OnConnect(fn func()) func() {
	m.mu.Lock()
	m.onConnect = append(m.onConnect, fn)
	m.mu.Unlock()
	return func() {}
}

func (m *mockConnection) OnConnectOnce(fn func()) func() {
	m.mu.Lock()
	m.onConnectOnce = append(m.onConnectOnce, fn)
	m.mu.Unlock()
	return func() {}
}

func (m *mockConnection) OnDisconnect(fn func(error)) func() {
	m.mu.Lock()
	m.onDisconnect = append(m.onDisconnect, fn)
	m.mu.Unlock()
	return func() {}
}

func (m *mockConnection) fireConnect() {
	m.mu.Lock()
	m.connected = true
	fns := append([]func(){}, m.onConnect...)
	fns = append(fns, m.onConnectOnce...)
	m.onConnectOnce = nil
	m.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func (m *mockConnection) fireDisconnect(err error) {
	m.mu.Lock()
	m.connected = false
	fns := append([]func(error){}, m.onDisconnect...)
	m.mu.Unlock()
	for _, fn := range fns {
		fn(err)
	}
}

func (m *mockConnection) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

func (m *mockConnection) Close() error { return nil }

func testSettings() Settings {
	return Settings{
		Name:    "main",
		Host:    "127.0.0.1",
		Port:    5250,
		Channel: 1,
		Layers:  LayerSettings{Background: 10, Foreground: 11},
	}
}

func waitForCalls(t *testing.T, conn *mockConnection, n int) []string {
	t.Helper()
	require.Eventually(t, func() bool {
		return len(conn.recorded()) >= n
	}, time.Second, 5*time.Millisecond)
	return conn.recorded()
}

func idleProvider() State { return State{Visible: true} }

func TestPlayCrossfadeOrdering(t *testing.T) {
	conn := newMockConnection()
	target := newTarget(testSettings(), conn, idleProvider)
	defer target.close()

	target.Play(model.RenderPayload{
		Kind:         model.PayloadTemplate,
		TemplateName: "song",
		Data:         map[string]any{"title": "Amazing Grace"},
	})

	calls := waitForCalls(t, conn, 3)
	assert.Equal(t, []string{
		"add-template 1-10 song",
		"clear 1-11",
		"swap 1-10 1-11",
	}, calls)
}

func TestPlayMediaCrossfadeOrdering(t *testing.T) {
	conn := newMockConnection()
	conn.clips = []string{"OPENER"}
	target := newTarget(testSettings(), conn, idleProvider)
	defer target.close()

	conn.fireConnect() // triggers the media list refresh
	waitForCalls(t, conn, 1)

	target.Play(model.RenderPayload{Kind: model.PayloadMedia, Clip: "OPENER"})

	calls := waitForCalls(t, conn, 4)
	assert.Equal(t, []string{
		"cls",
		"play-media 1-10 OPENER",
		"clear 1-11",
		"swap 1-10 1-11",
	}, calls)
}

func TestPlayUnknownClipSkipped(t *testing.T) {
	conn := newMockConnection()
	conn.clips = []string{"OPENER"}
	target := newTarget(testSettings(), conn, idleProvider)
	defer target.close()

	conn.fireConnect()
	waitForCalls(t, conn, 1)

	target.Play(model.RenderPayload{Kind: model.PayloadMedia, Clip: "MISSING"})
	target.SelectSlide(0) // fence: proves the play produced no remote calls

	calls := waitForCalls(t, conn, 2)
	assert.Equal(t, "invoke 1-11 jump(0)", calls[1])
}

func TestSelectSlideJumpsForeground(t *testing.T) {
	conn := newMockConnection()
	target := newTarget(testSettings(), conn, idleProvider)
	defer target.close()

	target.SelectSlide(4)

	calls := waitForCalls(t, conn, 1)
	assert.Equal(t, []string{"invoke 1-11 jump(4)"}, calls)
}

func TestSetVisibilityClearsBackgroundFirst(t *testing.T) {
	conn := newMockConnection()
	target := newTarget(testSettings(), conn, idleProvider)
	defer target.close()

	target.SetVisibility(false)
	calls := waitForCalls(t, conn, 2)
	assert.Equal(t, []string{"clear 1-10", "stop 1-11"}, calls)

	target.SetVisibility(true)
	calls = waitForCalls(t, conn, 4)
	assert.Equal(t, []string{"clear 1-10", "play 1-11"}, calls[2:])
}

func TestReconnectResyncReplaysCurrentState(t *testing.T) {
	conn := newMockConnection()
	state := State{
		Payload: model.RenderPayload{Kind: model.PayloadTemplate, TemplateName: "psalm"},
		Active:  true,
		Visible: true,
	}
	target := newTarget(testSettings(), conn, func() State { return state })
	defer target.close()

	conn.fireDisconnect(fmt.Errorf("network down"))
	conn.fireConnect()

	calls := waitForCalls(t, conn, 4)
	assert.Contains(t, calls, "add-template 1-10 psalm")
	assert.Contains(t, calls, "swap 1-10 1-11")
}

func TestResyncFiresOncePerDisconnectCycle(t *testing.T) {
	conn := newMockConnection()
	plays := 0
	var mu sync.Mutex
	target := newTarget(testSettings(), conn, func() State {
		mu.Lock()
		plays++
		mu.Unlock()
		return State{Visible: true}
	})
	defer target.close()

	conn.fireDisconnect(fmt.Errorf("drop one"))
	conn.fireConnect()
	conn.fireConnect() // no disconnect in between: must not resync again

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return plays >= 1
	}, time.Second, 5*time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, plays)
}

func TestDegradedTargetDropsEverything(t *testing.T) {
	bad := Settings{Name: "broken", Host: "", Port: 0, Channel: 1}
	target := newTarget(bad, nil, idleProvider)

	// must not panic or block
	target.Play(model.RenderPayload{Kind: model.PayloadTemplate, TemplateName: "song"})
	target.SelectSlide(1)
	target.SetVisibility(true)
	assert.False(t, target.Connected())
}

func TestRawCommandsIssuedInOrder(t *testing.T) {
	conn := newMockConnection()
	target := newTarget(testSettings(), conn, idleProvider)
	defer target.close()

	target.SendRaw([]string{"MIXER 1 OPACITY 0.5", "MIXER 1 OPACITY 1.0"})

	calls := waitForCalls(t, conn, 2)
	assert.Equal(t, []string{"raw MIXER 1 OPACITY 0.5", "raw MIXER 1 OPACITY 1.0"}, calls)
}
