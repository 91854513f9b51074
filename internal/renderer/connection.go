package renderer

import "context"

// Connection is the per-target control-protocol primitive. Every command may
// time out; the caller treats failures as best effort and relies on the
// reconnect-resync cycle to converge.
type Connection interface {
	// AddTemplate loads a template with its data onto a layer, optionally
	// playing it as soon as it is loaded.
	AddTemplate(ctx context.Context, channel, layer int, template string, data map[string]any, playOnLoad bool) error
	// UpdateTemplate replaces the data of the template already loaded on a
	// layer without re-running the load.
	UpdateTemplate(ctx context.Context, channel, layer int, data map[string]any) error
	// PlayMedia starts a clip (or a raw URL) on a layer with a transition.
	PlayMedia(ctx context.Context, channel, layer int, clip, transition string) error
	// Play and Stop run the template on a layer through its built-in
	// in/out animations.
	Play(ctx context.Context, channel, layer int) error
	Stop(ctx context.Context, channel, layer int) error
	// Clear empties a layer immediately.
	Clear(ctx context.Context, channel, layer int) error
	// Swap exchanges the contents of two layers on the same channel.
	Swap(ctx context.Context, channel, layerA, layerB int) error
	// Invoke calls a method on the template loaded on a layer.
	Invoke(ctx context.Context, channel, layer int, method string) error
	// Raw sends a protocol line verbatim.
	Raw(ctx context.Context, command string) error
	// ListMedia returns the clip names the renderer knows.
	ListMedia(ctx context.Context) ([]string, error)

	// OnConnect and OnDisconnect subscribe to connectivity events and
	// return their remove function. OnConnectOnce fires at most once and
	// removes itself.
	OnConnect(fn func()) (remove func())
	OnConnectOnce(fn func()) (remove func())
	OnDisconnect(fn func(err error)) (remove func())

	Connected() bool
	Close() error
}
