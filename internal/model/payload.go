package model

// PayloadKind tags the render payload union.
type PayloadKind string

const (
	PayloadTemplate PayloadKind = "template"
	PayloadMedia    PayloadKind = "media"
	PayloadCommand  PayloadKind = "command"
)

// RenderPayload is the only artifact an item variant must be able to produce
// for a render target. It is opaque to the playlist and to the target pool
// beyond its Kind tag; a target that does not understand a kind skips it.
type RenderPayload struct {
	Kind PayloadKind `json:"kind"`

	// Kind == PayloadTemplate
	TemplateName string         `json:"template_name,omitempty"`
	Data         map[string]any `json:"data,omitempty"`

	// Kind == PayloadMedia
	Clip   string `json:"clip,omitempty"`
	RawURL string `json:"raw_url,omitempty"`

	// Kind == PayloadCommand
	Commands []string `json:"commands,omitempty"`
}
