// Package response builds the JSON envelopes returned to Slack for slash commands.
package response

import "github.com/slack-go/slack"

// Visibility controls who sees a response in the channel.
type Visibility string

const (
	// InChannel responses are shown to everyone in the channel.
	InChannel Visibility = "in_channel"
	// Ephemeral responses are shown only to the requesting user.
	Ephemeral Visibility = "ephemeral"
)

// Response is a slash-command reply. Values are treated as immutable; builders
// always return a fresh copy.
type Response struct {
	ResponseType Visibility         `json:"response_type"`
	Text         string             `json:"text"`
	Attachments  []slack.Attachment `json:"attachments,omitempty"`
}

// Build returns a copy of r with its visibility set. r is left untouched, so the
// same value can safely be built for both visibilities.
func Build(visibility Visibility, r Response) Response {
	out := Response{ResponseType: visibility, Text: r.Text}
	if r.Attachments != nil {
		out.Attachments = make([]slack.Attachment, len(r.Attachments))
		copy(out.Attachments, r.Attachments)
	}
	return out
}

// BuildText wraps a plain message.
func BuildText(visibility Visibility, text string) Response {
	return Response{ResponseType: visibility, Text: text}
}

// InChannelText wraps text as a response visible to the whole channel.
func InChannelText(text string) Response { return BuildText(InChannel, text) }

// EphemeralText wraps text as a response visible only to the requester.
func EphemeralText(text string) Response { return BuildText(Ephemeral, text) }

// InChannelResponse returns r made visible to the whole channel.
func InChannelResponse(r Response) Response { return Build(InChannel, r) }

// EphemeralResponse returns r made visible only to the requester.
func EphemeralResponse(r Response) Response { return Build(Ephemeral, r) }
