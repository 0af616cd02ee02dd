package response

import (
	"encoding/json"
	"testing"

	"github.com/slack-go/slack"
)

func TestBuildText_InChannel(t *testing.T) {
	got := BuildText(InChannel, "hello")

	data, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("response:response_test - marshal failed: %v", err)
	}
	want := `{"response_type":"in_channel","text":"hello"}`
	if string(data) != want {
		t.Errorf("response:response_test - got %s, want %s", data, want)
	}
}

func TestBuild_SetsVisibilityOnStructuredResponse(t *testing.T) {
	in := Response{
		Text:        "x",
		Attachments: []slack.Attachment{{Text: "body"}},
	}

	got := Build(Ephemeral, in)

	if got.ResponseType != Ephemeral {
		t.Errorf("response:response_test - ResponseType = %q, want %q", got.ResponseType, Ephemeral)
	}
	if got.Text != "x" {
		t.Errorf("response:response_test - Text = %q, want %q", got.Text, "x")
	}
	if len(got.Attachments) != 1 || got.Attachments[0].Text != "body" {
		t.Errorf("response:response_test - Attachments = %+v, want one attachment with text body", got.Attachments)
	}
}

func TestBuild_DoesNotMutateInput(t *testing.T) {
	in := Response{
		ResponseType: InChannel,
		Text:         "shared",
		Attachments:  []slack.Attachment{{Text: "a"}},
	}

	eph := EphemeralResponse(in)
	pub := InChannelResponse(in)

	if in.ResponseType != InChannel {
		t.Errorf("response:response_test - input ResponseType changed to %q", in.ResponseType)
	}
	if eph.ResponseType != Ephemeral || pub.ResponseType != InChannel {
		t.Errorf("response:response_test - got %q and %q, want ephemeral and in_channel", eph.ResponseType, pub.ResponseType)
	}

	eph.Attachments[0].Text = "changed"
	if in.Attachments[0].Text != "a" || pub.Attachments[0].Text != "a" {
		t.Error("response:response_test - attachments slice is shared between built responses")
	}
}

func TestHelpers(t *testing.T) {
	tests := []struct {
		name string
		got  Response
		want Visibility
	}{
		{"InChannelText", InChannelText("t"), InChannel},
		{"EphemeralText", EphemeralText("t"), Ephemeral},
		{"InChannelResponse", InChannelResponse(Response{Text: "t"}), InChannel},
		{"EphemeralResponse", EphemeralResponse(Response{Text: "t"}), Ephemeral},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got.ResponseType != tt.want {
				t.Errorf("response:response_test - ResponseType = %q, want %q", tt.got.ResponseType, tt.want)
			}
			if tt.got.Text != "t" {
				t.Errorf("response:response_test - Text = %q, want t", tt.got.Text)
			}
		})
	}
}

func TestResponse_UnmarshalAttachments(t *testing.T) {
	raw := `{"response_type":"ephemeral","text":"Available commands:","attachments":[{"text":"help: display this help message"}]}`

	var r Response
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		t.Fatalf("response:response_test - unmarshal failed: %v", err)
	}
	if r.ResponseType != Ephemeral {
		t.Errorf("response:response_test - ResponseType = %q, want ephemeral", r.ResponseType)
	}
	if len(r.Attachments) != 1 || r.Attachments[0].Text != "help: display this help message" {
		t.Errorf("response:response_test - Attachments = %+v", r.Attachments)
	}
}
