package dispatcher

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/morezero/slashbot/pkg/response"
)

func TestNewReply_Success(t *testing.T) {
	reply := NewReply(response.InChannelText("hi"), nil)

	data, err := json.Marshal(reply)
	if err != nil {
		t.Fatalf("dispatcher:envelope_test - marshal failed: %v", err)
	}
	want := `{"ok":true,"response":{"response_type":"in_channel","text":"hi"}}`
	if string(data) != want {
		t.Errorf("dispatcher:envelope_test - got %s, want %s", data, want)
	}
}

func TestNewReply_HandlerError(t *testing.T) {
	reply := NewReply(response.Response{}, errors.New("db unavailable"))

	if reply.Ok {
		t.Error("dispatcher:envelope_test - expected Ok=false")
	}
	if reply.Response != nil {
		t.Errorf("dispatcher:envelope_test - expected nil Response, got %+v", reply.Response)
	}
	if reply.Error == nil || reply.Error.Code != CodeHandlerError || reply.Error.Message != "db unavailable" {
		t.Errorf("dispatcher:envelope_test - Error = %+v", reply.Error)
	}
}

func TestErrorReply(t *testing.T) {
	reply := ErrorReply(CodeInvalidRequest, "Failed to decode request")
	if reply.Ok || reply.Error.Code != CodeInvalidRequest || reply.Error.Retryable {
		t.Errorf("dispatcher:envelope_test - reply = %+v", reply)
	}
}
