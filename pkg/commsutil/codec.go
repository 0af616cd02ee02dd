package commsutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/slack-go/slack"
)

const codecLogPrefix = "commsutil:codec"

// EncodePayload serializes a value to JSON bytes.
func EncodePayload(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

// DecodePayload deserializes JSON bytes into the given target.
func DecodePayload(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

// DecodeSlashCommand decodes a form-encoded slash-command body, as Slack posts it.
func DecodeSlashCommand(body []byte) (slack.SlashCommand, error) {
	req, err := http.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	if err != nil {
		return slack.SlashCommand{}, fmt.Errorf("%s - failed to build request: %w", codecLogPrefix, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	cmd, err := slack.SlashCommandParse(req)
	if err != nil {
		return slack.SlashCommand{}, fmt.Errorf("%s - failed to parse slash command: %w", codecLogPrefix, err)
	}
	return cmd, nil
}
