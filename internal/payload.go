package internal

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// Payload is a value ready to be delivered to the webhook.
type Payload interface {
	// Encode returns the exact bytes to transmit.
	Encode() ([]byte, error)
}

// RawPayload is the verbatim contents of a legacy payload file.
type RawPayload []byte

func (p RawPayload) Encode() ([]byte, error) { return []byte(p), nil }

// OpaquePayload is an explicit PAYLOAD input: arbitrary JSON passed through
// unmodified, never reshaped or validated beyond syntax.
type OpaquePayload json.RawMessage

func (p OpaquePayload) Encode() ([]byte, error) { return []byte(p), nil }

// TextPayload is the plain-text notification. This is the only payload path
// that honors the channel, username and icon inputs.
type TextPayload struct {
	Channel  string `json:"channel"`
	Username string `json:"username"`
	IconURL  string `json:"icon_url"`
	Text     string `json:"text"`
}

func (p TextPayload) Encode() ([]byte, error) { return json.Marshal(p) }

// Attachment carries a message body with an accent color.
type Attachment struct {
	Text  string `json:"text"`
	Color string `json:"color"`
}

// MessagePayload is the fixed notification template used for formatted
// events. Username and icon are constants on this path.
type MessagePayload struct {
	Username    string       `json:"username"`
	IconURL     string       `json:"icon_url"`
	Attachments []Attachment `json:"attachments"`
}

func (p MessagePayload) Encode() ([]byte, error) { return json.Marshal(p) }

// Resolve selects the payload to deliver. The chain is ordered and total:
// legacy payload file, then a recognized push event, then the PAYLOAD input,
// then the TEXT input. The first matching source wins; no two sources are
// ever combined.
func Resolve(in Inputs) (Payload, error) {
	if in.Filename != "" {
		path := filepath.Join(in.PayloadDir, in.Filename)
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			return RawPayload(data), nil
		case !errors.Is(err, fs.ErrNotExist):
			return nil, &FileAccessError{Path: path, Err: err}
		}
		// Absent file: fall through to the computed sources.
	}

	evctx, err := ParseContext(in.Context)
	if err != nil {
		return nil, err
	}
	if evctx.EventName == "push" {
		return FormatPush(evctx), nil
	}

	if in.Payload != "" {
		var raw json.RawMessage
		if err := json.Unmarshal([]byte(in.Payload), &raw); err != nil {
			return nil, &InvalidPayloadError{Err: err}
		}
		return OpaquePayload(raw), nil
	}

	if in.Text != "" {
		return TextPayload{
			Channel:  in.Channel,
			Username: in.Username,
			IconURL:  in.IconURL,
			Text:     in.Text,
		}, nil
	}

	return nil, ErrMissingInput
}
