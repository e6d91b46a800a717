package internal

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const nonPushContext = `{"event_name":"workflow_dispatch"}`

// TestResolveLegacyFileWins tests that an existing payload file is returned
// verbatim and no other source is consulted, even a conflicting PAYLOAD.
func TestResolveLegacyFileWins(t *testing.T) {
	dir := t.TempDir()
	contents := `{"text":"from file"}`
	if err := os.WriteFile(filepath.Join(dir, "mattermost.json"), []byte(contents), 0o600); err != nil {
		t.Fatalf("write payload file: %v", err)
	}

	in := Inputs{
		Filename:   "mattermost.json",
		PayloadDir: dir,
		Payload:    `{"text":"from input"}`,
		Text:       "also set",
		Context:    "{definitely not json",
	}

	payload, err := Resolve(in)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	raw, ok := payload.(RawPayload)
	if !ok {
		t.Fatalf("expected RawPayload, got %T", payload)
	}
	if string(raw) != contents {
		t.Fatalf("expected verbatim file contents, got %q", raw)
	}
}

// TestResolveAbsentFileFallsThrough tests that a missing payload file is not
// an error and resolution continues down the chain.
func TestResolveAbsentFileFallsThrough(t *testing.T) {
	in := Inputs{
		Filename:   "nope.json",
		PayloadDir: t.TempDir(),
		Context:    nonPushContext,
		Text:       "hello",
	}

	payload, err := Resolve(in)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if _, ok := payload.(TextPayload); !ok {
		t.Fatalf("expected TextPayload, got %T", payload)
	}
}

// TestResolveUnreadableFile tests that a payload path naming a directory is
// a FileAccessError, distinguished from an absent file.
func TestResolveUnreadableFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "payload"), 0o700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	in := Inputs{
		Filename:   "payload",
		PayloadDir: dir,
		Context:    nonPushContext,
		Text:       "hello",
	}

	_, err := Resolve(in)
	if err == nil {
		t.Fatalf("expected error for unreadable payload file")
	}
	var accessErr *FileAccessError
	if !errors.As(err, &accessErr) {
		t.Fatalf("expected FileAccessError, got %T: %v", err, err)
	}
}

// TestResolvePushEvent tests that a push context delegates to the formatter.
func TestResolvePushEvent(t *testing.T) {
	in := Inputs{
		Context: `{"event_name":"push","triggering_actor":"alice","server_url":"https://github.com","repository":"o/r","ref_name":"main"}`,
		Payload: `{"ignored":true}`,
	}

	payload, err := Resolve(in)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	msg, ok := payload.(MessagePayload)
	if !ok {
		t.Fatalf("expected MessagePayload, got %T", payload)
	}
	if msg.Username != "github-notification" {
		t.Fatalf("expected template username, got %q", msg.Username)
	}
}

// TestResolveOpaquePayload tests that a non-push context with a PAYLOAD
// input returns the JSON as-is.
func TestResolveOpaquePayload(t *testing.T) {
	in := Inputs{
		Context: nonPushContext,
		Payload: `{"channel":"#ops","text":"custom"}`,
		Text:    "shadowed",
	}

	payload, err := Resolve(in)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	opaque, ok := payload.(OpaquePayload)
	if !ok {
		t.Fatalf("expected OpaquePayload, got %T", payload)
	}
	body, err := opaque.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if string(body) != in.Payload {
		t.Fatalf("expected payload passed through unmodified, got %q", body)
	}
}

// TestResolveInvalidPayload tests that a malformed PAYLOAD input is an
// InvalidPayloadError.
func TestResolveInvalidPayload(t *testing.T) {
	in := Inputs{
		Context: nonPushContext,
		Payload: "{broken",
	}

	_, err := Resolve(in)
	if err == nil {
		t.Fatalf("expected error for malformed payload input")
	}
	var invalidErr *InvalidPayloadError
	if !errors.As(err, &invalidErr) {
		t.Fatalf("expected InvalidPayloadError, got %T: %v", err, err)
	}
}

// TestResolveTextPayload tests the plain-text path with its channel,
// username and icon overrides.
func TestResolveTextPayload(t *testing.T) {
	in := Inputs{
		Context:  nonPushContext,
		Text:     "hello",
		Channel:  "#general",
		Username: "bot",
		IconURL:  "http://x/i.png",
	}

	payload, err := Resolve(in)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	text, ok := payload.(TextPayload)
	if !ok {
		t.Fatalf("expected TextPayload, got %T", payload)
	}
	want := TextPayload{Channel: "#general", Username: "bot", IconURL: "http://x/i.png", Text: "hello"}
	if text != want {
		t.Fatalf("expected %+v, got %+v", want, text)
	}

	body, err := text.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	wantJSON := `{"channel":"#general","username":"bot","icon_url":"http://x/i.png","text":"hello"}`
	if string(body) != wantJSON {
		t.Fatalf("expected %s, got %s", wantJSON, body)
	}
}

// TestResolveNoSource tests that resolution fails when no source produced a
// payload.
func TestResolveNoSource(t *testing.T) {
	in := Inputs{Context: nonPushContext}

	_, err := Resolve(in)
	if !errors.Is(err, ErrMissingInput) {
		t.Fatalf("expected ErrMissingInput, got %v", err)
	}
}

// TestResolveMalformedContext tests that a malformed context is fatal when
// no legacy file short-circuits the chain.
func TestResolveMalformedContext(t *testing.T) {
	in := Inputs{Context: "{broken", Text: "hello"}

	_, err := Resolve(in)
	if err == nil {
		t.Fatalf("expected error for malformed context")
	}
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got %T: %v", err, err)
	}
}
