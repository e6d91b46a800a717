package internal

import "encoding/json"

// EventContext is the structured form of the serialized event context the CI
// environment supplies (the `github` context of a workflow run).
type EventContext struct {
	EventName  string     `json:"event_name"`
	Actor      string     `json:"triggering_actor"`
	ServerURL  string     `json:"server_url"`
	Repository string     `json:"repository"`
	RefName    string     `json:"ref_name"`
	Event      *PushEvent `json:"event"`
}

// PushEvent holds the event object of a push. For other event kinds the
// object has a different shape and the fields here simply stay empty.
type PushEvent struct {
	Before  string   `json:"before"`
	After   string   `json:"after"`
	Commits []Commit `json:"commits"`
}

// Commit is a single commit as reported by a push event.
type Commit struct {
	ID      string `json:"id"`
	Message string `json:"message"`
	URL     string `json:"url"`
	Author  struct {
		Name string `json:"name"`
	} `json:"author"`
}

// ParseContext decodes a raw event-context blob. Decoding is syntactic only:
// absent fields stay zero-valued and surface downstream, they are not parse
// failures.
func ParseContext(raw string) (*EventContext, error) {
	var evctx EventContext
	if err := json.Unmarshal([]byte(raw), &evctx); err != nil {
		return nil, &ParseError{Err: err}
	}
	return &evctx, nil
}
