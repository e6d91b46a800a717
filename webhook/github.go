package webhook

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-playground/webhooks/v6/github"

	"github.com/zama-stylez/notify-mm-action/internal"
)

// Dispatcher hands a push event over for delivery.
type Dispatcher interface {
	Dispatch(ctx context.Context, evctx *internal.EventContext) error
}

// GitHubHandler receives GitHub webhooks, filters them through the rule
// engine, and dispatches push events for notification.
type GitHubHandler struct {
	hook       *github.Webhook
	rules      *internal.RuleEngine
	dispatcher Dispatcher
	serverURL  string
	logger     *log.Logger
}

func NewGitHubHandler(secret, serverURL string, rules *internal.RuleEngine, dispatcher Dispatcher, logger *log.Logger) (*GitHubHandler, error) {
	hook, err := github.New(github.Options.Secret(secret))
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = log.Default()
	}
	return &GitHubHandler{
		hook:       hook,
		rules:      rules,
		dispatcher: dispatcher,
		serverURL:  serverURL,
		logger:     logger,
	}, nil
}

func (h *GitHubHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	payload, err := h.hook.Parse(r, github.PushEvent, github.PingEvent)
	if err != nil {
		if errors.Is(err, github.ErrEventNotFound) {
			// Not a push: acknowledged and ignored.
			w.WriteHeader(http.StatusOK)
			return
		}
		h.logger.Printf("github parse failed: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	push, ok := payload.(github.PushPayload)
	if !ok {
		// Ping.
		w.WriteHeader(http.StatusOK)
		return
	}

	internal.IncEvent("push")
	evctx := eventContextFromPush(push, h.serverURL)
	if !h.rules.Match(evctx) {
		h.logger.Printf("push to %s/%s filtered by rules", evctx.Repository, evctx.RefName)
		w.WriteHeader(http.StatusOK)
		return
	}

	if err := h.dispatcher.Dispatch(r.Context(), evctx); err != nil {
		h.logger.Printf("dispatch failed: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// eventContextFromPush maps a webhook push payload onto the event-context
// record the formatter consumes. An empty serverURL is derived from the
// repository's html_url.
func eventContextFromPush(push github.PushPayload, serverURL string) *internal.EventContext {
	if serverURL == "" {
		serverURL = strings.TrimSuffix(push.Repository.HTMLURL, "/"+push.Repository.FullName)
	}
	if serverURL == "" {
		serverURL = "https://github.com"
	}

	commits := make([]internal.Commit, 0, len(push.Commits))
	for _, c := range push.Commits {
		commit := internal.Commit{ID: c.ID, Message: c.Message, URL: c.URL}
		commit.Author.Name = c.Author.Name
		commits = append(commits, commit)
	}

	actor := push.Pusher.Name
	if actor == "" {
		actor = push.Sender.Login
	}

	return &internal.EventContext{
		EventName:  "push",
		Actor:      actor,
		ServerURL:  serverURL,
		Repository: push.Repository.FullName,
		RefName:    refName(push.Ref),
		Event: &internal.PushEvent{
			Before:  push.Before,
			After:   push.After,
			Commits: commits,
		},
	}
}

func refName(ref string) string {
	ref = strings.TrimPrefix(ref, "refs/heads/")
	return strings.TrimPrefix(ref, "refs/tags/")
}
