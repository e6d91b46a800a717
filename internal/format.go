package internal

import (
	"fmt"
	"strings"
)

const (
	notifyUsername = "github-notification"
	notifyIconURL  = "https://github.githubassets.com/images/modules/logo_page/GitHub-Mark.png"
	pushColor      = "#483d8b"
)

// FormatPush builds the notification for a push event. It is pure: the
// output depends only on the context record, and commits render in the order
// the trigger supplied them.
func FormatPush(evctx *EventContext) MessagePayload {
	branchLink := mdLink(evctx.RefName, fmt.Sprintf("%s/%s/tree/%s", evctx.ServerURL, evctx.Repository, evctx.RefName))
	repoLink := mdLink(evctx.Repository, fmt.Sprintf("%s/%s", evctx.ServerURL, evctx.Repository))

	// Absent before/after render as the literal "undefined", matching what
	// the notification has always shown for such pushes.
	before, after := "undefined", "undefined"
	var commits []Commit
	if evctx.Event != nil {
		if evctx.Event.Before != "" {
			before = evctx.Event.Before
		}
		if evctx.Event.After != "" {
			after = evctx.Event.After
		}
		commits = evctx.Event.Commits
	}
	diffLink := mdLink("View Changes", fmt.Sprintf("%s/%s/compare/%s...%s", evctx.ServerURL, evctx.Repository, before, after))

	var b strings.Builder
	fmt.Fprintf(&b, "- Pushed by **%s** @ %s ( %s )\n", evctx.Actor, branchLink, repoLink)
	fmt.Fprintf(&b, "- Commits ( %s )\n", diffLink)
	for _, commit := range commits {
		fmt.Fprintf(&b, "  - %s : %s - %s\n", mdLink(shortSHA(commit.ID), commit.URL), commit.Message, commit.Author.Name)
	}

	return Wrap(b.String(), pushColor)
}

// Wrap puts text into the fixed notification template.
func Wrap(text, color string) MessagePayload {
	return MessagePayload{
		Username:    notifyUsername,
		IconURL:     notifyIconURL,
		Attachments: []Attachment{{Text: text, Color: color}},
	}
}

func mdLink(label, target string) string {
	return fmt.Sprintf("[%s](%s)", label, target)
}

// shortSHA abbreviates a commit id to its first 7 characters.
func shortSHA(id string) string {
	if len(id) < 7 {
		return id
	}
	return id[:7]
}
