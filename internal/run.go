package internal

import (
	"context"
	"log"
)

// Run executes one action-mode invocation: validate inputs, resolve the
// payload, deliver it. Errors are returned, not fatal here; the caller
// decides how they map to exit codes.
func Run(ctx context.Context, in Inputs, notifier *Notifier, logger *log.Logger) error {
	if err := in.Validate(); err != nil {
		return err
	}

	payload, err := Resolve(in)
	if err != nil {
		return err
	}

	if err := notifier.Send(ctx, in.WebhookURL, payload); err != nil {
		return err
	}

	logger.Printf("notification delivered")
	return nil
}
