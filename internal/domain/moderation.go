package domain

import "context"

// ModerationResult is the verdict of a content moderation pre-check.
type ModerationResult struct {
	Flagged    bool
	Categories []string
}

// Moderator screens query text before it reaches retrieval.
// A flagged verdict is a rejection of the request, not a system fault.
type Moderator interface {
	Moderate(ctx context.Context, text string) (ModerationResult, error)
}
