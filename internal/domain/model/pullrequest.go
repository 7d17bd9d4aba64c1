package model

import (
	"fmt"
	"time"
)

// PullRequest represents an open GitHub pull request as fetched for one run.
// Nothing here is persisted; every run starts from a fresh listing.
type PullRequest struct {
	Number       int
	RepoFullName string
	Title        string
	Author       string
	URL          string
	Branch       string
	BaseBranch   string
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Requested reviewers as returned by the list endpoint: user logins and
	// team slugs are kept separate because they render differently in Slack.
	RequestedReviewers []string
	RequestedTeamSlugs []string
}

// StaleFor returns how long the PR has been without activity as of now.
func (pr PullRequest) StaleFor(now time.Time) time.Duration {
	return now.Sub(pr.UpdatedAt)
}

// IsStale reports whether the PR has been inactive for strictly longer than
// threshold. A zero threshold therefore marks every open PR stale.
func (pr PullRequest) IsStale(now time.Time, threshold time.Duration) bool {
	return pr.StaleFor(now) > threshold
}

// HasReviewers reports whether any user or team review has been requested.
func (pr PullRequest) HasReviewers() bool {
	return len(pr.RequestedReviewers) > 0 || len(pr.RequestedTeamSlugs) > 0
}

// FormatElapsed renders a duration for display: whole hours under a day
// ("2h"), otherwise days with a remainder ("1d 3h", "7d"). Partial hours
// round down.
func FormatElapsed(d time.Duration) string {
	hours := int(d.Hours())
	if hours < 24 {
		return fmt.Sprintf("%dh", hours)
	}
	days := hours / 24
	rem := hours % 24
	if rem == 0 {
		return fmt.Sprintf("%dd", days)
	}
	return fmt.Sprintf("%dd %dh", days, rem)
}
