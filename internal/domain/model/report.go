package model

import "time"

// StalePR is a pull request classified as stale, enriched with the data the
// notification needs: how long it has been idle and who owns the touched files.
type StalePR struct {
	PullRequest

	Elapsed time.Duration
	// Owners resolved from CODEOWNERS across all changed files, deduplicated
	// in order of first appearance.
	Owners []string
}

// Report is the input to a notifier: everything one delivery summarizes.
// A report with zero stale PRs still produces a delivery ("no stale PRs").
type Report struct {
	RepoFullName string
	Threshold    time.Duration
	OpenCount    int
	FilterTeams  []string
	Stale        []StalePR
}

// WithoutReviewers counts stale PRs that have no requested reviewers at all.
func (r Report) WithoutReviewers() int {
	n := 0
	for _, pr := range r.Stale {
		if !pr.HasReviewers() {
			n++
		}
	}
	return n
}
