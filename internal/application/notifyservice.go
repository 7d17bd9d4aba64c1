package application

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/ocrfin/prnudge/internal/codeowners"
	"github.com/ocrfin/prnudge/internal/domain/model"
	"github.com/ocrfin/prnudge/internal/domain/port/driven"
)

// NotifyService runs the stale-PR pipeline: fetch open PRs, classify stale
// ones, resolve ownership of their changed files, and deliver one
// notification. A run either completes in full or aborts on the first fatal
// error; there is no retry and no state carried between runs.
type NotifyService struct {
	host        driven.HostClient
	notifier    driven.Notifier
	rules       *codeowners.Ruleset
	repo        string
	threshold   time.Duration
	filterTeams []string
	logger      *slog.Logger
	now         func() time.Time
}

// NewNotifyService creates a NotifyService. filterTeams may be nil; when set,
// only stale PRs owned by one of the given teams are reported.
func NewNotifyService(
	host driven.HostClient,
	notifier driven.Notifier,
	rules *codeowners.Ruleset,
	repo string,
	threshold time.Duration,
	filterTeams []string,
) *NotifyService {
	return &NotifyService{
		host:        host,
		notifier:    notifier,
		rules:       rules,
		repo:        repo,
		threshold:   threshold,
		filterTeams: filterTeams,
		logger:      slog.Default(),
		now:         time.Now,
	}
}

// SetNow overrides the service clock. Intended for tests.
func (s *NotifyService) SetNow(now func() time.Time) {
	s.now = now
}

// Run executes one notification cycle. Listing and delivery failures are
// fatal; a failure to fetch one PR's changed files only degrades that PR's
// ownership data.
func (s *NotifyService) Run(ctx context.Context) error {
	prs, err := s.host.FetchOpenPullRequests(ctx, s.repo)
	if err != nil {
		return fmt.Errorf("fetching open pull requests: %w", err)
	}
	s.logger.Info("open pull requests fetched", "repo", s.repo, "count", len(prs))

	now := s.now()
	stale := FilterStale(prs, now, s.threshold)

	items := make([]model.StalePR, 0, len(stale))
	for _, pr := range stale {
		item := model.StalePR{
			PullRequest: pr,
			Elapsed:     pr.StaleFor(now),
		}

		files, err := s.host.FetchChangedFiles(ctx, s.repo, pr.Number)
		if err != nil {
			s.logger.Warn("could not fetch changed files, skipping ownership resolution",
				"pr", pr.Number, "error", err)
		} else {
			item.Owners = s.rules.OwnersForFiles(files)
		}

		items = append(items, item)
	}

	if len(s.filterTeams) > 0 {
		items = filterByOwners(items, s.filterTeams)
	}

	SortStale(items)

	report := model.Report{
		RepoFullName: s.repo,
		Threshold:    s.threshold,
		OpenCount:    len(prs),
		FilterTeams:  s.filterTeams,
		Stale:        items,
	}
	s.logger.Info("stale pull requests classified",
		"repo", s.repo,
		"stale", len(items),
		"threshold", s.threshold,
	)

	if err := s.notifier.Send(ctx, report); err != nil {
		return fmt.Errorf("delivering notification: %w", err)
	}
	s.logger.Info("notification delivered", "repo", s.repo, "stale", len(items))

	return nil
}

// FilterStale returns the PRs whose last update is strictly older than
// now minus threshold, preserving input order.
func FilterStale(prs []model.PullRequest, now time.Time, threshold time.Duration) []model.PullRequest {
	var stale []model.PullRequest
	for _, pr := range prs {
		if pr.IsStale(now, threshold) {
			stale = append(stale, pr)
		}
	}
	return stale
}

// SortStale orders stale PRs for display: PRs with no requested reviewers
// first, then by longest idle time.
func SortStale(items []model.StalePR) {
	sort.SliceStable(items, func(i, j int) bool {
		ri, rj := items[i].HasReviewers(), items[j].HasReviewers()
		if ri != rj {
			return !ri
		}
		return items[i].Elapsed > items[j].Elapsed
	})
}

// filterByOwners keeps the stale PRs whose resolved owners intersect the
// configured team filter. Owner slugs are compared after normalization so
// "@org/team-backend" in CODEOWNERS matches a "team-backend" filter entry.
func filterByOwners(items []model.StalePR, teams []string) []model.StalePR {
	want := map[string]bool{}
	for _, t := range teams {
		want[normalizeSlug(t)] = true
	}

	filtered := make([]model.StalePR, 0, len(items))
	for _, item := range items {
		for _, o := range item.Owners {
			if want[normalizeSlug(o)] {
				filtered = append(filtered, item)
				break
			}
		}
	}
	return filtered
}

// normalizeSlug lowercases an owner slug and strips the "@" prefix and any
// leading "org/" qualifier.
func normalizeSlug(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, "@"))
	if i := strings.LastIndex(s, "/"); i >= 0 {
		s = s[i+1:]
	}
	return s
}
