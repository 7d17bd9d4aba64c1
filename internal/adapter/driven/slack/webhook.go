// Package slack implements the Notifier port as a Slack incoming-webhook POST.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ocrfin/prnudge/internal/domain/model"
	"github.com/ocrfin/prnudge/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.Notifier = (*WebhookNotifier)(nil)

// WebhookNotifier posts one Block Kit message per run to a Slack incoming
// webhook. Delivery is best-effort: a non-2xx response is an error and there
// is no retry.
type WebhookNotifier struct {
	webhookURL string
	mapping    map[string]string
	httpClient *http.Client
}

// NewWebhookNotifier creates a notifier for the given webhook URL. mapping
// translates team slugs and usernames to Slack group/user IDs; a nil or empty
// mapping renders every owner as a raw slug.
func NewWebhookNotifier(webhookURL string, mapping map[string]string) *WebhookNotifier {
	return &WebhookNotifier{
		webhookURL: webhookURL,
		mapping:    mapping,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Message is the incoming-webhook payload shape.
type Message struct {
	Text   string  `json:"text"`
	Blocks []Block `json:"blocks"`
}

// Block is a single Block Kit layout block; this notifier only emits sections.
type Block struct {
	Type string      `json:"type"`
	Text *TextObject `json:"text,omitempty"`
}

// TextObject is a Block Kit text composition object.
type TextObject struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func section(text string) Block {
	return Block{Type: "section", Text: &TextObject{Type: "mrkdwn", Text: text}}
}

// Send renders the report and posts it to the webhook. It is called exactly
// once per run, including when the report holds zero stale PRs.
func (n *WebhookNotifier) Send(ctx context.Context, report model.Report) error {
	body, err := json.Marshal(n.BuildMessage(report))
	if err != nil {
		return fmt.Errorf("encoding slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("posting to slack: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("slack webhook returned %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	return nil
}

// BuildMessage renders the report into a webhook payload. Exported so tests
// can assert on the rendered blocks without a live POST.
func (n *WebhookNotifier) BuildMessage(report model.Report) Message {
	scope := ""
	if len(report.FilterTeams) > 0 {
		scope = fmt.Sprintf(" owned by %s", strings.Join(report.FilterTeams, ", "))
	}

	if len(report.Stale) == 0 {
		text := fmt.Sprintf("No stale PRs%s found in %s! All PRs are up to date.", scope, report.RepoFullName)
		return Message{
			Text: text,
			Blocks: []Block{
				section(fmt.Sprintf("*No stale PRs%s found in %s!*\nAll PRs are up to date.", scope, report.RepoFullName)),
			},
		}
	}

	plural := ""
	if len(report.Stale) != 1 {
		plural = "s"
	}
	header := fmt.Sprintf("*%d stale PR%s%s in %s* (threshold %s)",
		len(report.Stale), plural, scope, report.RepoFullName, model.FormatElapsed(report.Threshold))
	if noRev := report.WithoutReviewers(); noRev > 0 {
		header += fmt.Sprintf(" (%d with no reviewers)", noRev)
	}

	blocks := []Block{section(header)}
	for _, pr := range report.Stale {
		blocks = append(blocks, section(n.prLine(pr)))
	}

	return Message{
		Text:   fmt.Sprintf("Found %d stale PR%s in %s", len(report.Stale), plural, report.RepoFullName),
		Blocks: blocks,
	}
}

// prLine renders a single stale PR: linked number and title, author, requested
// reviewers, resolved owners and how long the PR has been idle.
func (n *WebhookNotifier) prLine(pr model.StalePR) string {
	reviewers := make([]string, 0, len(pr.RequestedReviewers)+len(pr.RequestedTeamSlugs))
	for _, r := range pr.RequestedReviewers {
		reviewers = append(reviewers, n.Mention(r))
	}
	for _, t := range pr.RequestedTeamSlugs {
		reviewers = append(reviewers, n.Mention(t))
	}
	reviewerText := "no reviewers"
	if len(reviewers) > 0 {
		reviewerText = strings.Join(reviewers, ", ")
	}

	ownerText := "no owners found"
	if len(pr.Owners) > 0 {
		mentions := make([]string, 0, len(pr.Owners))
		for _, o := range pr.Owners {
			mentions = append(mentions, n.Mention(o))
		}
		ownerText = strings.Join(mentions, ", ")
	}

	return fmt.Sprintf("<%s|#%d %s> by %s | reviewers: %s | owners: %s | stale %s",
		pr.URL, pr.Number, pr.Title, n.Mention(pr.Author),
		reviewerText, ownerText, model.FormatElapsed(pr.Elapsed))
}

// Mention translates a GitHub owner (user login or team slug) into a Slack
// mention. Mapped values starting with "U" become user mentions, "S" become
// user-group mentions, and pre-formatted mentions pass through unchanged. For
// "org/team" slugs the bare team name is tried as a second key. Unmapped
// owners fall back to the raw slug as plain text.
func (n *WebhookNotifier) Mention(owner string) string {
	key := strings.TrimPrefix(owner, "@")

	if id, ok := n.mapping[key]; ok {
		return formatMapped(id, key)
	}

	if i := strings.Index(key, "/"); i >= 0 {
		team := key[i+1:]
		if id, ok := n.mapping[team]; ok {
			return formatMapped(id, team)
		}
	}

	return "@" + key
}

func formatMapped(id, key string) string {
	switch {
	case strings.HasPrefix(id, "<!subteam^"), strings.HasPrefix(id, "<@"):
		return id
	case strings.HasPrefix(id, "U"):
		return fmt.Sprintf("<@%s>", id)
	case strings.HasPrefix(id, "S"):
		return fmt.Sprintf("<!subteam^%s>", id)
	default:
		return fmt.Sprintf("<!subteam^%s|%s>", id, key)
	}
}
