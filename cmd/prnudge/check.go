package main

import (
	"context"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	githubadapter "github.com/ocrfin/prnudge/internal/adapter/driven/github"
	slackadapter "github.com/ocrfin/prnudge/internal/adapter/driven/slack"
	"github.com/ocrfin/prnudge/internal/application"
	"github.com/ocrfin/prnudge/internal/codeowners"
	"github.com/ocrfin/prnudge/internal/config"
)

func newCheckCmd() *cobra.Command {
	var opts config.Options

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check for stale pull requests and notify Slack",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigFile, "config", "c", "", "path to optional YAML config file")
	cmd.Flags().StringVar(&opts.Repo, "repo", "", "repository as owner/repo (overrides GITHUB_REPOSITORY)")
	cmd.Flags().StringVar(&opts.Hours, "stale-hours", "", "staleness threshold in hours (overrides STALE_HOURS)")
	cmd.Flags().StringVar(&opts.Days, "stale-days", "", "staleness threshold in days, used when no hours value is set")
	cmd.Flags().StringSliceVar(&opts.FilterTeams, "filter-teams", nil, "only report stale PRs owned by these teams")

	return cmd
}

func runCheck(ctx context.Context, opts config.Options) error {
	// Pick up a local .env when present; in CI configuration comes from the
	// workflow environment.
	_ = godotenv.Load()

	cfg, err := config.Load(opts)
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"repo", cfg.Repo,
		"threshold", cfg.StaleThreshold,
		"channel", cfg.Channel,
		"codeowners_path", cfg.CodeownersPath,
		"team_mappings", len(cfg.TeamMapping),
	)

	rules, err := codeowners.ParseFile(cfg.CodeownersPath)
	if err != nil {
		slog.Warn("codeowners file unavailable, ownership resolution disabled",
			"path", cfg.CodeownersPath, "error", err)
		rules = codeowners.Empty()
	} else {
		slog.Info("codeowners loaded", "path", cfg.CodeownersPath, "rules", rules.Len())
	}

	host := githubadapter.NewClient(cfg.GitHubToken)
	notifier := slackadapter.NewWebhookNotifier(cfg.WebhookURL, cfg.TeamMapping)

	svc := application.NewNotifyService(host, notifier, rules, cfg.Repo, cfg.StaleThreshold, cfg.FilterTeams)
	return svc.Run(ctx)
}
