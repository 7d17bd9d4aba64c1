package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "prnudge",
	Short: "Posts a Slack summary of stale pull requests",
	Long: `prnudge checks one GitHub repository for open pull requests that have
had no activity past a configurable threshold and posts a single summary
message to a Slack incoming webhook, tagging requested reviewers and the
CODEOWNERS of the changed files.

It is designed to run as a scheduled one-shot job (e.g. from GitHub Actions).`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(newCheckCmd())
}
