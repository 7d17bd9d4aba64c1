// Package config loads application configuration from flags, environment
// variables and an optional YAML file.
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultThreshold is used when neither an hours nor a days value is configured.
const DefaultThreshold = 72 * time.Hour

// DefaultCodeownersPath is where GitHub conventionally keeps the ownership file.
const DefaultCodeownersPath = ".github/CODEOWNERS"

// defaultTeamMappingPath is tried when SLACK_TEAM_MAPPING is unset.
const defaultTeamMappingPath = ".github/slack_team_mapping.json"

// Config holds everything one run needs, assembled once at startup and
// passed down explicitly. Fields are never re-read from the environment.
type Config struct {
	GitHubToken    string
	Repo           string // "owner/repo"
	WebhookURL     string
	Channel        string // informational only, not enforced
	StaleThreshold time.Duration
	CodeownersPath string
	TeamMapping    map[string]string
	FilterTeams    []string
}

// Options carries command-line overrides into Load. Empty fields mean "not
// set on the command line"; precedence is flag > env > config file > default.
type Options struct {
	ConfigFile  string
	Repo        string
	Hours       string
	Days        string
	FilterTeams []string
}

// fileConfig is the optional YAML config file shape. Secrets (token, webhook
// URL, team mapping) are deliberately env-only.
type fileConfig struct {
	Repo           string `yaml:"repo"`
	Channel        string `yaml:"channel"`
	CodeownersPath string `yaml:"codeowners_path"`
	Stale          struct {
		Hours string `yaml:"hours"`
		Days  string `yaml:"days"`
	} `yaml:"stale"`
	FilterTeams []string `yaml:"filter_teams"`
}

// Load assembles and validates the configuration. The webhook URL is checked
// first so a missing secret halts the run before any network call.
func Load(opts Options) (*Config, error) {
	var file fileConfig
	if opts.ConfigFile != "" {
		data, err := os.ReadFile(opts.ConfigFile)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", opts.ConfigFile, err)
		}
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", opts.ConfigFile, err)
		}
	}

	webhookURL := os.Getenv("SLACK_WEBHOOK_URL")
	if webhookURL == "" {
		return nil, fmt.Errorf("SLACK_WEBHOOK_URL environment variable is required")
	}

	token := os.Getenv("GITHUB_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("GITHUB_TOKEN environment variable is required")
	}

	repo := firstNonEmpty(opts.Repo, os.Getenv("GITHUB_REPOSITORY"), file.Repo)
	if repo == "" {
		return nil, fmt.Errorf("repository not configured: set GITHUB_REPOSITORY or --repo")
	}
	if parts := strings.SplitN(repo, "/", 2); len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil, fmt.Errorf("invalid repository %q: expected owner/repo", repo)
	}

	hours := firstNonEmpty(opts.Hours, os.Getenv("STALE_HOURS"), file.Stale.Hours)
	days := firstNonEmpty(opts.Days, os.Getenv("STALE_DAYS"), file.Stale.Days)
	threshold, err := ResolveThreshold(hours, days)
	if err != nil {
		return nil, err
	}

	filterTeams := opts.FilterTeams
	if len(filterTeams) == 0 {
		if v := os.Getenv("FILTER_TEAMS"); v != "" {
			filterTeams = splitList(v)
		} else {
			filterTeams = file.FilterTeams
		}
	}

	return &Config{
		GitHubToken:    token,
		Repo:           repo,
		WebhookURL:     webhookURL,
		Channel:        firstNonEmpty(os.Getenv("SLACK_CHANNEL"), file.Channel),
		StaleThreshold: threshold,
		CodeownersPath: firstNonEmpty(os.Getenv("CODEOWNERS_PATH"), file.CodeownersPath, DefaultCodeownersPath),
		TeamMapping:    loadTeamMapping(os.Getenv("SLACK_TEAM_MAPPING")),
		FilterTeams:    filterTeams,
	}, nil
}

// ResolveThreshold applies the precedence order: an explicit hours value wins
// even when it is zero (zero means every open PR is stale); otherwise a days
// value converted to hours; otherwise 72 hours. Negative values are rejected.
func ResolveThreshold(hours, days string) (time.Duration, error) {
	if hours != "" {
		h, err := strconv.ParseFloat(hours, 64)
		if err != nil {
			return 0, fmt.Errorf("STALE_HOURS has invalid value %q: %w", hours, err)
		}
		if h < 0 {
			return 0, fmt.Errorf("STALE_HOURS must not be negative, got %q", hours)
		}
		return time.Duration(h * float64(time.Hour)), nil
	}
	if days != "" {
		d, err := strconv.ParseFloat(days, 64)
		if err != nil {
			return 0, fmt.Errorf("STALE_DAYS has invalid value %q: %w", days, err)
		}
		if d < 0 {
			return 0, fmt.Errorf("STALE_DAYS must not be negative, got %q", days)
		}
		return time.Duration(d * 24 * float64(time.Hour)), nil
	}
	return DefaultThreshold, nil
}

// loadTeamMapping resolves the team-to-Slack mapping. The value is tried as
// inline JSON first, then as a path to a JSON file; with no value the default
// mapping file is tried. Every failure degrades to an empty mapping with a
// warning: unmapped teams render as raw slugs, never as a hard error.
func loadTeamMapping(value string) map[string]string {
	if value != "" {
		mapping := map[string]string{}
		if err := json.Unmarshal([]byte(value), &mapping); err == nil {
			return mapping
		}
		slog.Warn("SLACK_TEAM_MAPPING is not valid JSON, trying as file path")
		m, err := readTeamMappingFile(value)
		if err != nil {
			slog.Warn("team mapping unreadable, teams will render unresolved", "path", value, "error", err)
			return map[string]string{}
		}
		return m
	}

	if m, err := readTeamMappingFile(defaultTeamMappingPath); err == nil {
		return m
	}
	return map[string]string{}
}

func readTeamMappingFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	mapping := map[string]string{}
	if err := json.Unmarshal(data, &mapping); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return mapping, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
