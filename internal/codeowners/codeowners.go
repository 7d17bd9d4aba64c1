// Package codeowners parses CODEOWNERS files and resolves ownership for
// changed file paths.
//
// The format is line-oriented: a path glob followed by one or more owners
// (usernames or team slugs). Rules are evaluated in file order and, per the
// CODEOWNERS convention, the last rule whose pattern matches a path wins for
// that path.
package codeowners

import (
	"bufio"
	"io"
	"os"
	"regexp"
	"strings"
)

// Rule pairs a path glob with the owners responsible for matching files.
type Rule struct {
	Pattern string
	Owners  []string

	// re is nil when the pattern could not be compiled; matching then falls
	// back to plain substring/prefix semantics.
	re *regexp.Regexp
}

// Ruleset is an ordered list of rules. The zero value matches nothing.
type Ruleset struct {
	rules []Rule
}

// Empty returns a ruleset that resolves no owners for any path.
func Empty() *Ruleset {
	return &Ruleset{}
}

// ParseFile reads and parses a CODEOWNERS file. A missing or unreadable file
// is an error; callers are expected to degrade to Empty with a warning.
func ParseFile(path string) (*Ruleset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f), nil
}

// Parse reads rules from r. Malformed lines (no owners, comment-only, blank)
// are skipped; parsing itself never fails.
func Parse(r io.Reader) *Ruleset {
	rs := &Ruleset{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.Index(line, "#"); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		pattern := fields[0]
		rs.rules = append(rs.rules, Rule{
			Pattern: pattern,
			Owners:  fields[1:],
			re:      compilePattern(pattern),
		})
	}
	return rs
}

// Len returns the number of parsed rules.
func (rs *Ruleset) Len() int {
	return len(rs.rules)
}

// OwnersForFile resolves the owners of a single path: the owners of the last
// rule whose pattern matches, or nil when no rule matches.
func (rs *Ruleset) OwnersForFile(path string) []string {
	normalized := strings.TrimPrefix(path, "/")

	var matched []string
	for i := range rs.rules {
		if rs.rules[i].matches(normalized) {
			matched = rs.rules[i].Owners
		}
	}
	return matched
}

// OwnersForFiles resolves owners across a set of changed paths: the union of
// each path's last-match owners, deduplicated in order of first appearance.
func (rs *Ruleset) OwnersForFiles(paths []string) []string {
	var owners []string
	seen := map[string]bool{}
	for _, p := range paths {
		for _, o := range rs.OwnersForFile(p) {
			if !seen[o] {
				seen[o] = true
				owners = append(owners, o)
			}
		}
	}
	return owners
}

func (r Rule) matches(path string) bool {
	if r.re != nil {
		return r.re.MatchString(path)
	}
	// Fallback for patterns that did not compile.
	if strings.HasPrefix(r.Pattern, "/") {
		return strings.HasPrefix(path, strings.TrimPrefix(r.Pattern, "/"))
	}
	return strings.Contains(path, r.Pattern)
}

// compilePattern translates a CODEOWNERS glob into a regexp matched against
// paths without a leading slash: "**" crosses directory boundaries, "*" stops
// at them, and a leading "/" anchors the pattern to the repository root.
func compilePattern(pattern string) *regexp.Regexp {
	anchored := strings.HasPrefix(pattern, "/")
	body := regexp.QuoteMeta(strings.TrimPrefix(pattern, "/"))
	body = strings.ReplaceAll(body, `\*\*`, `.*`)
	body = strings.ReplaceAll(body, `\*`, `[^/]*`)

	var expr string
	if anchored {
		expr = "^" + body + "$"
	} else {
		expr = ".*" + body + "$"
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil
	}
	return re
}
