// Package types holds the shared data model for the localization workbench:
// projects, assets, segments, translation candidates, approvals, TM entries,
// glossary terms, QA flags, schema profiles and jobs.
package types

import (
	"regexp"
	"strings"
	"time"
)

// Project is the top-level container for a localization workbench. Its slug
// is derived once at creation time and never changes; the enabled-locale set
// is the only mutable piece of identity.
type Project struct {
	ID                   string
	Name                 string
	Slug                 string
	DefaultSourceLocale  string
	DefaultTargetLocale  string
	EnabledLocales       []string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

var (
	slugNonAlnum = regexp.MustCompile(`[^a-z0-9]+`)
	slugDashRun  = regexp.MustCompile(`-+`)
)

// Slugify lowercases name, replaces runs of non-alphanumerics with a single
// '-', and trims leading/trailing dashes.
func Slugify(name string) string {
	lowered := strings.ToLower(strings.TrimSpace(name))
	replaced := slugNonAlnum.ReplaceAllString(lowered, "-")
	collapsed := slugDashRun.ReplaceAllString(replaced, "-")
	return strings.Trim(collapsed, "-")
}
