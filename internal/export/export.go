// Package export writes approved translations out of the workbench: a
// flat patch table (CSV or XLSX) for downstream tooling, or an in-place
// copy of the asset's original workbook with a new locale column appended.
package export

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"
)

var unsafeFragmentChars = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

func safeFragment(value, fallback string) string {
	cleaned := strings.Trim(unsafeFragmentChars.ReplaceAllString(strings.TrimSpace(value), "_"), "_")
	if cleaned == "" {
		return fallback
	}
	return cleaned
}

func shortAssetID(assetID string) string {
	if len(assetID) <= 8 {
		return assetID
	}
	return assetID[:8]
}

// utcTimestampToken renders a patch export filename's timestamp fragment.
func utcTimestampToken(now time.Time) string {
	return now.UTC().Format("20060102_150405")
}

// utcFilenameTimestamp renders an LP-copy export filename's timestamp
// fragment: a colon-free, second-precision UTC ISO-8601 string.
func utcFilenameTimestamp(now time.Time) string {
	return strings.ReplaceAll(now.UTC().Format("2006-01-02T15:04:05Z"), ":", "-")
}

func localeShort(targetLocale string) string {
	base := strings.TrimSpace(strings.SplitN(targetLocale, "-", 2)[0])
	if base != "" {
		return strings.ToUpper(base)
	}
	if up := strings.ToUpper(strings.TrimSpace(targetLocale)); up != "" {
		return up
	}
	return "XX"
}

func newColumnName(targetLocale string) string {
	return fmt.Sprintf("NEW %s", localeShort(targetLocale))
}

func newColumnFilenameToken(targetLocale string) string {
	return fmt.Sprintf("NEW%s", localeShort(targetLocale))
}

func ensureDir(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("create export directory %s: %w", path, err)
	}
	return nil
}

// atomicWriteFile writes data to path via a temp-file-then-rename so a
// reader never observes a partially written export.
func atomicWriteFile(path string, data []byte) error {
	tempPath := fmt.Sprintf("%s.tmp.%d", path, os.Getpid())
	if err := os.WriteFile(tempPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
