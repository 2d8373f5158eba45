package gitdiff

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"

	"github.com/CosmoTheDev/zwischen/models"
)

// Matcher tests paths against the configured ignore globs. "**" spans
// directories, "*" does not.
type Matcher struct {
	globs []glob.Glob
}

// NewMatcher compiles patterns. Patterns that do not compile are skipped
// with a warning.
func NewMatcher(patterns []string) *Matcher {
	m := &Matcher{}
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		g, err := glob.Compile(p, '/')
		if err != nil {
			slog.Warn("Ignoring invalid ignore pattern", "pattern", p, "error", err)
			continue
		}
		m.globs = append(m.globs, g)
	}
	return m
}

// Match reports whether the slash-separated relative path is ignored. A
// leading "**/" also matches at the top level, so "**/vendor/**" covers
// "vendor/x.go".
func (m *Matcher) Match(path string) bool {
	if m == nil {
		return false
	}
	path = strings.TrimPrefix(filepath.ToSlash(path), "./")
	rooted := "/" + path
	for _, g := range m.globs {
		if g.Match(path) || g.Match(rooted) {
			return true
		}
	}
	return false
}

// FilterFiles keeps the files (relative to root) that exist as regular files
// and are not ignored.
func FilterFiles(root string, files []string, ignore *Matcher) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		abs := f
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(root, f)
		}
		info, err := os.Stat(abs)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		if ignore.Match(NormalizePath(root, f)) {
			slog.Debug("Skipping ignored file", "file", f)
			continue
		}
		out = append(out, f)
	}
	return out
}

// NormalizePath puts a tool-reported path into the form used for comparison:
// no leading "./", forward slashes, and relative to root when it is an
// absolute path inside root.
func NormalizePath(root, p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = strings.TrimPrefix(p, "./")
	if filepath.IsAbs(filepath.FromSlash(p)) && root != "" {
		if rel, err := filepath.Rel(root, filepath.FromSlash(p)); err == nil && !strings.HasPrefix(rel, "..") {
			return filepath.ToSlash(rel)
		}
	}
	return p
}

// FilterFindings keeps the findings whose normalised path is one of changed.
// An empty changed list keeps everything.
func FilterFindings(root string, findings []models.Finding, changed []string) []models.Finding {
	if len(changed) == 0 {
		return findings
	}
	wanted := make(map[string]bool, len(changed))
	for _, c := range changed {
		wanted[NormalizePath(root, c)] = true
	}

	out := make([]models.Finding, 0, len(findings))
	for _, f := range findings {
		if wanted[NormalizePath(root, f.Location.File)] {
			out = append(out, f)
		}
	}
	return out
}

// DropIgnored removes findings whose path matches the ignore globs.
func DropIgnored(root string, findings []models.Finding, ignore *Matcher) []models.Finding {
	out := make([]models.Finding, 0, len(findings))
	for _, f := range findings {
		if ignore.Match(NormalizePath(root, f.Location.File)) {
			continue
		}
		out = append(out, f)
	}
	return out
}
