// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package repolink extracts and validates code-repository URLs found in
// free text, and detects textual claims of code availability. Free-text
// links to the supported hosts are mostly documentation, blog, and
// platform-navigation pages, so candidates pass a deny-list and an
// owner/repo shape check before they count as repositories.
package repolink

import (
	"regexp"
	"strings"
)

// denyList rejects known false-positive host and path prefixes. Matched
// as substrings of the lowercased URL, before any shape check runs.
var denyList = []string{
	"huggingface.co/huggingface",
	"huggingface.co/docs",
	"huggingface.co/blog",
	"huggingface.co/join",
	"huggingface.co/pricing",
	"github.com/github",
	"github.com/features",
	"github.com/explore",
	"/arxiv.",
}

// genericOwners are owner segments that never name a real repository
// owner on any supported host.
var genericOwners = map[string]bool{
	"docs":        true,
	"blog":        true,
	"api":         true,
	"hub":         true,
	"join":        true,
	"huggingface": true,
}

// repoShapes match owner/repo URLs on the supported hosts. The
// huggingface spaces form must precede the plain huggingface form,
// otherwise "spaces" would be captured as the owner.
var repoShapes = []*regexp.Regexp{
	regexp.MustCompile(`^https?://github\.com/([a-zA-Z0-9_-]+)/([a-zA-Z0-9_.-]+)(?:/|$)`),
	regexp.MustCompile(`^https?://gitlab\.com/([a-zA-Z0-9_-]+)/([a-zA-Z0-9_.-]+)(?:/|$)`),
	regexp.MustCompile(`^https?://huggingface\.co/spaces/([a-zA-Z0-9_-]+)/([a-zA-Z0-9_.-]+)(?:/|$)`),
	regexp.MustCompile(`^https?://huggingface\.co/([a-zA-Z0-9_-]+)/([a-zA-Z0-9_.-]+)(?:/|$)`),
}

// hostScans find candidate URLs in free text, in host-priority order:
// github, then gitlab, then huggingface.
var hostScans = []*regexp.Regexp{
	regexp.MustCompile(`(?i)https?://github\.com/[^\s<>"')\]]+`),
	regexp.MustCompile(`(?i)https?://gitlab\.com/[^\s<>"')\]]+`),
	regexp.MustCompile(`(?i)https?://huggingface\.co/[^\s<>"')\]]+`),
}

// IsValidRepo reports whether url names a plausible code repository: not
// deny-listed, shaped like owner/repo on a supported host, and not owned
// by a generic reserved name. The check is purely syntactic; the
// repository is never fetched.
func IsValidRepo(url string) bool {
	if url == "" {
		return false
	}

	lower := strings.ToLower(url)
	for _, deny := range denyList {
		if strings.Contains(lower, deny) {
			return false
		}
	}

	for _, shape := range repoShapes {
		m := shape.FindStringSubmatch(url)
		if m == nil {
			continue
		}
		return !genericOwners[strings.ToLower(m[1])]
	}
	return false
}

// ExtractRepoURL returns the first valid repository URL found in text,
// scanning hosts in priority order and candidates within a host in
// document order. Trailing punctuation picked up by the scan is stripped
// before validation. Returns "" when no candidate passes IsValidRepo.
func ExtractRepoURL(text string) string {
	if text == "" {
		return ""
	}
	for _, scan := range hostScans {
		for _, m := range scan.FindAllString(text, -1) {
			url := strings.TrimRight(m, ".,;:")
			if IsValidRepo(url) {
				return url
			}
		}
	}
	return ""
}

// mentionPatterns are the phrases that signal released or forthcoming
// code when no repository URL is extractable.
var mentionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)code.{0,20}(available|released?|at|github)`),
	regexp.MustCompile(`(?i)(available|released?).{0,20}code`),
	regexp.MustCompile(`(?i)open.?sourc`),
	regexp.MustCompile(`(?i)our code`),
	regexp.MustCompile(`(?i)source code`),
}

// MentionsCode reports whether text contains any code-availability
// phrase.
func MentionsCode(text string) bool {
	if text == "" {
		return false
	}
	for _, p := range mentionPatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}
