package model

import (
	"regexp"
	"strings"
)

var tagPattern = regexp.MustCompile(`#([A-Za-z0-9_-]+)`)

// ExtractTags returns the #token markers in title, case preserved, in
// first-seen order and without duplicates.
func ExtractTags(title string) []string {
	matches := tagPattern.FindAllStringSubmatch(title, -1)
	out := make([]string, 0, len(matches))
	seen := make(map[string]bool, len(matches))
	for _, m := range matches {
		tag := m[1]
		if seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}

// MergeTags appends extra to base, skipping blanks and duplicates.
func MergeTags(base []string, extra []string) []string {
	out := make([]string, 0, len(base)+len(extra))
	seen := make(map[string]bool, len(base)+len(extra))
	for _, group := range [][]string{base, extra} {
		for _, tag := range group {
			tag = strings.TrimPrefix(strings.TrimSpace(tag), "#")
			if tag == "" || seen[tag] {
				continue
			}
			seen[tag] = true
			out = append(out, tag)
		}
	}
	return out
}
