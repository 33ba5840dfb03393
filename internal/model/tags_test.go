package model

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"testing"

	"pgregory.net/rapid"
)

func TestExtractTagsScenario(t *testing.T) {
	got := ExtractTags("Buy milk #errand")
	if !slices.Equal(got, []string{"errand"}) {
		t.Fatalf("unexpected tags: %v", got)
	}
}

func TestExtractTagsPreservesCaseAndDedupes(t *testing.T) {
	got := ExtractTags("#Work ship #api-v2 then #Work again #work #a_b!")
	want := []string{"Work", "api-v2", "work", "a_b"}
	if !slices.Equal(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestExtractTagsIgnoresBareHash(t *testing.T) {
	if got := ExtractTags("# heading and #!"); len(got) != 0 {
		t.Fatalf("expected no tags, got %v", got)
	}
}

func TestMergeTags(t *testing.T) {
	got := MergeTags([]string{"errand"}, []string{"#home", " ", "errand"})
	if !slices.Equal(got, []string{"errand", "home"}) {
		t.Fatalf("unexpected merge: %v", got)
	}
}

var tokenGen = rapid.StringMatching(`[A-Za-z0-9_-]{1,8}`)

// *For any* title assembled from words and #token markers, ExtractTags
// returns exactly the distinct tokens in first-seen order.
func TestPropertyExtractTagsMatchesMarkers(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 8).Draw(rt, "n")
		parts := make([]string, 0, n)
		want := make([]string, 0, n)
		for i := 0; i < n; i++ {
			if rapid.Bool().Draw(rt, fmt.Sprintf("isTag_%d", i)) {
				tok := tokenGen.Draw(rt, fmt.Sprintf("tok_%d", i))
				parts = append(parts, "#"+tok)
				if !slices.Contains(want, tok) {
					want = append(want, tok)
				}
				continue
			}
			parts = append(parts, rapid.StringMatching(`[a-z ]{0,6}`).Draw(rt, fmt.Sprintf("word_%d", i)))
		}
		title := strings.Join(parts, " ")
		got := ExtractTags(title)
		if !slices.Equal(got, want) {
			rt.Fatalf("ExtractTags(%q) = %v, want %v", title, got, want)
		}
	})
}

// *For any* string, every extracted tag is a valid token and appears after '#'.
func TestPropertyExtractTagsAreValidTokens(t *testing.T) {
	valid := regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	rapid.Check(t, func(rt *rapid.T) {
		title := rapid.String().Draw(rt, "title")
		seen := map[string]bool{}
		for _, tag := range ExtractTags(title) {
			if !valid.MatchString(tag) {
				rt.Fatalf("invalid tag %q from %q", tag, title)
			}
			if !strings.Contains(title, "#"+tag) {
				rt.Fatalf("tag %q not present as marker in %q", tag, title)
			}
			if seen[tag] {
				rt.Fatalf("duplicate tag %q", tag)
			}
			seen[tag] = true
		}
	})
}
