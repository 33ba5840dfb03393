package model

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
)

const MaxInterests = 10

type Profile struct {
	Name      string   `json:"name"`
	Username  string   `json:"username"`
	Email     string   `json:"email"`
	Gender    string   `json:"gender"`
	Interests []string `json:"interests"`
}

func (p Profile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: profile name is required", ErrValidation)
	}
	if strings.TrimSpace(p.Username) == "" {
		return fmt.Errorf("%w: profile username is required", ErrValidation)
	}
	if len(p.Interests) > MaxInterests {
		return fmt.Errorf("%w: at most %d interests", ErrValidation, MaxInterests)
	}
	return nil
}

// AddInterest ignores blanks, duplicates and anything past MaxInterests.
func (p *Profile) AddInterest(interest string) bool {
	interest = strings.TrimSpace(interest)
	if interest == "" || slices.Contains(p.Interests, interest) || len(p.Interests) >= MaxInterests {
		return false
	}
	p.Interests = append(p.Interests, interest)
	return true
}

type Workplace struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
	Icon string `json:"icon,omitempty"`
}

func (w Workplace) Validate() error {
	if strings.TrimSpace(w.Name) == "" {
		return fmt.Errorf("%w: workplace name is required", ErrValidation)
	}
	u, err := url.Parse(w.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: workplace url %q is not absolute", ErrValidation, w.URL)
	}
	return nil
}

func DefaultWorkplaces() []Workplace {
	return []Workplace{
		{ID: "gmail", Name: "Gmail", URL: "https://mail.google.com"},
		{ID: "docs", Name: "Docs", URL: "https://docs.google.com"},
		{ID: "meet", Name: "Meet", URL: "https://meet.google.com"},
		{ID: "youtube", Name: "YouTube", URL: "https://youtube.com"},
		{ID: "notion", Name: "Notion", URL: "https://notion.so"},
	}
}
