package views

import (
	"strings"
	"testing"
	"time"
)

func TestRelativeDue(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	cases := []struct {
		due  time.Time
		want string
	}{
		{now.Add(-time.Minute), "overdue (Mar 10 08:59)"},
		{now.Add(25 * time.Minute), "in 25m"},
		{now.Add(5*time.Hour + 10*time.Minute), "in 5h"},
		{now.Add(48 * time.Hour), "Thu Mar 12 09:00"},
	}
	for _, tc := range cases {
		if got := RelativeDue(tc.due, now); got != tc.want {
			t.Fatalf("RelativeDue(%v) = %q, want %q", tc.due, got, tc.want)
		}
	}
}

func TestTaskMarkdown(t *testing.T) {
	due := time.Date(2026, 3, 10, 18, 30, 0, 0, time.UTC)
	md := TaskMarkdown("Pay rent", "", "High", "due soon", []string{"home"}, &due, false)
	for _, want := range []string{"# Pay rent", "**Status:** pending", "_(due soon)_", "`#home`", "Tue Mar 10 2026 18:30"} {
		if !strings.Contains(md, want) {
			t.Fatalf("missing %q in:\n%s", want, md)
		}
	}
	if strings.Contains(TaskMarkdown("x", "", "", "", nil, nil, true), "Priority") {
		t.Fatal("empty priority should be omitted")
	}
}
