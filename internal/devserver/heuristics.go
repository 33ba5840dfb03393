package devserver

import (
	"fmt"
	"strings"
	"time"

	"github.com/sandeepkv93/fluidtasks/internal/model"
)

var (
	urgentKeywords   = []string{"urgent", "asap", "deadline", "important", "exam", "client"}
	learningKeywords = []string{"study", "learn", "course"}
)

type breakdownRule struct {
	keywords []string
	steps    []string
}

var breakdownRules = []breakdownRule{
	{
		keywords: []string{"study", "exam", "learn"},
		steps:    []string{"Review core concepts", "Practice practice problems", "Summarize notes", "Take a mock test"},
	},
	{
		keywords: []string{"buy", "shop", "grocery"},
		steps:    []string{"Check current inventory", "Make a shopping list", "Compare prices online", "Go to the store"},
	},
	{
		keywords: []string{"project", "code", "app"},
		steps:    []string{"Define requirements", "Set up development environment", "Create initial prototype", "Test and debug", "Deploy or share"},
	},
	{
		keywords: []string{"write", "essay", "blog"},
		steps:    []string{"Research topic", "Create an outline", "Draft the content", "Proofread and edit"},
	},
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// AnalyzePriority assigns a priority from title keywords first, then from how
// close the due date is.
func AnalyzePriority(title string, due *time.Time, now time.Time) (model.Priority, string) {
	lower := strings.ToLower(title)
	if containsAny(lower, urgentKeywords) {
		return model.PriorityHigh, "Marked High Priority because keywords indicate urgency or importance."
	}
	if due != nil {
		diff := due.Sub(now)
		switch {
		case diff < 8*time.Hour:
			return model.PriorityHigh, "Marked High Priority because the due date is very soon (within 8 hours)."
		case diff < 72*time.Hour:
			return model.PriorityMedium, "Marked Medium Priority because the due date is approaching."
		}
	}
	if containsAny(lower, learningKeywords) {
		return model.PriorityMedium, "Marked Medium Priority to encourage consistent learning progress."
	}
	return model.PriorityLow, "Marked Low Priority as it appears to be a routine or non-urgent task."
}

func GenerateSubtasks(title string) []string {
	lower := strings.ToLower(title)
	for _, rule := range breakdownRules {
		if containsAny(lower, rule.keywords) {
			return append([]string(nil), rule.steps...)
		}
	}
	return []string{"Prepare for " + title, "Execute main step", "Review and finalize"}
}

// ReminderMessage words a reminder by whole minutes left, truncated toward
// zero, so a deadline less than a minute away or past reads as upcoming.
func ReminderMessage(title string, due time.Time, now time.Time) string {
	minutes := int(due.Sub(now).Minutes())
	switch {
	case minutes > 0 && minutes <= 15:
		return fmt.Sprintf("⏰ Reminder: You have %d minutes left to finish '%s'. A small push now can save stress later!", minutes, title)
	case minutes > 0 && minutes <= 60:
		return fmt.Sprintf("⏳ Heads up: '%s' is due in less than an hour. Good luck!", title)
	case minutes < 0:
		return fmt.Sprintf("⚠️ The deadline for '%s' has passed. Better late than never!", title)
	default:
		return fmt.Sprintf("📅 Upcoming: '%s' is due on %s.", title, due.Format("Jan 02, 03:04 PM"))
	}
}
