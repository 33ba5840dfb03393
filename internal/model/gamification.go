package model

// XPPerLevel scales the threshold for the next level: level * XPPerLevel.
const XPPerLevel = 100

type Stats struct {
	Level               int      `json:"level"`
	XP                  int      `json:"xp"`
	StreakDays          int      `json:"streak_days"`
	TasksCompletedToday int      `json:"tasks_completed_today"`
	Badges              []string `json:"badges"`
}

func (s Stats) NextLevelXP() int {
	return s.Level * XPPerLevel
}

// Progress is xp / (level * 100). The result is not clamped: the server is
// trusted to keep xp below the threshold.
func (s Stats) Progress() float64 {
	next := s.NextLevelXP()
	if next <= 0 {
		return 0
	}
	return float64(s.XP) / float64(next)
}

type AchievementEvent struct {
	Message  string `json:"message"`
	XPGained int    `json:"xp_gained"`
}

type ToggleKind int

const (
	PlainToggle ToggleKind = iota
	LevelUp
)

func (k ToggleKind) String() string {
	switch k {
	case LevelUp:
		return "level_up"
	default:
		return "plain"
	}
}

// ToggleResult is resolved once at the store boundary from either response
// shape of the toggle endpoint. Achievement is set only for LevelUp.
type ToggleResult struct {
	Kind        ToggleKind
	Task        Task
	XPGained    int
	Achievement *AchievementEvent
}

func NewToggleResult(task Task, achievement string, xpGained int) ToggleResult {
	if xpGained < 0 {
		xpGained = 0
	}
	res := ToggleResult{Kind: PlainToggle, Task: task, XPGained: xpGained}
	if achievement != "" {
		res.Kind = LevelUp
		res.Achievement = &AchievementEvent{Message: achievement, XPGained: xpGained}
	}
	return res
}

type WeeklyReport struct {
	Labels         []string `json:"labels"`
	Completed      []int    `json:"completed"`
	Pending        []int    `json:"pending"`
	Total          int      `json:"total"`
	TotalCompleted int      `json:"total_completed"`
}
