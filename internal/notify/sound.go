package notify

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strconv"
)

type Cue int

const (
	CueReminder Cue = iota
	CueVictory
)

func (c Cue) String() string {
	if c == CueVictory {
		return "victory"
	}
	return "reminder"
}

// Player starts a sound cue. Implementations must not block for the length
// of the clip.
type Player interface {
	Play(ctx context.Context, cue Cue, volume float64) error
}

type NoopPlayer struct{}

func (NoopPlayer) Play(context.Context, Cue, float64) error { return nil }

// ExecPlayer plays system sounds with paplay (Linux) or afplay (macOS).
type ExecPlayer struct {
	ReminderSound string
	VictorySound  string
}

func DefaultExecPlayer() ExecPlayer {
	switch runtime.GOOS {
	case "darwin":
		return ExecPlayer{
			ReminderSound: "/System/Library/Sounds/Glass.aiff",
			VictorySound:  "/System/Library/Sounds/Hero.aiff",
		}
	default:
		return ExecPlayer{
			ReminderSound: "/usr/share/sounds/freedesktop/stereo/message-new-instant.oga",
			VictorySound:  "/usr/share/sounds/freedesktop/stereo/complete.oga",
		}
	}
}

func (p ExecPlayer) Play(ctx context.Context, cue Cue, volume float64) error {
	file := p.ReminderSound
	if cue == CueVictory {
		file = p.VictorySound
	}
	if file == "" {
		return fmt.Errorf("notify: no sound configured for %s", cue)
	}
	volume = clampVolume(volume)

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "linux":
		cmd = exec.CommandContext(ctx, "paplay", "--volume="+strconv.Itoa(int(volume*65536)), file)
	case "darwin":
		cmd = exec.CommandContext(ctx, "afplay", "-v", strconv.FormatFloat(volume, 'f', 2, 64), file)
	default:
		return fmt.Errorf("notify: sound unsupported on %s", runtime.GOOS)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("notify: play %s: %w", cue, err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

func clampVolume(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
