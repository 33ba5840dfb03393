package views

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

type AppData struct {
	Header     string
	LeftPane   string
	RightPane  string
	StatusLine string
	StatusErr  bool
	Footer     string
	Toast      *ToastData
	Overlay    *OverlayData
	Width      int
}

type ToastData struct {
	Kind    string
	Message string
}

type OverlayData struct {
	Message  string
	XPGained int
}

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	panelStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Strikethrough(true)
	activeStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	overlayStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("11")).
			Foreground(lipgloss.Color("11")).
			Bold(true).
			Padding(1, 4).
			Align(lipgloss.Center)
	toastStyles = map[string]lipgloss.Style{
		"reminder":   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("9")).Padding(0, 1),
		"completion": lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("10")).Padding(0, 1),
		"feedback":   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("12")).Padding(0, 1),
	}
)

func paneWidth(total int) int {
	if total <= 0 {
		return 58
	}
	w := total/2 - 4
	if w < 30 {
		w = 30
	}
	return w
}

func RenderApp(data AppData) string {
	width := paneWidth(data.Width)
	left := panelStyle.Width(width).Render(data.LeftPane)
	row := left
	if strings.TrimSpace(data.RightPane) != "" {
		right := panelStyle.Width(width).Render(data.RightPane)
		row = lipgloss.JoinHorizontal(lipgloss.Top, left, right)
	}

	lines := []string{headerStyle.Render(data.Header)}
	if data.Overlay != nil {
		lines = append(lines, RenderOverlay(*data.Overlay))
	}
	lines = append(lines, row)
	if data.Toast != nil {
		lines = append(lines, RenderToast(*data.Toast))
	}
	if data.StatusLine != "" {
		if data.StatusErr {
			lines = append(lines, errorStyle.Render(data.StatusLine))
		} else {
			lines = append(lines, statusStyle.Render(data.StatusLine))
		}
	}
	if data.Footer != "" {
		lines = append(lines, footerStyle.Render(data.Footer))
	}
	return strings.Join(lines, "\n")
}

func RenderToast(t ToastData) string {
	style, ok := toastStyles[t.Kind]
	if !ok {
		style = toastStyles["feedback"]
	}
	return style.Render(t.Message)
}

func RenderOverlay(o OverlayData) string {
	body := "🏆 " + o.Message
	if o.XPGained > 0 {
		body += "\n\n+" + itoa(o.XPGained) + " XP"
	}
	return overlayStyle.Render(body)
}

func RenderMarkdown(md string, width int) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	if width <= 0 {
		width = 56
	}
	r, err := glamour.NewTermRenderer(glamour.WithStandardStyle("dark"), glamour.WithWordWrap(width))
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimSpace(out)
}
