package tui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"webmgen/encoder"
)

// Color palette - modern, readable
var (
	colorPrimary   = lipgloss.Color("#7C3AED") // Violet
	colorSecondary = lipgloss.Color("#06B6D4") // Cyan
	colorSuccess   = lipgloss.Color("#10B981") // Emerald
	colorError     = lipgloss.Color("#EF4444") // Red
	colorWarning   = lipgloss.Color("#F59E0B") // Amber
	colorMuted     = lipgloss.Color("#6B7280") // Gray
	colorText      = lipgloss.Color("#F9FAFB") // White
	colorTextDim   = lipgloss.Color("#9CA3AF") // Light gray
	colorBorder    = lipgloss.Color("#374151") // Dark gray
)

// formHeight approximates the rows used by everything but the script pane
const formHeight = 34

var (
	// Title bar
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorText).
			Background(colorPrimary).
			Padding(0, 2).
			MarginBottom(1)

	// Section headers
	sectionHeaderStyle = lipgloss.NewStyle().
				Foreground(colorSecondary).
				Bold(true).
				MarginTop(1)

	// Source stats box
	statsBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 2)

	statLabelStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Width(12)

	statValueStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Bold(true)

	statUnitStyle = lipgloss.NewStyle().
			Foreground(colorTextDim)

	// Form rows
	focusedLabelStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true).
				Width(16)

	fieldLabelStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Width(16)

	filePathStyle = lipgloss.NewStyle().
			Foreground(colorTextDim)

	// Status styles
	successStyle = lipgloss.NewStyle().
			Foreground(colorSuccess).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(colorWarning)

	// Help text
	helpStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			MarginTop(1)

	// Script pane
	scriptBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	scriptCommentStyle = lipgloss.NewStyle().
				Foreground(colorMuted).
				Italic(true)

	helpBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSecondary).
			Padding(1, 2)
)

// View renders the TUI
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(" ▶ WebM Command Generator ") + "\n")

	if m.showHelp {
		b.WriteString(helpBoxStyle.Width(m.contentWidth()).Render(helpText))
		b.WriteString("\n" + helpStyle.Render("  [Esc] Close help") + "\n")
		return b.String()
	}

	if stats := m.renderStats(); stats != "" {
		b.WriteString(statsBoxStyle.Render(stats) + "\n")
	}
	switch {
	case m.probing:
		b.WriteString("  " + m.spinner.View() + statUnitStyle.Render(" Reading video metadata...") + "\n")
	case m.probeErr != "":
		b.WriteString(errorStyle.Render("  ✗ "+m.probeErr) + "\n")
	}

	b.WriteString(m.renderForm())

	b.WriteString(sectionHeaderStyle.Render("  Script") + "\n")
	b.WriteString(scriptBoxStyle.Render(m.viewport.View()) + "\n")

	if m.status != "" {
		b.WriteString(successStyle.Render("  ✓ "+m.status) + "\n")
	}

	help := helpStyle.Render("  [Tab] Next  •  [Ctrl+Y] Copy  •  [Ctrl+S] Copy sample  •  [?] Help  •  [Esc] Quit")
	b.WriteString(help + "\n")
	return b.String()
}

func (m Model) renderStats() string {
	if m.result == nil {
		return ""
	}
	maxPathLen := m.contentWidth() - 16
	if maxPathLen < 20 {
		maxPathLen = 60
	}

	row := func(label, value string) string {
		return statLabelStyle.Render(label) + statValueStyle.Render(value)
	}
	lines := []string{
		row("Name", truncatePath(filepath.Base(m.result.Path), maxPathLen)),
		row("Size", formatBytes(m.result.SizeBytes)),
	}
	if s := m.stats; s != nil {
		duration := time.Duration(s.DurationSeconds * float64(time.Second))
		lines = append(lines,
			row("Duration", formatDuration(duration))+statUnitStyle.Render(fmt.Sprintf(" (%.1fs)", s.DurationSeconds)),
			row("Bitrate", encoder.FormatBitrate(s.AverageBitrate)),
			row("Resolution", fmt.Sprintf("%dx%d", s.DisplayWidth, s.DisplayHeight)),
			row("FPS", formatFrameRate(s.EstimatedFrameRate))+statUnitStyle.Render(fmt.Sprintf(" (%.2f measured)", s.AveragePacketRate)),
		)
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m Model) renderForm() string {
	var b strings.Builder
	b.WriteString(sectionHeaderStyle.Render("  Settings") + "\n")

	for i := 0; i < int(fieldCount); i++ {
		f := field(i)
		b.WriteString("  " + m.label(f))
		if f.isInput() {
			b.WriteString(m.inputs[f].View())
			if hint := m.inputHint(f); hint != "" {
				b.WriteString(statUnitStyle.Render("  " + hint))
			}
		} else {
			b.WriteString(renderToggle(m.toggleValue(f)))
		}
		b.WriteString("\n")

		if f == fieldMaxSize {
			b.WriteString("  " + fieldLabelStyle.Render("Bitrate") + m.bitrateText() + "\n")
		}
	}

	output := m.plan.OutputFilename
	if output == "" {
		output = "—"
	}
	b.WriteString("  " + fieldLabelStyle.Render("Output") + filePathStyle.Render(truncatePath(output, 60)) + "\n")
	return b.String()
}

func (m Model) label(f field) string {
	marker := "  "
	style := fieldLabelStyle
	if f == m.focus {
		marker = "› "
		style = focusedLabelStyle
	}
	return style.Render(marker + fieldLabels[f])
}

func (m Model) inputHint(f field) string {
	switch f {
	case fieldMaxSize:
		return "MB"
	case fieldStart, fieldEnd:
		return "seconds"
	}
	return ""
}

func (m Model) toggleValue(f field) bool {
	switch f {
	case toggleAudio:
		return m.constraints.DisableAudio
	case toggleRandomize:
		return m.constraints.RandomizeName
	case toggleFish:
		return m.constraints.Dialect == encoder.DialectFish
	}
	return false
}

func (m Model) bitrateText() string {
	if m.plan.TargetBitrate == nil {
		return statUnitStyle.Render("—")
	}
	text := statValueStyle.Render(encoder.FormatBitrate(float64(*m.plan.TargetBitrate)))
	if *m.plan.TargetBitrate == 0 {
		text += warningStyle.Render("  size too small for audio")
	}
	return text
}

func (m Model) contentWidth() int {
	if m.Width <= 4 {
		return 76
	}
	return m.Width - 4
}

func renderToggle(on bool) string {
	if on {
		return successStyle.Render("[x]")
	}
	return statUnitStyle.Render("[ ]")
}

// renderScript lays out the script for the viewport, wrapping long commands
func renderScript(s encoder.Script, width int) string {
	wrap := lipgloss.NewStyle().Width(max(20, width-2))
	lines := s.Lines(true)
	for i, line := range lines {
		if strings.HasPrefix(line, "#") {
			lines[i] = scriptCommentStyle.Render(line)
			continue
		}
		lines[i] = wrap.Render(line)
	}
	return strings.Join(lines, "\n")
}

func formatFrameRate(fps int) string {
	if fps <= 0 {
		return "—"
	}
	return fmt.Sprintf("%d", fps)
}

func truncatePath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	// Show beginning and end
	if maxLen < 20 {
		return path[:maxLen-3] + "..."
	}
	half := (maxLen - 5) / 2
	return path[:half] + " ... " + path[len(path)-half:]
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

func formatDuration(d time.Duration) string {
	if d < 0 {
		return "—"
	}
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
