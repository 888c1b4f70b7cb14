package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"webmgen/encoder"
	"webmgen/metrics"
)

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.viewport.Width = max(20, msg.Width-4)
		m.viewport.Height = max(4, msg.Height-formHeight)
		m.viewport.SetContent(renderScript(m.script, m.viewport.Width))
		return m, nil

	case loadFileMsg:
		return m, m.loadFile(msg.path)

	case probeResultMsg:
		m.handleProbeResult(msg)
		return m, nil

	case clearStatusMsg:
		if msg.token == m.statusToken {
			m.status = ""
		}
		return m, nil

	case spinner.TickMsg:
		if !m.probing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m.updateFocusedInput(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Paste {
		if path := cleanPath(string(msg.Runes)); isRegularFile(path) {
			m.setFocus(fieldFile)
			return m, m.loadFile(path)
		}
		return m.updateFocusedInput(msg)
	}

	switch msg.String() {
	case "ctrl+c":
		return m.quit()
	case "esc":
		if m.showHelp {
			m.showHelp = false
			return m, nil
		}
		return m.quit()
	case "f1":
		m.showHelp = !m.showHelp
		return m, nil
	case "?":
		if m.focus != fieldFile {
			m.showHelp = !m.showHelp
			return m, nil
		}
	}

	if m.showHelp {
		return m, nil
	}

	switch msg.String() {
	case "ctrl+y":
		return m, m.copyScript(false)
	case "ctrl+s":
		return m, m.copyScript(true)
	case "tab", "down":
		return m, m.setFocus((m.focus + 1) % fieldCount)
	case "shift+tab", "up":
		return m, m.setFocus((m.focus + fieldCount - 1) % fieldCount)
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	case "enter":
		switch {
		case m.focus == fieldFile:
			return m, m.loadFile(m.inputs[fieldFile].Value())
		case !m.focus.isInput():
			m.toggle(m.focus)
			return m, nil
		default:
			return m, m.setFocus((m.focus + 1) % fieldCount)
		}
	case " ":
		if !m.focus.isInput() {
			m.toggle(m.focus)
			return m, nil
		}
	}

	return m.updateFocusedInput(msg)
}

// updateFocusedInput forwards msg to the focused text input and applies the
// edit when its value changed
func (m Model) updateFocusedInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if !m.focus.isInput() {
		return m, nil
	}
	before := m.inputs[m.focus].Value()
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	if m.focus != fieldFile && m.inputs[m.focus].Value() != before {
		m.applyInput(m.focus)
	}
	return m, cmd
}

// copyScript places the full or one-second sample script on the clipboard.
// A failed write leaves the status untouched.
func (m *Model) copyScript(sample bool) tea.Cmd {
	script := m.script
	if sample {
		if !script.HasPasses() {
			return nil
		}
		script = encoder.Render(encoder.SamplePlan(m.plan))
	}

	err := m.clip.WriteText(script.Text())
	metrics.RecordCopy(err)
	if err != nil {
		m.log.Debug("clipboard write failed", zap.Error(err))
		return nil
	}
	metrics.RecordScript(metrics.SurfaceTUI, sample)

	m.statusToken++
	m.status = "Copied"
	if sample {
		m.status = "Copied sample"
	}
	token := m.statusToken
	return tea.Tick(copiedStatusDuration, func(time.Time) tea.Msg {
		return clearStatusMsg{token: token}
	})
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	if m.cancelProbe != nil {
		m.cancelProbe()
		m.cancelProbe = nil
	}
	return m, tea.Quit
}
