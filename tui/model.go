package tui

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"webmgen/clipboard"
	"webmgen/encoder"
	"webmgen/logging"
	"webmgen/probe"
)

// copiedStatusDuration is how long the "Copied" confirmation stays visible
const copiedStatusDuration = 3 * time.Second

// Inspector probes a media file
type Inspector interface {
	Inspect(ctx context.Context, path string) (probe.Result, error)
}

// PreferenceStore remembers form fields between sessions
type PreferenceStore interface {
	Load(key string, dst any) bool
	Save(key string, value any)
}

// field identifies a focusable row of the form. The first inputCount fields
// are text inputs, the rest are toggles.
type field int

const (
	fieldFile field = iota
	fieldMaxSize
	fieldWidth
	fieldHeight
	fieldFPS
	fieldStart
	fieldEnd
	toggleAudio
	toggleRandomize
	toggleFish
	fieldCount
)

const inputCount = int(toggleAudio)

var fieldLabels = [fieldCount]string{
	"File",
	"Max size",
	"Width",
	"Height",
	"FPS",
	"Start",
	"End",
	"Disable audio",
	"Random name",
	"Fish shell",
}

func (f field) isInput() bool { return int(f) < inputCount }

// loadFileMsg asks the model to load a file, used for the file given on the
// command line
type loadFileMsg struct {
	path string
}

// probeResultMsg carries a finished probe; token ties it to the request
type probeResultMsg struct {
	token  int
	path   string
	result probe.Result
	err    error
}

// clearStatusMsg hides the status line unless a newer status replaced it
type clearStatusMsg struct {
	token int
}

// Options configures the interactive shell
type Options struct {
	Inspector   Inspector
	Clipboard   clipboard.Writer
	Preferences PreferenceStore
	Logger      *logging.Logger
	// Defaults is the form state before saved preferences are applied
	Defaults encoder.Constraints
	// InitialFile is loaded on start when set
	InitialFile string
}

// Model is the Bubble Tea model for the command generator
type Model struct {
	inspector Inspector
	clip      clipboard.Writer
	prefs     PreferenceStore
	log       *logging.Logger

	inputs   []textinput.Model
	focus    field
	spinner  spinner.Model
	viewport viewport.Model

	constraints encoder.Constraints
	result      *probe.Result
	stats       *probe.MediaStats
	plan        encoder.Plan
	script      encoder.Script

	// output filename memoized per (source, randomize)
	outputName string
	nameSource string
	nameRandom bool

	probing     bool
	probeErr    string
	token       int
	cancelProbe context.CancelFunc

	status      string
	statusToken int
	showHelp    bool
	initialFile string

	Width  int
	Height int
}

// NewModel creates the shell with preferences applied and the plan derived
func NewModel(opts Options) Model {
	constraints := opts.Defaults
	if constraints.Dialect == "" {
		constraints = encoder.DefaultConstraints()
	}
	constraints.Source = ""
	if opts.Preferences != nil {
		var saved encoder.Preferences
		if opts.Preferences.Load(encoder.PreferencesKey, &saved) {
			saved.Apply(&constraints)
		}
	}

	log := opts.Logger
	if log == nil {
		log = logging.Nop()
	}
	clip := opts.Clipboard
	if clip == nil {
		clip = clipboard.NewOSC52(os.Stderr)
	}

	inputs := make([]textinput.Model, inputCount)
	for i := range inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 16
		ti.Width = 14
		ti.PlaceholderStyle = lipgloss.NewStyle().Foreground(colorMuted)
		inputs[i] = ti
	}
	inputs[fieldFile].CharLimit = 4096
	inputs[fieldFile].Width = 56
	inputs[fieldFile].Placeholder = "Drag & drop a video or type a path, then Enter"
	inputs[fieldMaxSize].Placeholder = "MB"
	inputs[fieldStart].Placeholder = "0"

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(colorSecondary)

	vp := viewport.New(80, 8)

	m := Model{
		inspector:   opts.Inspector,
		clip:        clip,
		prefs:       opts.Preferences,
		log:         log.With(zap.String("component", "tui")),
		inputs:      inputs,
		spinner:     s,
		viewport:    vp,
		constraints: constraints,
		initialFile: strings.TrimSpace(opts.InitialFile),
	}
	m.syncInputs(-1)
	m.setFocus(fieldFile)
	m.recompute()
	return m
}

// Init starts the cursor blink and loads the initial file, if any
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if m.initialFile != "" {
		path := m.initialFile
		cmds = append(cmds, func() tea.Msg { return loadFileMsg{path: path} })
	}
	return tea.Batch(cmds...)
}

// Plan returns the current encoding plan
func (m Model) Plan() encoder.Plan { return m.plan }

// Script returns the current rendered script
func (m Model) Script() encoder.Script { return m.script }

// Constraints returns the current form state
func (m Model) Constraints() encoder.Constraints { return m.constraints }

func probeCmd(ctx context.Context, inspector Inspector, token int, path string) tea.Cmd {
	return func() tea.Msg {
		result, err := inspector.Inspect(ctx, path)
		return probeResultMsg{token: token, path: path, result: result, err: err}
	}
}

// loadFile switches the source and starts a probe scoped to a fresh token.
// Any probe still running for the previous file is cancelled.
func (m *Model) loadFile(path string) tea.Cmd {
	path = cleanPath(path)
	if path == "" {
		return nil
	}
	if m.cancelProbe != nil {
		m.cancelProbe()
		m.cancelProbe = nil
	}
	m.token++
	m.constraints.Source = path
	m.inputs[fieldFile].SetValue(path)
	m.result, m.stats = nil, nil
	m.probeErr = ""
	m.updatePlaceholders()
	m.recompute()

	if m.inspector == nil {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelProbe = cancel
	m.probing = true
	m.log.Info("probing file", zap.String("path", path), zap.Int("token", m.token))
	return tea.Batch(probeCmd(ctx, m.inspector, m.token, path), m.spinner.Tick)
}

func (m *Model) handleProbeResult(msg probeResultMsg) {
	if msg.token != m.token {
		m.log.Debug("dropping stale probe result", zap.String("path", msg.path), zap.Int("token", msg.token))
		return
	}
	m.probing = false
	if m.cancelProbe != nil {
		m.cancelProbe()
		m.cancelProbe = nil
	}

	switch {
	case msg.err != nil:
		m.log.Warn("probe failed", zap.String("path", msg.path), zap.Error(msg.err))
		m.probeErr = "Could not read video metadata; enter settings manually"
	case !msg.result.HasVideo:
		res := msg.result
		m.result = &res
		m.probeErr = "No video track found"
	default:
		res := msg.result
		m.result = &res
		m.stats = res.VideoStats()
	}
	m.updatePlaceholders()
	m.recompute()
}

// recompute derives the plan and script from the current form state
func (m *Model) recompute() {
	if m.outputName == "" || m.constraints.Source != m.nameSource || m.constraints.RandomizeName != m.nameRandom {
		m.outputName = encoder.OutputFilename(m.constraints.Source, m.constraints.RandomizeName)
		m.nameSource = m.constraints.Source
		m.nameRandom = m.constraints.RandomizeName
	}
	m.plan = encoder.DerivePlan(m.stats, m.constraints, encoder.WithOutputFilename(m.outputName))
	m.script = encoder.Render(m.plan)
	m.viewport.SetContent(renderScript(m.script, m.viewport.Width))
}

// applyInput pushes the text of input f into the constraints
func (m *Model) applyInput(f field) {
	v := encoder.ParseNumber(m.inputs[f].Value())
	switch f {
	case fieldMaxSize:
		m.constraints.SetMaxSize(v)
		m.savePreferences()
	case fieldWidth:
		m.constraints.SetWidth(v, m.stats)
	case fieldHeight:
		m.constraints.SetHeight(v, m.stats)
	case fieldFPS:
		m.constraints.SetFrameRate(v)
	case fieldStart:
		m.constraints.SetTrimStart(v, m.duration())
	case fieldEnd:
		m.constraints.SetTrimEnd(v, m.duration())
	default:
		return
	}
	m.syncInputs(f)
	m.recompute()
}

func (m *Model) toggle(f field) {
	switch f {
	case toggleAudio:
		m.constraints.DisableAudio = !m.constraints.DisableAudio
	case toggleRandomize:
		m.constraints.RandomizeName = !m.constraints.RandomizeName
	case toggleFish:
		if m.constraints.Dialect == encoder.DialectFish {
			m.constraints.Dialect = encoder.DialectPOSIX
		} else {
			m.constraints.Dialect = encoder.DialectFish
		}
	default:
		return
	}
	m.savePreferences()
	m.recompute()
}

func (m *Model) savePreferences() {
	if m.prefs == nil {
		return
	}
	m.prefs.Save(encoder.PreferencesKey, encoder.PreferencesOf(m.constraints))
}

func (m *Model) duration() float64 {
	if m.stats == nil {
		return 0
	}
	return m.stats.DurationSeconds
}

// setFocus moves focus and normalizes the text of every numeric input
func (m *Model) setFocus(f field) tea.Cmd {
	m.focus = f
	m.syncInputs(-1)
	var cmd tea.Cmd
	for i := range m.inputs {
		if field(i) == f {
			cmd = m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
	return cmd
}

// syncInputs rewrites numeric inputs from the constraints, except skip,
// which holds text the user is still typing
func (m *Model) syncInputs(skip field) {
	c := m.constraints
	values := map[field]string{
		fieldMaxSize: formatFloat(c.MaxSizeMB),
		fieldWidth:   formatInt(c.Width),
		fieldHeight:  formatInt(c.Height),
		fieldFPS:     formatInt(c.FrameRate),
		fieldStart:   formatFloat(c.TrimStart),
		fieldEnd:     formatFloat(c.TrimEnd),
	}
	for f, v := range values {
		if f != skip {
			m.inputs[f].SetValue(v)
		}
	}
}

func (m *Model) updatePlaceholders() {
	m.inputs[fieldWidth].Placeholder = ""
	m.inputs[fieldHeight].Placeholder = ""
	m.inputs[fieldFPS].Placeholder = ""
	m.inputs[fieldEnd].Placeholder = ""
	if m.stats == nil {
		return
	}
	if m.stats.DisplayWidth > 0 {
		m.inputs[fieldWidth].Placeholder = strconv.Itoa(m.stats.DisplayWidth)
		m.inputs[fieldHeight].Placeholder = strconv.Itoa(m.stats.DisplayHeight)
	}
	if m.stats.EstimatedFrameRate > 0 {
		m.inputs[fieldFPS].Placeholder = strconv.Itoa(m.stats.EstimatedFrameRate)
	}
	m.inputs[fieldEnd].Placeholder = strconv.FormatFloat(m.stats.DurationSeconds, 'f', 3, 64)
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

// cleanPath strips whitespace and the quotes terminals add around dropped
// paths with spaces, and unescapes backslash-escaped spaces
func cleanPath(path string) string {
	path = strings.Trim(strings.TrimSpace(path), "\"'")
	return strings.ReplaceAll(path, `\ `, " ")
}

// isRegularFile reports whether path names an existing regular file
func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
