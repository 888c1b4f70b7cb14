package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"webmgen/clipboard"
	"webmgen/encoder"
	"webmgen/probe"
)

type fakeInspector struct {
	mu     sync.Mutex
	ctxs   []context.Context
	result probe.Result
	err    error
}

func (f *fakeInspector) Inspect(ctx context.Context, path string) (probe.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ctxs = append(f.ctxs, ctx)
	res := f.result
	res.Path = path
	return res, f.err
}

type memoryStore struct {
	values map[string]any
	saves  int
}

func (s *memoryStore) Load(key string, dst any) bool {
	v, ok := s.values[key]
	if !ok {
		return false
	}
	prefs, ok := v.(encoder.Preferences)
	if !ok {
		return false
	}
	*dst.(*encoder.Preferences) = prefs
	return true
}

func (s *memoryStore) Save(key string, value any) {
	if s.values == nil {
		s.values = map[string]any{}
	}
	s.values[key] = value
	s.saves++
}

type testOptions struct {
	clip  clipboard.Writer
	store *memoryStore
	err   error
}

func videoResult() probe.Result {
	return probe.Result{
		SizeBytes: 6_250_000,
		HasVideo:  true,
		Stats: probe.MediaStats{
			DurationSeconds:    10,
			DisplayWidth:       1920,
			DisplayHeight:      1080,
			AverageBitrate:     5_000_000,
			AveragePacketRate:  30,
			EstimatedFrameRate: 30,
		},
	}
}

func newTestModel(t *testing.T, opts testOptions) Model {
	t.Helper()
	clip := opts.clip
	if clip == nil {
		clip = clipboard.WriterFunc(func(string) error { return nil })
	}
	o := Options{
		Inspector: &fakeInspector{result: videoResult(), err: opts.err},
		Clipboard: clip,
		Defaults:  encoder.DefaultConstraints(),
	}
	if opts.store != nil {
		o.Preferences = opts.store
	}
	return NewModel(o)
}

func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func sendCmd(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

// collect runs cmd and any batched commands, returning their messages.
// Only use it for commands that do not sleep.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func probeResultOf(t *testing.T, msgs []tea.Msg) probeResultMsg {
	t.Helper()
	for _, msg := range msgs {
		if res, ok := msg.(probeResultMsg); ok {
			return res
		}
	}
	t.Fatal("no probe result produced")
	return probeResultMsg{}
}

func loadAndProbe(t *testing.T, m Model, path string) Model {
	t.Helper()
	m, cmd := sendCmd(t, m, loadFileMsg{path: path})
	return send(t, m, probeResultOf(t, collect(cmd)))
}

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+y":
		return tea.KeyMsg{Type: tea.KeyCtrlY}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	for _, r := range text {
		m = send(t, m, key(string(r)))
	}
	return m
}

func TestNewModelRendersEmptyScript(t *testing.T) {
	m := newTestModel(t, testOptions{})
	if m.Script().HasPasses() {
		t.Fatal("no passes expected without a source")
	}
	if m.inputs[fieldMaxSize].Value() != "4" {
		t.Fatalf("max size input = %q", m.inputs[fieldMaxSize].Value())
	}
}

func TestNewModelAppliesPreferences(t *testing.T) {
	store := &memoryStore{values: map[string]any{
		encoder.PreferencesKey: encoder.Preferences{FishShell: true, RandomizeFilename: true},
	}}
	m := newTestModel(t, testOptions{store: store})
	c := m.Constraints()
	if c.MaxSizeMB != nil || c.Dialect != encoder.DialectFish || !c.RandomizeName || c.DisableAudio {
		t.Fatalf("preferences not applied: %+v", c)
	}
	if m.inputs[fieldMaxSize].Value() != "" {
		t.Fatalf("null size should leave the input empty, got %q", m.inputs[fieldMaxSize].Value())
	}
}

func TestLoadFileProbesAndRecomputes(t *testing.T) {
	m := loadAndProbe(t, newTestModel(t, testOptions{}), "/videos/clip.mp4")

	if m.probing {
		t.Fatal("probe should be finished")
	}
	plan := m.Plan()
	if plan.TargetBitrate == nil || *plan.TargetBitrate != 3_187_671 {
		t.Fatalf("bitrate = %v", plan.TargetBitrate)
	}
	if !strings.HasPrefix(plan.OutputFilename, "clip.") {
		t.Fatalf("filename = %q", plan.OutputFilename)
	}
	if m.inputs[fieldWidth].Placeholder != "1920" || m.inputs[fieldFPS].Placeholder != "30" {
		t.Fatalf("placeholders = %q %q", m.inputs[fieldWidth].Placeholder, m.inputs[fieldFPS].Placeholder)
	}
	if !strings.Contains(m.Script().SecondPass, `-i "/videos/clip.mp4"`) {
		t.Fatalf("script = %s", m.Script().SecondPass)
	}
}

func TestStaleProbeIsDropped(t *testing.T) {
	inspector := &fakeInspector{result: videoResult()}
	m := NewModel(Options{Inspector: inspector, Defaults: encoder.DefaultConstraints(),
		Clipboard: clipboard.WriterFunc(func(string) error { return nil })})

	m, first := sendCmd(t, m, loadFileMsg{path: "/videos/a.mp4"})
	stale := probeResultOf(t, collect(first))
	m, second := sendCmd(t, m, loadFileMsg{path: "/videos/b.mp4"})
	fresh := probeResultOf(t, collect(second))

	if inspector.ctxs[0].Err() == nil {
		t.Fatal("first probe should be cancelled when a new file is selected")
	}

	m = send(t, m, stale)
	if m.stats != nil || !m.probing {
		t.Fatal("stale result must not be applied")
	}
	m = send(t, m, fresh)
	if m.stats == nil || m.result.Path != "/videos/b.mp4" {
		t.Fatalf("fresh result not applied: %+v", m.result)
	}
}

func TestProbeFailureKeepsManualInput(t *testing.T) {
	m := loadAndProbe(t, newTestModel(t, testOptions{err: &probe.Error{Code: probe.ErrCodeFFprobe}}), "/videos/broken.mp4")
	if m.probeErr == "" || m.stats != nil {
		t.Fatalf("expected error line and no stats, got %q", m.probeErr)
	}
	if !m.Script().HasPasses() {
		t.Fatal("script should still render for the source")
	}
	if m.Plan().TargetBitrate != nil {
		t.Fatal("bitrate needs a known duration")
	}
	if strings.Contains(m.View(), "Resolution") {
		t.Fatal("stats panel should be hidden")
	}
}

func TestTypingRecomputes(t *testing.T) {
	m := loadAndProbe(t, newTestModel(t, testOptions{}), "/videos/clip.mp4")
	m.setFocus(fieldFPS)
	m = typeText(t, m, "24")
	if !strings.Contains(m.Script().SecondPass, "-r 24") {
		t.Fatalf("frame rate not applied: %s", m.Script().SecondPass)
	}

	m.setFocus(fieldWidth)
	m = typeText(t, m, "960")
	if m.inputs[fieldHeight].Value() != "540" {
		t.Fatalf("height = %q", m.inputs[fieldHeight].Value())
	}
	if !strings.Contains(m.Script().SecondPass, "scale=-2:540") {
		t.Fatalf("scale missing: %s", m.Script().SecondPass)
	}
}

func TestTrimEditsKeepOrder(t *testing.T) {
	m := loadAndProbe(t, newTestModel(t, testOptions{}), "/videos/clip.mp4")
	m.setFocus(fieldStart)
	m = typeText(t, m, "6")
	m.setFocus(fieldEnd)
	m = typeText(t, m, "4")

	c := m.Constraints()
	if *c.TrimStart != 4 || *c.TrimEnd != 4 {
		t.Fatalf("trim = %v..%v", *c.TrimStart, *c.TrimEnd)
	}
	if m.inputs[fieldStart].Value() != "4" {
		t.Fatalf("start input not synced: %q", m.inputs[fieldStart].Value())
	}

	m = typeText(t, m, "5")
	if *m.Constraints().TrimEnd != 10 {
		t.Fatalf("end should clamp to the duration, got %v", *m.Constraints().TrimEnd)
	}
	if m.inputs[fieldEnd].Value() != "45" {
		t.Fatalf("focused input keeps typed text, got %q", m.inputs[fieldEnd].Value())
	}
	m = send(t, m, key("tab"))
	if m.inputs[fieldEnd].Value() != "10" {
		t.Fatalf("input should normalize after leaving it, got %q", m.inputs[fieldEnd].Value())
	}
}

func TestTogglesSavePreferences(t *testing.T) {
	store := &memoryStore{}
	m := newTestModel(t, testOptions{store: store})
	m.setFocus(toggleFish)
	m = send(t, m, key("space"))

	saved, ok := store.values[encoder.PreferencesKey].(encoder.Preferences)
	if !ok || !saved.FishShell {
		t.Fatalf("fish preference not saved: %+v", store.values)
	}
	if m.Script().Setup != `set temp "$(mktemp)"` {
		t.Fatalf("setup = %q", m.Script().Setup)
	}

	m.setFocus(toggleAudio)
	m = send(t, m, key("enter"))
	saved = store.values[encoder.PreferencesKey].(encoder.Preferences)
	if saved.DisableAudio {
		t.Fatal("audio toggle not saved")
	}
}

func TestOutputNameStableAcrossEdits(t *testing.T) {
	m := loadAndProbe(t, newTestModel(t, testOptions{}), "/videos/clip.mp4")
	name := m.Plan().OutputFilename
	m.setFocus(fieldFPS)
	m = typeText(t, m, "60")
	if m.Plan().OutputFilename != name {
		t.Fatalf("filename changed on edit: %q -> %q", name, m.Plan().OutputFilename)
	}
	m.setFocus(toggleRandomize)
	m = send(t, m, key("space"))
	if m.Plan().OutputFilename == name || !strings.HasSuffix(m.Plan().OutputFilename, ".webm") {
		t.Fatalf("randomize should rename, got %q", m.Plan().OutputFilename)
	}
}

func TestCopy(t *testing.T) {
	var copied []string
	clip := clipboard.WriterFunc(func(text string) error {
		copied = append(copied, text)
		return nil
	})
	m := loadAndProbe(t, newTestModel(t, testOptions{clip: clip}), "/videos/clip.mp4")

	m, cmd := sendCmd(t, m, key("ctrl+y"))
	if cmd == nil || m.status != "Copied" {
		t.Fatalf("status = %q", m.status)
	}
	if len(copied) != 1 || copied[0] != m.Script().Text() {
		t.Fatalf("copied %q", copied)
	}

	m = send(t, m, clearStatusMsg{token: m.statusToken - 1})
	if m.status == "" {
		t.Fatal("stale clear must not hide a newer status")
	}
	m = send(t, m, clearStatusMsg{token: m.statusToken})
	if m.status != "" {
		t.Fatal("status should clear")
	}

	m = send(t, m, key("ctrl+s"))
	if len(copied) != 2 || !strings.Contains(copied[1], "-to 1.000") {
		t.Fatalf("sample copy = %q", copied)
	}
}

func TestCopyFailureLeavesStatus(t *testing.T) {
	clip := clipboard.WriterFunc(func(string) error { return errors.New("denied") })
	m := loadAndProbe(t, newTestModel(t, testOptions{clip: clip}), "/videos/clip.mp4")
	m, cmd := sendCmd(t, m, key("ctrl+y"))
	if cmd != nil || m.status != "" {
		t.Fatalf("failed copy changed status to %q", m.status)
	}
}

func TestCopySampleWithoutSourceIsNoop(t *testing.T) {
	called := false
	clip := clipboard.WriterFunc(func(string) error { called = true; return nil })
	m := newTestModel(t, testOptions{clip: clip})
	m = send(t, m, key("ctrl+s"))
	if called || m.status != "" {
		t.Fatal("sample copy needs a source")
	}
}

func TestPasteLoadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dropped clip.mp4")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	m := newTestModel(t, testOptions{})
	m.setFocus(fieldMaxSize)

	m, cmd := sendCmd(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("'" + path + "'"), Paste: true})
	if m.Constraints().Source != path || !m.probing || m.focus != fieldFile {
		t.Fatalf("paste did not load file: source=%q probing=%v", m.Constraints().Source, m.probing)
	}
	if res := probeResultOf(t, collect(cmd)); res.path != path {
		t.Fatalf("probed %q", res.path)
	}
}

func TestPasteOfTextGoesToInput(t *testing.T) {
	m := newTestModel(t, testOptions{})
	m.setFocus(fieldFPS)
	m = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("25"), Paste: true})
	if m.Constraints().Source != "" {
		t.Fatal("non-file paste must not load")
	}
	if fps := m.Constraints().FrameRate; fps == nil || *fps != 25 {
		t.Fatalf("frame rate = %v", fps)
	}
}

func TestHelpOverlay(t *testing.T) {
	m := newTestModel(t, testOptions{})

	m = send(t, m, key("?"))
	if m.showHelp {
		t.Fatal("? on the file field should be typed")
	}
	if m.inputs[fieldFile].Value() != "?" {
		t.Fatalf("file input = %q", m.inputs[fieldFile].Value())
	}

	m.setFocus(fieldMaxSize)
	m = send(t, m, key("?"))
	if !m.showHelp {
		t.Fatal("help should open")
	}
	m, cmd := sendCmd(t, m, key("esc"))
	if m.showHelp || cmd != nil {
		t.Fatal("esc should close help without quitting")
	}
}

func TestQuitCancelsProbe(t *testing.T) {
	inspector := &fakeInspector{result: videoResult()}
	m := NewModel(Options{Inspector: inspector, Defaults: encoder.DefaultConstraints(),
		Clipboard: clipboard.WriterFunc(func(string) error { return nil })})
	m, load := sendCmd(t, m, loadFileMsg{path: "/videos/a.mp4"})
	collect(load)

	_, cmd := sendCmd(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.QuitMsg")
	}
	if inspector.ctxs[0].Err() == nil {
		t.Fatal("quit should cancel the running probe")
	}
}
