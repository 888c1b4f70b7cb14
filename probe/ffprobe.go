package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"webmgen/logging"
)

// Runner executes an external binary and returns its stdout and stderr.
type Runner interface {
	Run(ctx context.Context, binary string, args ...string) ([]byte, []byte, error)
}

// ExecRunner runs binaries with os/exec.
type ExecRunner struct{}

// Run implements Runner.
func (ExecRunner) Run(ctx context.Context, binary string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// Options configures a Prober.
type Options struct {
	Binary       string
	PacketWindow int
	Runner       Runner
	Logger       *logging.Logger
	Observer     Observer
}

// Outcome labels reported to an Observer.
const (
	OutcomeOK        = "ok"
	OutcomeNoVideo   = "no_video"
	OutcomeFailed    = "failed"
	OutcomeCancelled = "cancelled"
)

// Observer is notified once per Inspect call.
type Observer interface {
	ObserveProbe(outcome string, durationSeconds float64)
}

// Prober inspects media files with ffprobe.
type Prober struct {
	binary       string
	packetWindow int
	runner       Runner
	log          *logging.Logger
	observer     Observer
}

// New creates a Prober. An empty binary is resolved from PATH; if that fails the
// bare name is kept and inspection reports an ffprobe failure.
func New(opts Options) *Prober {
	binary := strings.TrimSpace(opts.Binary)
	if binary == "" {
		binary = "ffprobe"
		if resolved, err := exec.LookPath("ffprobe"); err == nil {
			binary = resolved
		}
	}
	window := opts.PacketWindow
	if window <= 0 {
		window = DefaultPacketWindow
	}
	runner := opts.Runner
	if runner == nil {
		runner = ExecRunner{}
	}
	log := opts.Logger
	if log == nil {
		log = logging.Nop()
	}
	return &Prober{
		binary:       binary,
		packetWindow: window,
		runner:       runner,
		log:          log,
		observer:     opts.Observer,
	}
}

type probeOutput struct {
	Streams []probeStream `json:"streams"`
	Format  probeFormat   `json:"format"`
	Packets []probePacket `json:"packets"`
}

type probeStream struct {
	Index        int               `json:"index"`
	CodecName    string            `json:"codec_name"`
	CodecType    string            `json:"codec_type"`
	Width        int               `json:"width"`
	Height       int               `json:"height"`
	AvgFrameRate string            `json:"avg_frame_rate"`
	RFrameRate   string            `json:"r_frame_rate"`
	Duration     string            `json:"duration"`
	Disposition  map[string]int    `json:"disposition"`
	Tags         map[string]string `json:"tags"`
	SideData     []probeSideData   `json:"side_data_list"`
}

type probeSideData struct {
	Type     string  `json:"side_data_type"`
	Rotation float64 `json:"rotation"`
}

type probeFormat struct {
	Duration string `json:"duration"`
	Size     string `json:"size"`
}

type probePacket struct {
	PTSTime      string `json:"pts_time"`
	DTSTime      string `json:"dts_time"`
	DurationTime string `json:"duration_time"`
	Size         string `json:"size"`
}

// Inspect reads container metadata and samples packet statistics for the primary
// video track of path.
func (p *Prober) Inspect(ctx context.Context, path string) (Result, error) {
	start := time.Now()
	result, err := p.inspect(ctx, path)
	if p.observer != nil {
		p.observer.ObserveProbe(outcomeOf(result, err), time.Since(start).Seconds())
	}
	return result, err
}

func outcomeOf(result Result, err error) string {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return OutcomeCancelled
	case err != nil:
		return OutcomeFailed
	case !result.HasVideo:
		return OutcomeNoVideo
	default:
		return OutcomeOK
	}
}

func (p *Prober) inspect(ctx context.Context, path string) (Result, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Result{}, &Error{Code: ErrCodeUnreadable, Cause: errors.New("empty path")}
	}
	info, err := os.Stat(path)
	if err != nil {
		return Result{}, &Error{Code: ErrCodeUnreadable, Path: path, Cause: err}
	}
	if info.IsDir() {
		return Result{}, &Error{Code: ErrCodeUnreadable, Path: path, Cause: errors.New("is a directory")}
	}

	log := p.log.With(zap.String("path", path))

	container, err := p.run(ctx, path, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path)
	if err != nil {
		return Result{}, err
	}

	result := Result{Path: path, SizeBytes: info.Size()}
	if size := parseNumber(container.Format.Size); size > 0 {
		result.SizeBytes = int64(size)
	}

	video, ok := primaryVideoStream(container.Streams)
	if !ok {
		log.Debug("no video track")
		return result, nil
	}

	packets, err := p.run(ctx, path,
		"-v", "error", "-hide_banner",
		"-select_streams", strconv.Itoa(video.Index),
		"-read_intervals", fmt.Sprintf("%%+#%d", p.packetWindow),
		"-show_entries", "packet=pts_time,dts_time,duration_time,size",
		"-of", "json", "--", path,
	)
	if err != nil {
		return Result{}, err
	}

	sample := samplePackets(packets.Packets, p.packetWindow)
	width, height := displaySize(video)

	stats := MediaStats{
		DurationSeconds:   containerDuration(container),
		DisplayWidth:      width,
		DisplayHeight:     height,
		AverageBitrate:    sample.averageBitrate(),
		AveragePacketRate: sample.averagePacketRate(),
		VideoCodec:        video.CodecName,
		PacketsSampled:    sample.count,
	}
	rate := stats.AveragePacketRate
	if rate <= 0 {
		rate = parseFrameRate(video.AvgFrameRate)
	}
	stats.EstimatedFrameRate = ClosestFrameRate(rate)

	result.HasVideo = true
	result.Stats = stats

	log.Debug("probed",
		zap.Float64("duration", stats.DurationSeconds),
		zap.Int("width", stats.DisplayWidth),
		zap.Int("height", stats.DisplayHeight),
		zap.Float64("bitrate", stats.AverageBitrate),
		zap.Int("packets", stats.PacketsSampled),
	)
	return result, nil
}

func (p *Prober) run(ctx context.Context, path string, args ...string) (probeOutput, error) {
	stdout, stderr, err := p.runner.Run(ctx, p.binary, args...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return probeOutput{}, ctxErr
		}
		return probeOutput{}, &Error{
			Code:   ErrCodeFFprobe,
			Path:   path,
			Stderr: strings.TrimSpace(string(stderr)),
			Cause:  err,
		}
	}
	var out probeOutput
	if err := json.Unmarshal(stdout, &out); err != nil {
		return probeOutput{}, &Error{Code: ErrCodeParse, Path: path, Cause: err}
	}
	return out, nil
}

// primaryVideoStream returns the first video stream that is not cover art.
func primaryVideoStream(streams []probeStream) (probeStream, bool) {
	for _, stream := range streams {
		if !strings.EqualFold(stream.CodecType, "video") {
			continue
		}
		if stream.Disposition["attached_pic"] == 1 {
			continue
		}
		return stream, true
	}
	return probeStream{}, false
}

// displaySize applies a ±90° display rotation to the coded dimensions.
func displaySize(stream probeStream) (int, int) {
	rotation := 0.0
	for _, side := range stream.SideData {
		if side.Rotation != 0 {
			rotation = side.Rotation
			break
		}
	}
	if rotation == 0 {
		rotation = parseNumber(stream.Tags["rotate"])
	}
	if math.IsNaN(rotation) {
		rotation = 0
	}
	quarterTurns := int(math.Round(rotation/90)) % 2
	if quarterTurns != 0 {
		return stream.Height, stream.Width
	}
	return stream.Width, stream.Height
}

func containerDuration(out probeOutput) float64 {
	if d := parseNumber(out.Format.Duration); d > 0 {
		return d
	}
	longest := 0.0
	for _, stream := range out.Streams {
		if d := parseNumber(stream.Duration); d > longest {
			longest = d
		}
	}
	return longest
}

// parseNumber returns 0 for blank input and NaN for garbage.
func parseNumber(value string) float64 {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0
	}
	if parsed, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return parsed
	}
	return math.NaN()
}
