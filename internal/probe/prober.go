package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// DefaultTimeout bounds a single ffprobe call.
const DefaultTimeout = 60 * time.Second

// waitDelay bounds how long Output waits for stdout to close once ffprobe
// has been killed. A wrapper script can leave a descendant holding the pipe.
const waitDelay = 2 * time.Second

var (
	// ErrNoStreams is returned when ffprobe reports no streams at all.
	ErrNoStreams = errors.New("ffprobe reported no streams")
	// ErrTimeout is returned when ffprobe did not finish within the timeout.
	ErrTimeout = errors.New("ffprobe timed out")
)

// Prober runs ffprobe. The zero value uses "ffprobe" from PATH and
// [DefaultTimeout].
type Prober struct {
	Executable string
	Timeout    time.Duration
}

// Probe runs a single ffprobe JSON call against path and returns the
// parsed inventory. Canceling ctx stops ffprobe.
func (p Prober) Probe(ctx context.Context, path string) (*Inventory, error) {
	exe := p.Executable
	if exe == "" {
		exe = "ffprobe"
	}
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, exe,
		"-i", path,
		"-show_streams", "-show_format",
		"-loglevel", "quiet",
		"-print_format", "json",
	)
	cmd.WaitDelay = waitDelay

	out, err := cmd.Output()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, fmt.Errorf("ffprobe %q: %w after %s", path, ErrTimeout, timeout)
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return nil, fmt.Errorf("ffprobe %q: %w: %s", path, err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("ffprobe %q: %w", path, err)
	}

	inv, err := ParseJSON(out)
	if err != nil {
		return nil, fmt.Errorf("ffprobe %q: %w", path, err)
	}
	return inv, nil
}

// ParseJSON converts raw ffprobe JSON output into an Inventory.
// Exported for testing without a real ffprobe binary.
func ParseJSON(data []byte) (*Inventory, error) {
	var raw ffprobeOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse ffprobe JSON: %w", err)
	}
	if len(raw.Streams) == 0 {
		return nil, ErrNoStreams
	}
	return buildInventory(&raw), nil
}

// --- ffprobe JSON wire types ---

type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	Filename   string `json:"filename"`
	FormatName string `json:"format_name"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
	BitRate    string `json:"bit_rate"`
}

type ffprobeStream struct {
	Index       int               `json:"index"`
	CodecName   string            `json:"codec_name"`
	CodecType   string            `json:"codec_type"`
	Width       int               `json:"width"`
	Height      int               `json:"height"`
	Channels    int               `json:"channels"`
	Disposition map[string]int    `json:"disposition"`
	Tags        map[string]string `json:"tags"`
}

// --- Conversion from wire types to domain types ---

var bitmapSubCodecs = map[string]bool{
	"hdmv_pgs_subtitle": true,
	"dvd_subtitle":      true,
	"dvb_subtitle":      true,
	"xsub":              true,
}

func buildInventory(raw *ffprobeOutput) *Inventory {
	inv := &Inventory{Format: convertFormat(&raw.Format)}

	for i := range raw.Streams {
		s := convertStream(&raw.Streams[i])
		switch s.Type {
		case TypeVideo:
			if !s.IsAttachedPic {
				inv.Video = append(inv.Video, s)
			}
		case TypeAudio:
			inv.Audio = append(inv.Audio, s)
		case TypeSubtitle:
			inv.Subtitle = append(inv.Subtitle, s)
		}
	}
	return inv
}

func convertStream(s *ffprobeStream) Stream {
	return Stream{
		Index:         s.Index,
		Type:          StreamType(s.CodecType),
		Codec:         s.CodecName,
		Language:      s.Tags["language"],
		IsDefault:     s.Disposition["default"] == 1,
		Title:         s.Tags["title"],
		IsAttachedPic: s.Disposition["attached_pic"] == 1,
		IsBitmap:      bitmapSubCodecs[s.CodecName],
		Width:         s.Width,
		Height:        s.Height,
		Channels:      s.Channels,
	}
}

func convertFormat(f *ffprobeFormat) FormatInfo {
	return FormatInfo{
		Filename:   f.Filename,
		FormatName: f.FormatName,
		Duration:   parseFloat(f.Duration),
		Size:       parseInt64(f.Size),
		BitRate:    parseInt64(f.BitRate),
	}
}

// --- Numeric parsing helpers (ffprobe returns numbers as strings) ---

func parseInt64(s string) int64 {
	n, _ := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return n
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}
