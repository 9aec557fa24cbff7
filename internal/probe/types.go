package probe

import (
	"fmt"
	"strings"
)

// StreamType is ffprobe's codec_type for the stream kinds we select from.
type StreamType string

const (
	TypeVideo    StreamType = "video"
	TypeAudio    StreamType = "audio"
	TypeSubtitle StreamType = "subtitle"
)

// Stream describes one track of the input container.
type Stream struct {
	Index     int // Absolute stream index, used in "-map 0:<Index>".
	Type      StreamType
	Codec     string
	Language  string // Empty when the stream carries no language tag.
	IsDefault bool

	// Informational; shown by String but not used for selection.
	Title         string
	IsAttachedPic bool
	IsBitmap      bool
	Width         int
	Height        int
	Channels      int
}

// String renders the stream for logs, e.g.
// `#2 audio aac 2ch [jpn] "Commentary" (default)`.
func (s Stream) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "#%d %s %s", s.Index, s.Type, s.Codec)
	switch {
	case s.Width > 0 && s.Height > 0:
		fmt.Fprintf(&b, " %dx%d", s.Width, s.Height)
	case s.Channels > 0:
		fmt.Fprintf(&b, " %dch", s.Channels)
	}
	if s.Language != "" {
		fmt.Fprintf(&b, " [%s]", s.Language)
	}
	if s.Title != "" {
		fmt.Fprintf(&b, " %q", s.Title)
	}
	if s.IsBitmap {
		b.WriteString(" (bitmap)")
	}
	if s.IsDefault {
		b.WriteString(" (default)")
	}
	return b.String()
}

// FormatInfo holds container-level metadata from ffprobe's format section.
type FormatInfo struct {
	Filename   string
	FormatName string
	Duration   float64
	Size       int64
	BitRate    int64
}

// Inventory is the parsed result of probing one file. Each list keeps
// ffprobe's stream order. Attached pictures (cover art) are not listed as
// video.
type Inventory struct {
	Format   FormatInfo
	Video    []Stream
	Audio    []Stream
	Subtitle []Stream
}

// SubtitleOrdinal returns the position of the stream with absolute index
// idx among subtitle streams, or -1.
func (inv *Inventory) SubtitleOrdinal(idx int) int {
	for i, s := range inv.Subtitle {
		if s.Index == idx {
			return i
		}
	}
	return -1
}

// Summary returns a short count line such as "1 video, 2 audio, 0 subtitle".
func (inv *Inventory) Summary() string {
	return fmt.Sprintf("%d video, %d audio, %d subtitle",
		len(inv.Video), len(inv.Audio), len(inv.Subtitle))
}
