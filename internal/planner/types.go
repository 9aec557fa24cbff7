package planner

import (
	"fmt"
	"strings"

	"github.com/backmassage/muxwatch/internal/probe"
)

// Selection is the set of input streams chosen for one file. Video is
// always present; Audio and Subtitle are nil when the input has none.
// It is computed once and not modified afterwards.
type Selection struct {
	Video    probe.Stream
	Audio    *probe.Stream
	Subtitle *probe.Stream

	// SubtitleOrdinal is Subtitle's position among all subtitle streams,
	// which is how the subtitles filter addresses it. -1 when Subtitle is nil.
	SubtitleOrdinal int
}

// String renders the selection for logs.
func (s Selection) String() string {
	parts := []string{"video " + s.Video.String()}
	if s.Audio != nil {
		parts = append(parts, "audio "+s.Audio.String())
	} else {
		parts = append(parts, "no audio")
	}
	if s.Subtitle != nil {
		parts = append(parts, fmt.Sprintf("subtitle %s", s.Subtitle.String()))
	}
	return strings.Join(parts, ", ")
}
