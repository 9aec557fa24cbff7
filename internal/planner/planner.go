package planner

import (
	"errors"

	"github.com/backmassage/muxwatch/internal/config"
	"github.com/backmassage/muxwatch/internal/probe"
)

// ErrNoVideo is returned when the input has no video stream to convert.
var ErrNoVideo = errors.New("no video stream")

// Select chooses the video, audio and subtitle streams for inv under the
// profile's language preferences. A missing video stream is the only
// failure; audio and subtitles are optional.
func Select(p *config.Profile, inv *probe.Inventory) (Selection, error) {
	v := SelectVideo(inv)
	if v == nil {
		return Selection{}, ErrNoVideo
	}

	sel := Selection{
		Video:           *v,
		Audio:           SelectAudio(inv, p.AudioLanguages),
		SubtitleOrdinal: -1,
	}
	if p.Subtitles != config.SubtitleNone {
		sel.Subtitle = SelectSubtitle(inv, p.SubtitleLanguages)
	}
	if sel.Subtitle != nil {
		sel.SubtitleOrdinal = inv.SubtitleOrdinal(sel.Subtitle.Index)
	}
	return sel, nil
}
