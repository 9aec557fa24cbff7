package planner

import (
	"strconv"

	"github.com/backmassage/muxwatch/internal/config"
)

// Maps returns the "-map" and "-disposition" arguments for sel. Output
// stream 0 is the video; the audio track, when present, follows and is
// marked default. An embedded subtitle is mapped last and also marked
// default. Burned-in subtitles are not mapped.
func Maps(sel Selection, mode config.SubtitleMode) []string {
	args := []string{"-map", mapSpec(sel.Video.Index)}
	out := 1

	if sel.Audio != nil {
		args = append(args,
			"-map", mapSpec(sel.Audio.Index),
			"-disposition:"+strconv.Itoa(out), "default",
		)
		out++
	}

	if mode == config.SubtitleEmbed && sel.Subtitle != nil {
		args = append(args,
			"-map", mapSpec(sel.Subtitle.Index),
			"-disposition:"+strconv.Itoa(out), "default",
		)
	}
	return args
}

func mapSpec(index int) string {
	return "0:" + strconv.Itoa(index)
}
