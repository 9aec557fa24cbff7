package planner

import (
	"strings"

	"github.com/backmassage/muxwatch/internal/probe"
)

// DefaultOrFirst returns the first stream flagged default, else the first
// stream, else nil. When several streams carry the default flag the
// earliest one in inventory order wins.
func DefaultOrFirst(streams []probe.Stream) *probe.Stream {
	if len(streams) == 0 {
		return nil
	}
	for i := range streams {
		if streams[i].IsDefault {
			return &streams[i]
		}
	}
	return &streams[0]
}

// SelectVideo picks the default-flagged video stream, falling back to the
// first one. Nil when the inventory has no video.
func SelectVideo(inv *probe.Inventory) *probe.Stream {
	return DefaultOrFirst(inv.Video)
}

// SelectAudio applies the language policy to the audio streams.
func SelectAudio(inv *probe.Inventory, prefs []string) *probe.Stream {
	return selectByLanguage(inv.Audio, prefs)
}

// SelectSubtitle applies the language policy to the subtitle streams.
func SelectSubtitle(inv *probe.Inventory, prefs []string) *probe.Stream {
	return selectByLanguage(inv.Subtitle, prefs)
}

// selectByLanguage walks prefs in order. The first language with at least
// one matching stream decides: default-or-first among those matches. With
// no prefs, or no match for any of them, it is default-or-first over all
// streams. An empty prefs list behaves exactly like no prefs.
func selectByLanguage(streams []probe.Stream, prefs []string) *probe.Stream {
	for _, lang := range prefs {
		var matches []int
		for i := range streams {
			if strings.EqualFold(streams[i].Language, lang) {
				matches = append(matches, i)
			}
		}
		if len(matches) == 0 {
			continue
		}
		// Return a pointer into streams rather than into a filtered copy.
		for _, i := range matches {
			if streams[i].IsDefault {
				return &streams[i]
			}
		}
		return &streams[matches[0]]
	}
	return DefaultOrFirst(streams)
}
