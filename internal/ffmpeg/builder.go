package ffmpeg

import (
	"strconv"
	"strings"

	"github.com/backmassage/muxwatch/internal/config"
	"github.com/backmassage/muxwatch/internal/planner"
)

// OutputFormat is the container every conversion produces.
const OutputFormat = "mp4"

// Build constructs the ffmpeg argument slice (without the executable name)
// that converts inputPath into outputPath using the selected streams:
//
//	-i <input> <maps/dispositions> <video params> <audio params>
//	[-vf subtitles=...] <extra params> -f mp4 <output>
//
// Parameter strings from the profile are split on whitespace and passed
// through verbatim. Build does no I/O and always returns the same slice for
// the same inputs.
func Build(p *config.Profile, sel planner.Selection, inputPath, outputPath string) []string {
	args := make([]string, 0, 32)

	// --- Input ---
	args = append(args, "-i", inputPath)

	// --- Stream maps ---
	args = append(args, planner.Maps(sel, p.Subtitles)...)

	// --- Codecs ---
	args = append(args, strings.Fields(p.VideoParameters)...)
	args = append(args, strings.Fields(p.AudioParameters)...)

	// --- Burn-in subtitles ---
	if p.Subtitles == config.SubtitleBurnIn && sel.Subtitle != nil {
		args = append(args, "-vf", SubtitlesFilter(inputPath, sel.SubtitleOrdinal))
	}

	// --- Extra parameters ---
	args = append(args, strings.Fields(p.ExecutableParameters)...)

	// --- Output ---
	args = append(args, "-f", OutputFormat, outputPath)
	return args
}

// SubtitlesFilter returns the subtitles filter rendering the si-th subtitle
// stream of path. si <= 0 selects the first one and is left implicit.
func SubtitlesFilter(path string, si int) string {
	f := "subtitles='" + EscapeFilterValue(path) + "'"
	if si > 0 {
		f += ":si=" + strconv.Itoa(si)
	}
	return f
}

var filterEscaper = strings.NewReplacer(`\`, `\\`, `:`, `\:`, `'`, `\'`)

// EscapeFilterValue escapes backslash, colon and single quote with a
// leading backslash so a path survives inside a filter graph option.
// Only filter-embedded paths are escaped; the -i argument is passed raw.
func EscapeFilterValue(v string) string {
	return filterEscaper.Replace(v)
}
