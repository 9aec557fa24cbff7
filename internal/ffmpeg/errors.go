package ffmpeg

import "regexp"

// Pre-compiled patterns for explaining why ffmpeg failed. Checked in order
// by [Classify]; the first match wins.
var failureReasons = []struct {
	re     *regexp.Regexp
	reason string
}{
	{regexp.MustCompile(`(?i)No such file or directory`), "input or output path missing"},
	{regexp.MustCompile(`(?i)Permission denied`), "permission denied"},
	{regexp.MustCompile(`(?i)No space left on device`), "disk full"},
	{regexp.MustCompile(`(?i)Unknown encoder|Encoder .* not found`), "unknown encoder in profile parameters"},
	{regexp.MustCompile(`(?i)Unrecognized option|Option .* not found`), "invalid profile parameter"},
	{regexp.MustCompile(
		`(?i)Subtitle codec .* is not supported|` +
			`Could not find tag for codec .* in stream .*subtitle|` +
			`Subtitle encoding currently only possible from text to text or bitmap to bitmap`),
		"subtitle not supported by mp4 (try subtitles: burnin or none)"},
	{regexp.MustCompile(`(?i)Unable to (open|parse) .*subtitles|Error initializing filter 'subtitles'`), "subtitle burn-in failed"},
	{regexp.MustCompile(`(?i)Invalid data found when processing input|moov atom not found`), "input is corrupt or incomplete"},
	{regexp.MustCompile(`(?i)Stream map .* matches no streams`), "stream map matches no streams"},
}

// Classify scans ffmpeg's stderr lines and returns a short human-readable
// reason for the failure, or "" when nothing recognizable was printed.
func Classify(lines []string) string {
	for _, fr := range failureReasons {
		for _, l := range lines {
			if fr.re.MatchString(l) {
				return fr.reason
			}
		}
	}
	return ""
}
