package ffmpeg

import (
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/backmassage/muxwatch/internal/config"
	"github.com/backmassage/muxwatch/internal/planner"
	"github.com/backmassage/muxwatch/internal/probe"
)

func testProfile(mode config.SubtitleMode) *config.Profile {
	return &config.Profile{
		Name:                 "test",
		Encoder:              config.EncoderFFmpeg,
		VideoParameters:      "-c:v libx264  -preset slow -crf 20",
		AudioParameters:      "-c:a aac -b:a 192k",
		Subtitles:            mode,
		ExecutableParameters: "-movflags +faststart",
	}
}

func testSelection(withAudio, withSub bool, ordinal int) planner.Selection {
	sel := planner.Selection{
		Video:           probe.Stream{Index: 0, Type: probe.TypeVideo},
		SubtitleOrdinal: -1,
	}
	if withAudio {
		sel.Audio = &probe.Stream{Index: 2, Type: probe.TypeAudio, Language: "jpn"}
	}
	if withSub {
		sel.Subtitle = &probe.Stream{Index: 4, Type: probe.TypeSubtitle, Language: "eng"}
		sel.SubtitleOrdinal = ordinal
	}
	return sel
}

func TestBuild(t *testing.T) {
	const in, out = "/media/in/movie.mkv", "/media/out/movie.mp4.tmp"
	codecs := []string{"-c:v", "libx264", "-preset", "slow", "-crf", "20", "-c:a", "aac", "-b:a", "192k"}
	tail := []string{"-movflags", "+faststart", "-f", "mp4", out}

	join := func(parts ...[]string) []string {
		var all []string
		for _, p := range parts {
			all = append(all, p...)
		}
		return all
	}

	tests := []struct {
		name string
		mode config.SubtitleMode
		sel  planner.Selection
		want []string
	}{
		{
			name: "embed",
			mode: config.SubtitleEmbed,
			sel:  testSelection(true, true, 0),
			want: join(
				[]string{"-i", in, "-map", "0:0", "-map", "0:2", "-disposition:1", "default",
					"-map", "0:4", "-disposition:2", "default"},
				codecs, tail),
		},
		{
			name: "burn-in first subtitle",
			mode: config.SubtitleBurnIn,
			sel:  testSelection(true, true, 0),
			want: join(
				[]string{"-i", in, "-map", "0:0", "-map", "0:2", "-disposition:1", "default"},
				codecs,
				[]string{"-vf", "subtitles='/media/in/movie.mkv'"},
				tail),
		},
		{
			name: "burn-in later subtitle",
			mode: config.SubtitleBurnIn,
			sel:  testSelection(true, true, 2),
			want: join(
				[]string{"-i", in, "-map", "0:0", "-map", "0:2", "-disposition:1", "default"},
				codecs,
				[]string{"-vf", "subtitles='/media/in/movie.mkv':si=2"},
				tail),
		},
		{
			name: "burn-in without subtitle stream",
			mode: config.SubtitleBurnIn,
			sel:  testSelection(true, false, 0),
			want: join(
				[]string{"-i", in, "-map", "0:0", "-map", "0:2", "-disposition:1", "default"},
				codecs, tail),
		},
		{
			name: "no audio",
			mode: config.SubtitleNone,
			sel:  testSelection(false, false, 0),
			want: join([]string{"-i", in, "-map", "0:0"}, codecs, tail),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Build(testProfile(tt.mode), tt.sel, in, out)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Build()\n got  %q\n want %q", got, tt.want)
			}
		})
	}
}

func TestBuild_EmptyParameters(t *testing.T) {
	p := &config.Profile{Encoder: config.EncoderFFmpeg, Subtitles: config.SubtitleNone}
	got := Build(p, testSelection(true, false, 0), "a.avi", "a.mp4")
	want := []string{"-i", "a.avi", "-map", "0:0", "-map", "0:2", "-disposition:1", "default", "-f", "mp4", "a.mp4"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Build() = %q, want %q", got, want)
	}
}

func TestBuild_InputNotEscaped(t *testing.T) {
	in := `/media/in/It's: a \test.mkv`
	args := Build(testProfile(config.SubtitleBurnIn), testSelection(true, true, 0), in, "out.mp4")
	if args[1] != in {
		t.Errorf("-i argument = %q, want raw %q", args[1], in)
	}
	want := `subtitles='/media/in/It\'s\: a \\test.mkv'`
	found := false
	for i, a := range args {
		if a == "-vf" && i+1 < len(args) {
			found = args[i+1] == want
		}
	}
	if !found {
		t.Errorf("filter argument missing or wrong in %q, want %q", args, want)
	}
}

func TestBuild_Idempotent(t *testing.T) {
	p := testProfile(config.SubtitleBurnIn)
	sel := testSelection(true, true, 1)
	a := Build(p, sel, "/in/x.mkv", "/out/x.mp4.tmp")
	b := Build(p, sel, "/in/x.mkv", "/out/x.mp4.tmp")
	if !reflect.DeepEqual(a, b) {
		t.Errorf("Build not deterministic:\n%q\n%q", a, b)
	}
	// The returned slice must not alias profile state.
	a[0] = "mutated"
	if c := Build(p, sel, "/in/x.mkv", "/out/x.mp4.tmp"); c[0] != "-i" {
		t.Errorf("Build shares state between calls")
	}
}

func TestEscapeFilterValue(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain.mkv", "plain.mkv"},
		{`C:\Videos\a.mkv`, `C\:\\Videos\\a.mkv`},
		{"it's", `it\'s`},
		{`a\:b'c`, `a\\\:b\'c`},
		{"", ""},
	}
	for _, tt := range tests {
		if got := EscapeFilterValue(tt.in); got != tt.want {
			t.Errorf("EscapeFilterValue(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// unescape reverses EscapeFilterValue: a backslash makes the next byte literal.
func unescape(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func TestEscapeFilterValue_RoundTrip(t *testing.T) {
	paths := []string{
		`/media/Movie: The Sequel.mkv`,
		`/media/Director's Cut.mkv`,
		`C:\media\show\ep1.mkv`,
		`\\server\share\a:b'c\\d.mkv`,
		`'''`,
		`:::`,
		`\`,
		`trailing\`,
		`/media/日本語/ファイル:1.mkv`,
	}
	for _, p := range paths {
		if got := unescape(EscapeFilterValue(p)); got != p {
			t.Errorf("round trip %q -> %q -> %q", p, EscapeFilterValue(p), got)
		}
	}
}

func TestExecutable(t *testing.T) {
	if got := Executable(&config.Profile{}); got != "ffmpeg" {
		t.Errorf("Executable() = %q, want ffmpeg", got)
	}
	p := &config.Profile{ExecutableDir: "/opt/ffmpeg/bin"}
	if got := Executable(p); got != filepath.Join("/opt/ffmpeg/bin", "ffmpeg") {
		t.Errorf("Executable() = %q", got)
	}
	if got := ProbeExecutable(p); got != filepath.Join("/opt/ffmpeg/bin", "ffprobe") {
		t.Errorf("ProbeExecutable() = %q", got)
	}
	if got := ProbeExecutable(nil); got != "ffprobe" {
		t.Errorf("ProbeExecutable(nil) = %q", got)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  string
	}{
		{"nothing", []string{"frame= 100 fps= 25"}, ""},
		{"unknown encoder", []string{"Unknown encoder 'libx266'"}, "unknown encoder in profile parameters"},
		{"corrupt", []string{"x", "movie.mkv: Invalid data found when processing input"}, "input is corrupt or incomplete"},
		{"disk", []string{"av_interleaved_write_frame(): No space left on device"}, "disk full"},
		{"mp4 subs", []string{"Could not find tag for codec hdmv_pgs_subtitle in stream #2, codec not currently supported in container (subtitle)"},
			"subtitle not supported by mp4 (try subtitles: burnin or none)"},
		{"empty", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.lines); got != tt.want {
				t.Errorf("Classify() = %q, want %q", got, tt.want)
			}
		})
	}
}
