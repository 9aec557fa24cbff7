// Package check provides system diagnostics (--check mode) and pre-start
// dependency validation (CheckDeps) for the profile's ffmpeg and ffprobe.
package check

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/backmassage/muxwatch/internal/config"
	"github.com/backmassage/muxwatch/internal/ffmpeg"
)

// Sentinel errors returned by CheckDeps when a required tool is missing.
var (
	ErrFfmpegNotFound  = errors.New("ffmpeg not found")
	ErrFfprobeNotFound = errors.New("ffprobe not found")
)

// Logger is the minimal logging interface needed by RunCheck.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
}

// CheckDeps verifies that the ffmpeg and ffprobe executables the profile
// resolves to can be found. A bare name is looked up on PATH.
func CheckDeps(p *config.Profile) error {
	if exe := ffmpeg.Executable(p); !found(exe) {
		return fmt.Errorf("%w: %s", ErrFfmpegNotFound, exe)
	}
	if exe := ffmpeg.ProbeExecutable(p); !found(exe) {
		return fmt.Errorf("%w: %s", ErrFfprobeNotFound, exe)
	}
	return nil
}

// RunCheck runs the interactive --check flow: prints the version of both
// tools and whether ffmpeg knows every encoder the profile names. It
// reports whether everything checked out; it does not stop on failure.
func RunCheck(p *config.Profile, log Logger) bool {
	log.Info("=== System Check (profile %s) ===", p.Name)

	ok := checkVersion(log, "ffprobe", ffmpeg.ProbeExecutable(p))
	if !checkVersion(log, "ffmpeg", ffmpeg.Executable(p)) {
		return false
	}
	if !checkEncoders(log, p) {
		ok = false
	}
	if p.Subtitles == config.SubtitleBurnIn && !checkSubtitlesFilter(log, p) {
		ok = false
	}
	return ok
}

// checkVersion verifies exe runs and logs the first line of -version.
func checkVersion(log Logger, label, exe string) bool {
	if !found(exe) {
		log.Error("%s not found (%s)", label, exe)
		return false
	}
	out, err := exec.Command(exe, "-version").Output()
	if err != nil {
		log.Warn("%s found but -version failed: %v", label, err)
		return false
	}
	log.Success("%s: %s", label, firstLine(string(out)))
	return true
}

// checkEncoders confirms every encoder named in the profile's video and
// audio parameters appears in ffmpeg -encoders.
func checkEncoders(log Logger, p *config.Profile) bool {
	names := append(EncoderNames(p.VideoParameters), EncoderNames(p.AudioParameters)...)
	if len(names) == 0 {
		log.Info("Profile names no encoders (ffmpeg defaults apply)")
		return true
	}
	out, err := exec.Command(ffmpeg.Executable(p), "-hide_banner", "-encoders").Output()
	if err != nil {
		log.Warn("Could not list encoders: %v", err)
		return false
	}
	ok := true
	for _, name := range names {
		if listed(string(out), name) {
			log.Success("Encoder %s available", name)
		} else {
			log.Error("Encoder %s not available in this ffmpeg build", name)
			ok = false
		}
	}
	return ok
}

// checkSubtitlesFilter confirms the subtitles filter (libass) is built in.
func checkSubtitlesFilter(log Logger, p *config.Profile) bool {
	out, err := exec.Command(ffmpeg.Executable(p), "-hide_banner", "-filters").Output()
	if err != nil {
		log.Warn("Could not list filters: %v", err)
		return false
	}
	if !listed(string(out), "subtitles") {
		log.Error("subtitles filter missing; burn-in needs ffmpeg built with libass")
		return false
	}
	log.Success("subtitles filter available")
	return true
}

// EncoderNames returns the encoder names selected by -c/-codec/-vcodec/
// -acodec options in params, stream specifiers included. "copy" is not an
// encoder and is left out.
func EncoderNames(params string) []string {
	fields := strings.Fields(params)
	var names []string
	for i := 0; i+1 < len(fields); i++ {
		opt := fields[i]
		if j := strings.IndexByte(opt, ':'); j > 0 {
			opt = opt[:j]
		}
		switch opt {
		case "-c", "-codec", "-vcodec", "-acodec":
		default:
			continue
		}
		i++
		if name := fields[i]; name != "copy" {
			names = append(names, name)
		}
	}
	return names
}

// --- internal helpers ---

// listed reports whether name is the second column of any line in an
// ffmpeg -encoders / -filters listing.
func listed(out, name string) bool {
	for _, line := range strings.Split(out, "\n") {
		f := strings.Fields(line)
		if len(f) >= 2 && f[1] == name {
			return true
		}
	}
	return false
}

func found(exe string) bool {
	_, err := exec.LookPath(exe)
	return err == nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
