package ffmpeg

import (
	"path/filepath"

	"github.com/backmassage/muxwatch/internal/config"
)

// Executable returns the ffmpeg binary for p: inside p.ExecutableDir when
// set, otherwise the bare name resolved through PATH.
func Executable(p *config.Profile) string {
	return resolve(p, "ffmpeg")
}

// ProbeExecutable returns the ffprobe binary for p, resolved like [Executable].
func ProbeExecutable(p *config.Profile) string {
	return resolve(p, "ffprobe")
}

func resolve(p *config.Profile, name string) string {
	if p == nil || p.ExecutableDir == "" {
		return name
	}
	return filepath.Join(p.ExecutableDir, name)
}
