// Package ffmpeg turns a profile and a stream selection into the ffmpeg
// argument list, locates the ffmpeg and ffprobe binaries, and explains
// common failures from ffmpeg's stderr.
//
// Files:
//   - builder.go: Build, SubtitlesFilter, EscapeFilterValue
//   - executable.go: Executable, ProbeExecutable
//   - errors.go: Classify
package ffmpeg
