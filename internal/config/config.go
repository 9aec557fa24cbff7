// Package config holds runtime configuration: defaults, the YAML profile
// file, CLI flag overrides, and validation. Enum fields are checked once in
// [Config.Validate] and treated as closed sets everywhere else.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// --- Enum types for validated string fields ---

// SubtitleMode controls what happens to the selected subtitle stream.
type SubtitleMode string

const (
	SubtitleEmbed  SubtitleMode = "embed"  // Map as a separate default track (default).
	SubtitleBurnIn SubtitleMode = "burnin" // Render into the video via the subtitles filter.
	SubtitleNone   SubtitleMode = "none"   // Drop subtitles.
)

// CompleteAction is applied to the input file after a successful conversion.
type CompleteAction string

const (
	CompleteDelete CompleteAction = "delete" // Remove the input file.
	CompleteRename CompleteAction = "rename" // Rename the input to <input>.done.
	CompleteNone   CompleteAction = "none"   // Leave the input untouched (default).
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// LogLevel is the minimum severity written by the logger.
type LogLevel string

const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info" // Default.
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

// EncoderFFmpeg is the only supported encoder identity.
const EncoderFFmpeg = "ffmpeg"

// DefaultPollInterval matches the legacy poll_frequency default of 60 seconds.
const DefaultPollInterval = 60 * time.Second

// Error is a configuration problem detected at startup. It is always fatal.
type Error struct {
	Field string
	Msg   string
}

func (e *Error) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return e.Field + ": " + e.Msg
}

func invalid(field, format string, args ...interface{}) error {
	return &Error{Field: field, Msg: fmt.Sprintf(format, args...)}
}

// Profile is one named encoding profile. It is read-only once loaded and
// shared by every worker.
type Profile struct {
	Name                 string
	Encoder              string
	VideoParameters      string
	AudioParameters      string
	Subtitles            SubtitleMode
	AudioLanguages       []string
	SubtitleLanguages    []string
	ExecutableDir        string // Optional directory holding ffmpeg and ffprobe.
	ExecutableParameters string
	CompleteAction       CompleteAction // Empty means inherit Config.CompleteAction.
}

// Config holds all runtime settings. It is populated by [DefaultConfig],
// then [Load] for the profile file, then [ParseFlags] overrides.
type Config struct {
	// Paths.
	ConfigFile string
	InputDir   string
	OutputDir  string
	StateDir   string // Optional; enables the conversion ledger.

	// Monitoring.
	Extensions     []string // Lowercase, no leading dot.
	PollInterval   time.Duration
	CompleteAction CompleteAction

	// Profile selection.
	ProfileName string
	Profiles    map[string]*Profile

	// Display and logging.
	LogLevel  LogLevel
	Verbose   bool // Forces LevelDebug.
	ColorMode ColorMode
	LogFile   string

	// Utility modes.
	CheckOnly   bool
	HistoryOnly bool
}

// DefaultConfig returns a Config with the legacy defaults. Used as the base
// before [Load] and [ParseFlags] apply overrides.
func DefaultConfig() Config {
	return Config{
		ConfigFile:     "muxwatch.yaml",
		Extensions:     []string{"mkv", "mp4", "avi"},
		PollInterval:   DefaultPollInterval,
		CompleteAction: CompleteNone,
		ProfileName:    "default",
		LogLevel:       LevelInfo,
		ColorMode:      ColorAuto,
	}
}

// Profile returns the selected profile, or nil when it is not defined.
func (c *Config) Profile() *Profile {
	return c.Profiles[c.ProfileName]
}

// Action returns the completion action for p, falling back to the
// top-level setting when the profile does not override it.
func (c *Config) Action(p *Profile) CompleteAction {
	if p != nil && p.CompleteAction != "" {
		return p.CompleteAction
	}
	return c.CompleteAction
}

// NormalizeDirArg strips trailing slashes from a directory path.
// The filesystem root "/" is returned unchanged so we don't produce an empty string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}

// Validate checks enum fields and the selected profile, and normalises
// paths and extensions in place. Every returned error is an [*Error].
func (c *Config) Validate() error {
	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return invalid("color", "invalid color mode %q (use 'auto', 'always' or 'never')", c.ColorMode)
	}

	switch c.LogLevel {
	case LevelDebug, LevelInfo, LevelWarn, LevelError:
		// valid
	default:
		return invalid("log_level", "invalid log level %q (use 'debug', 'info', 'warn' or 'error')", c.LogLevel)
	}

	if err := validAction("complete_action", c.CompleteAction, false); err != nil {
		return err
	}

	p := c.Profile()
	if p == nil {
		return invalid("profile", "profile %q is not defined", c.ProfileName)
	}
	if err := p.validate(); err != nil {
		return err
	}

	if c.HistoryOnly {
		if c.StateDir == "" {
			return invalid("state_directory", "required for -history")
		}
		return nil
	}
	if c.CheckOnly {
		return nil
	}

	if c.InputDir == "" || c.OutputDir == "" {
		return invalid("", "need both input_directory and output_directory")
	}
	if c.PollInterval <= 0 {
		return invalid("poll_frequency", "must be positive (got %s)", c.PollInterval)
	}

	exts := make([]string, 0, len(c.Extensions))
	for _, e := range c.Extensions {
		e = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(e), "."))
		if e != "" {
			exts = append(exts, e)
		}
	}
	if len(exts) == 0 {
		return invalid("video_extensions", "at least one extension is required")
	}
	c.Extensions = exts

	var err error
	if c.InputDir, err = filepath.Abs(NormalizeDirArg(c.InputDir)); err != nil {
		return invalid("input_directory", "%v", err)
	}
	if c.OutputDir, err = filepath.Abs(NormalizeDirArg(c.OutputDir)); err != nil {
		return invalid("output_directory", "%v", err)
	}
	return nil
}

func (p *Profile) validate() error {
	field := "profiles." + p.Name
	if p.Encoder != EncoderFFmpeg {
		return invalid(field+".encoder", "unsupported encoder %q (use 'ffmpeg')", p.Encoder)
	}
	switch p.Subtitles {
	case SubtitleEmbed, SubtitleBurnIn, SubtitleNone:
		// valid
	default:
		return invalid(field+".subtitles", "invalid subtitle mode %q (use 'embed', 'burnin' or 'none')", p.Subtitles)
	}
	if err := validAction(field+".complete_action", p.CompleteAction, true); err != nil {
		return err
	}
	if p.ExecutableDir != "" {
		abs, err := filepath.Abs(p.ExecutableDir)
		if err != nil {
			return invalid(field+".executable_directory", "%v", err)
		}
		p.ExecutableDir = abs
	}
	return nil
}

func validAction(field string, a CompleteAction, allowEmpty bool) error {
	switch a {
	case CompleteDelete, CompleteRename, CompleteNone:
		return nil
	case "":
		if allowEmpty {
			return nil
		}
	}
	return invalid(field, "invalid complete action %q (use 'delete', 'rename' or 'none')", a)
}

// ValidatePaths ensures the resolved output directory is not inside (or equal
// to) the resolved input directory, so converted files are never picked up
// as new input. Both arguments must be absolute, symlink-resolved paths.
func (c *Config) ValidatePaths(inputAbs, outputAbs string) error {
	sep := string(filepath.Separator)
	if outputAbs == inputAbs || strings.HasPrefix(outputAbs+sep, inputAbs+sep) {
		return errors.New("output directory must not be inside input directory")
	}
	return nil
}
