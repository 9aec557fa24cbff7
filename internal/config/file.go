package config

// This file loads the YAML profile file. Wire types mirror the on-disk
// keys; conversion into Config happens in one place so defaults survive
// any key the file omits.

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type fileConfig struct {
	InputDirectory  string                 `yaml:"input_directory"`
	OutputDirectory string                 `yaml:"output_directory"`
	StateDirectory  string                 `yaml:"state_directory"`
	VideoExtensions stringList             `yaml:"video_extensions"`
	PollFrequency   int                    `yaml:"poll_frequency"` // Seconds.
	CompleteAction  string                 `yaml:"complete_action"`
	LogLevel        string                 `yaml:"log_level"`
	LogFile         string                 `yaml:"log_file"`
	Color           string                 `yaml:"color"`
	Profile         string                 `yaml:"profile"`
	Profiles        map[string]fileProfile `yaml:"profiles"`
}

type fileProfile struct {
	Encoder              string     `yaml:"encoder"`
	VideoParameters      string     `yaml:"video_parameters"`
	AudioParameters      string     `yaml:"audio_parameters"`
	Subtitles            string     `yaml:"subtitles"`
	AudioLanguage        stringList `yaml:"audio_language"`
	SubtitleLanguage     stringList `yaml:"subtitle_language"`
	ExecutableDirectory  string     `yaml:"executable_directory"`
	ExecutableParameters string     `yaml:"executable_parameters"`
	CompleteAction       string     `yaml:"complete_action"`
}

// stringList accepts either a YAML sequence or a comma-separated scalar
// ("jpn, eng"), trimming blanks from each entry.
type stringList []string

func (s *stringList) UnmarshalYAML(node *yaml.Node) error {
	var raw []string
	switch node.Kind {
	case yaml.ScalarNode:
		raw = strings.Split(node.Value, ",")
	case yaml.SequenceNode:
		if err := node.Decode(&raw); err != nil {
			return err
		}
	default:
		return fmt.Errorf("line %d: expected a list or comma-separated string", node.Line)
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	*s = out
	return nil
}

// Load reads the YAML file at path and applies it on top of cfg.
// Parse errors are returned as [*Error].
func Load(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &Error{Msg: fmt.Sprintf("failed to read config file: %v", err)}
	}
	return Parse(cfg, data)
}

// Parse applies YAML document data on top of cfg. Exported for testing
// without touching the filesystem.
func Parse(cfg *Config, data []byte) error {
	var raw fileConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return &Error{Msg: fmt.Sprintf("failed to parse config file: %v", err)}
	}
	raw.apply(cfg)
	return nil
}

func (f *fileConfig) apply(cfg *Config) {
	setString(&cfg.InputDir, f.InputDirectory)
	setString(&cfg.OutputDir, f.OutputDirectory)
	setString(&cfg.StateDir, f.StateDirectory)
	setString(&cfg.LogFile, f.LogFile)
	setString(&cfg.ProfileName, f.Profile)
	if len(f.VideoExtensions) > 0 {
		cfg.Extensions = f.VideoExtensions
	}
	if f.PollFrequency != 0 {
		cfg.PollInterval = time.Duration(f.PollFrequency) * time.Second
	}
	if f.CompleteAction != "" {
		cfg.CompleteAction = CompleteAction(strings.ToLower(f.CompleteAction))
	}
	if f.LogLevel != "" {
		cfg.LogLevel = LogLevel(strings.ToLower(f.LogLevel))
	}
	if f.Color != "" {
		cfg.ColorMode = ColorMode(strings.ToLower(f.Color))
	}

	if cfg.Profiles == nil {
		cfg.Profiles = make(map[string]*Profile, len(f.Profiles))
	}
	for name, fp := range f.Profiles {
		cfg.Profiles[name] = fp.toProfile(name)
	}
}

func (fp *fileProfile) toProfile(name string) *Profile {
	p := &Profile{
		Name:                 name,
		Encoder:              strings.ToLower(strings.TrimSpace(fp.Encoder)),
		VideoParameters:      fp.VideoParameters,
		AudioParameters:      fp.AudioParameters,
		Subtitles:            SubtitleMode(strings.ToLower(fp.Subtitles)),
		AudioLanguages:       fp.AudioLanguage,
		SubtitleLanguages:    fp.SubtitleLanguage,
		ExecutableDir:        fp.ExecutableDirectory,
		ExecutableParameters: fp.ExecutableParameters,
		CompleteAction:       CompleteAction(strings.ToLower(fp.CompleteAction)),
	}
	if p.Subtitles == "" {
		p.Subtitles = SubtitleEmbed
	}
	return p
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
