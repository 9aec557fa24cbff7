package config

// This file implements CLI flag parsing and help text.
// The profile file is loaded between flag parsing and applying overrides,
// so a flag always wins over the file and the file over DefaultConfig.

import (
	"flag"
	"fmt"
	"os"
	"strings"
)

// ParseFlags parses args (normally os.Args[1:]) into cfg, loading the
// profile file named by -config or the single positional argument.
// On --help or --version it prints and exits.
func ParseFlags(cfg *Config, args []string, version string) error {
	fs := flag.NewFlagSet("muxwatch", flag.ContinueOnError)
	fs.Usage = func() { printUsage(version) }

	var o overrides
	defineFileFlags(fs, cfg, &o)
	defineDisplayFlags(fs, &o)
	defineUtilityFlags(fs, cfg, &o)

	if err := fs.Parse(args); err != nil {
		return err
	}

	if o.showHelp {
		printUsage(version)
		os.Exit(0)
	}
	if o.showVersion {
		fmt.Fprintln(os.Stdout, "muxwatch v"+version)
		os.Exit(0)
	}

	switch rest := fs.Args(); len(rest) {
	case 0:
	case 1:
		cfg.ConfigFile = rest[0]
	default:
		return fmt.Errorf("expected at most one config file argument, got %d", len(rest))
	}

	if err := Load(cfg, cfg.ConfigFile); err != nil {
		return err
	}
	o.apply(cfg)
	return nil
}

// overrides holds flag values applied after the profile file is loaded.
type overrides struct {
	profile     string
	input       string
	output      string
	stateDir    string
	logFile     string
	verbose     bool
	forceColor  bool
	noColor     bool
	showVersion bool
	showHelp    bool
}

// defineFileFlags registers -config, -profile, -input, -output, -state.
func defineFileFlags(fs *flag.FlagSet, cfg *Config, o *overrides) {
	fs.StringVar(&cfg.ConfigFile, "config", cfg.ConfigFile, "Profile file (YAML)")
	fs.StringVar(&cfg.ConfigFile, "c", cfg.ConfigFile, "Same as --config")
	fs.StringVar(&o.profile, "profile", "", "Profile name (overrides file)")
	fs.StringVar(&o.profile, "p", "", "Same as --profile")
	fs.StringVar(&o.input, "input", "", "Input directory (overrides file)")
	fs.StringVar(&o.output, "output", "", "Output directory (overrides file)")
	fs.StringVar(&o.stateDir, "state", "", "Ledger directory (overrides file)")
}

// defineDisplayFlags registers --color, --no-color, verbose, --log.
func defineDisplayFlags(fs *flag.FlagSet, o *overrides) {
	fs.BoolVar(&o.forceColor, "color", false, "Force colored logs")
	fs.BoolVar(&o.noColor, "no-color", false, "Disable colored logs")
	fs.BoolVar(&o.verbose, "verbose", false, "Debug output")
	fs.BoolVar(&o.verbose, "v", false, "Same as --verbose")
	fs.StringVar(&o.logFile, "log", "", "Append logs to file")
	fs.StringVar(&o.logFile, "l", "", "Same as --log")
}

// defineUtilityFlags registers --check, --history, --version and --help.
func defineUtilityFlags(fs *flag.FlagSet, cfg *Config, o *overrides) {
	fs.BoolVar(&cfg.CheckOnly, "check", false, "Run system diagnostics and exit")
	fs.BoolVar(&cfg.HistoryOnly, "history", false, "Print the conversion ledger and exit")
	fs.BoolVar(&o.showVersion, "version", false, "Print version and exit")
	fs.BoolVar(&o.showVersion, "V", false, "Same as --version")
	fs.BoolVar(&o.showHelp, "help", false, "Show this help and exit")
	fs.BoolVar(&o.showHelp, "h", false, "Same as --help")
}

func (o *overrides) apply(cfg *Config) {
	setString(&cfg.ProfileName, o.profile)
	setString(&cfg.InputDir, o.input)
	setString(&cfg.OutputDir, o.output)
	setString(&cfg.StateDir, o.stateDir)
	setString(&cfg.LogFile, o.logFile)
	if o.verbose {
		cfg.Verbose = true
		cfg.LogLevel = LevelDebug
	}
	if o.noColor {
		cfg.ColorMode = ColorNever
	} else if o.forceColor {
		cfg.ColorMode = ColorAlways
	}
}

// printUsage writes the help text to stderr. Column-aligned for readability.
func printUsage(version string) {
	const col1 = 28 // width of "  -x, --long-name <arg>  "
	lines := []struct {
		flags string
		desc  string
	}{
		{"", "muxwatch v" + version + " - watch a directory and convert media with ffmpeg"},
		{"", ""},
		{"  muxwatch [OPTIONS] [config.yaml]", ""},
		{"", ""},
		{"Configuration", ""},
		{"  -c, --config <path>", "Profile file (default: muxwatch.yaml)"},
		{"  -p, --profile <name>", "Profile to use (default: from file)"},
		{"  --input <dir>", "Input directory to watch"},
		{"  --output <dir>", "Directory for converted files"},
		{"  --state <dir>", "Conversion ledger directory"},
		{"", ""},
		{"Display", ""},
		{"  --color", "Force colored logs"},
		{"  --no-color", "Disable colored logs"},
		{"  -v, --verbose", "Debug output"},
		{"  -l, --log <path>", "Append logs to file"},
		{"", ""},
		{"Utility", ""},
		{"  --check", "System diagnostics (ffmpeg, ffprobe, encoders)"},
		{"  --history", "Print the conversion ledger and exit"},
		{"  -V, --version", "Print version and exit"},
		{"  -h, --help", "Show this help and exit"},
	}

	for _, l := range lines {
		if l.flags == "" && l.desc == "" {
			fmt.Fprintln(os.Stderr)
			continue
		}
		if l.desc == "" {
			fmt.Fprintln(os.Stderr, l.flags)
			continue
		}
		if l.flags == "" {
			fmt.Fprintln(os.Stderr, l.desc)
			continue
		}
		padding := col1 - len(l.flags)
		if padding < 1 {
			padding = 1
		}
		fmt.Fprintf(os.Stderr, "%s%*s%s\n", l.flags, padding, "", strings.TrimSpace(l.desc))
	}
}
