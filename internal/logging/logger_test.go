package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/backmassage/muxwatch/internal/config"
)

func TestNewLogger_NoFile(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.ColorMode = config.ColorNever
	l, err := NewLogger(&cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()
	l.Info("test message")
}

func TestNewLogger_WithFile(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.ColorMode = config.ColorNever
	cfg.LogFile = filepath.Join(dir, "logs", "muxwatch.log")
	l, err := NewLogger(&cfg)
	if err != nil {
		t.Fatal(err)
	}
	l.With("file", "/in/movie.mkv").Error("to file")
	l.Debug("hidden at info")
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}
	b, _ := os.ReadFile(cfg.LogFile)
	if !bytes.Contains(b, []byte(`"level":"error"`)) || !bytes.Contains(b, []byte("to file")) {
		t.Errorf("log file content: %s", string(b))
	}
	if !bytes.Contains(b, []byte(`"file":"/in/movie.mkv"`)) {
		t.Errorf("child field missing: %s", string(b))
	}
	if bytes.Contains(b, []byte("hidden at info")) {
		t.Errorf("debug line written at info level: %s", string(b))
	}
}

func TestSink_TagsSource(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, config.LevelInfo)
	sink := l.Sink("ffmpeg")
	sink("frame=  100 fps=25")
	sink("frame=  200 fps=25")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %s", len(lines), buf.String())
	}
	var rec map[string]interface{}
	if err := json.Unmarshal([]byte(lines[1]), &rec); err != nil {
		t.Fatal(err)
	}
	if rec["src"] != "ffmpeg" || rec["message"] != "frame=  200 fps=25" {
		t.Errorf("record = %v", rec)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   config.LogLevel
		want zerolog.Level
	}{
		{config.LevelDebug, zerolog.DebugLevel},
		{config.LevelInfo, zerolog.InfoLevel},
		{"WARN", zerolog.WarnLevel},
		{config.LevelError, zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
