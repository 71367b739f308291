package logging

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    zerolog.Level
		wantErr bool
	}{
		{"", zerolog.InfoLevel, false},
		{"info", zerolog.InfoLevel, false},
		{"debug", zerolog.DebugLevel, false},
		{"warn", zerolog.WarnLevel, false},
		{"warning", zerolog.WarnLevel, false},
		{"ERROR", zerolog.ErrorLevel, false},
		{"off", zerolog.Disabled, false},
		{"loud", zerolog.NoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestSetup_FileOutput(t *testing.T) {
	dir := t.TempDir()
	closer, err := Setup(Config{Level: "debug", File: filepath.Join(dir, "logs", "synapse.log")})
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	defer closer.Close()

	log := Component("test")
	log.Info().Msg("hello")
}

func TestSetup_BadLevel(t *testing.T) {
	if _, err := Setup(Config{Level: "shouty"}); err == nil {
		t.Error("Setup() with invalid level did not error")
	}
}
