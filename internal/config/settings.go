package config

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Pad matching modes
const (
	PadMatchIndex  = "index"  // pads pair up by position in the footprint
	PadMatchNumber = "number" // pads pair up by pad number
)

// Settings controls a replication run.
type Settings struct {
	LogMode         string `yaml:"log_mode"`           // "dev" or "prod"
	PadMatch        string `yaml:"pad_match"`          // index or number
	SkipOutOfBounds bool   `yaml:"skip_out_of_bounds"` // skip template footprints at negative coordinates
	GroupPrefix     string `yaml:"group_prefix"`       // managed group name prefix
	LogFile         bool   `yaml:"log_file"`           // also log to <board>.projinst.log
}

// DefaultSettings returns the settings used when no file is given.
func DefaultSettings() *Settings {
	return &Settings{
		LogMode:         "dev",
		PadMatch:        PadMatchIndex,
		SkipOutOfBounds: true,
		GroupPrefix:     "hierpcb:",
		LogFile:         true,
	}
}

// LoadSettings reads a YAML settings file over the defaults.
func LoadSettings(path string) (*Settings, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return LoadSettingsFromReader(file)
}

// LoadSettingsFromReader reads YAML settings from an io.Reader.
func LoadSettingsFromReader(r io.Reader) (*Settings, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	s := DefaultSettings()
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the settings and fills empty values with defaults.
func (s *Settings) Validate() error {
	def := DefaultSettings()
	if s.LogMode == "" {
		s.LogMode = def.LogMode
	}
	if s.PadMatch == "" {
		s.PadMatch = def.PadMatch
	}
	if s.GroupPrefix == "" {
		s.GroupPrefix = def.GroupPrefix
	}

	switch s.PadMatch {
	case PadMatchIndex, PadMatchNumber:
	default:
		return fmt.Errorf("invalid pad_match %q (want %q or %q)", s.PadMatch, PadMatchIndex, PadMatchNumber)
	}
	return nil
}
