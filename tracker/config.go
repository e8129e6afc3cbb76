package tracker

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/aytracker/aytracker"
	"gopkg.in/yaml.v3"
)

// Config holds the playback settings. Zero values of ChipClock and
// TicksPerSecond mean "use the song's value".
type Config struct {
	SampleRate         int    `yaml:",omitempty"`
	ChipClock          int    `yaml:",omitempty"`
	TicksPerSecond     int    `yaml:",omitempty"`
	BufferSize         int    `yaml:",omitempty"`
	RestartAtLoopPoint bool   `yaml:"restartatlooppoint"`
	Stereo             string `yaml:",omitempty"`
	EqualPowerPan      bool   `yaml:",omitempty"`
	// ChipType overrides the chip type of the song when set to "AY" or "YM".
	ChipType string `yaml:",omitempty"`
	// Lazy streams patterns to the player on demand instead of sending the
	// whole song when playback starts.
	Lazy bool `yaml:",omitempty"`
}

const (
	DefaultSampleRate = 44100
	DefaultBufferSize = 1024
)

func DefaultConfig() Config {
	return Config{
		SampleRate:         DefaultSampleRate,
		BufferSize:         DefaultBufferSize,
		RestartAtLoopPoint: true,
		Stereo:             "ABC",
	}
}

// DefaultConfigPath returns the path of the user's config file,
// os.UserConfigDir()/aytracker/config.yml.
func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "aytracker", "config.yml"), nil
}

// LoadConfig reads a YAML config file on top of DefaultConfig. A missing
// file is not an error; the defaults are returned.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks the fields that have no usable fallback.
func (c Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %d", c.SampleRate)
	}
	if c.BufferSize <= 0 {
		return fmt.Errorf("buffer size must be positive, got %d", c.BufferSize)
	}
	if _, err := aytracker.ParseStereoLayout(c.Stereo); err != nil {
		return err
	}
	if _, err := aytracker.ParseChipType(c.ChipType); err != nil {
		return err
	}
	return nil
}

// StereoLayout returns the parsed Stereo field, ABC if it is invalid.
func (c Config) StereoLayout() aytracker.StereoLayout {
	l, err := aytracker.ParseStereoLayout(c.Stereo)
	if err != nil {
		return aytracker.StereoABC
	}
	return l
}

// ChipTypeFor returns the chip type to emulate for a song.
func (c Config) ChipTypeFor(song *aytracker.Song) aytracker.ChipType {
	if c.ChipType != "" {
		if t, err := aytracker.ParseChipType(c.ChipType); err == nil {
			return t
		}
	}
	return song.ChipType
}

// ClockFor returns the chip clock to use for a song.
func (c Config) ClockFor(song *aytracker.Song) int {
	if c.ChipClock > 0 {
		return c.ChipClock
	}
	return song.Clock()
}

// TickRateFor returns the tick rate to use for a song.
func (c Config) TickRateFor(song *aytracker.Song) int {
	if c.TicksPerSecond > 0 {
		return c.TicksPerSecond
	}
	return song.TickRate()
}
