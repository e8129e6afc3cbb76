package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aytracker/aytracker"
	"github.com/aytracker/aytracker/ay"
	"github.com/aytracker/aytracker/tracker"
)

var (
	renderOutput outputOptions
	renderRaw    bool
	renderPCM    bool
	maxSeconds   float64
)

var renderCmd = &cobra.Command{
	Use:   "render FILE...",
	Short: "Render songs to .wav (or .raw) files",
	Long: `Render plays each song offline from the start until the order wraps and
writes the audio next to the working directory. By default the samples are
stereo 32-bit floats; --pcm converts them to 16-bit signed integers.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRender,
}

func init() {
	fs := renderCmd.Flags()
	addOutputFlags(fs, &renderOutput)
	fs.BoolVar(&renderRaw, "raw", false, "write headerless .raw files instead of .wav")
	fs.BoolVarP(&renderPCM, "pcm", "c", false, "convert audio to 16-bit signed PCM")
	fs.Float64Var(&maxSeconds, "max-seconds", 600, "stop rendering after this many seconds (0 = no limit)")
}

func renderSong(song *aytracker.Song, cfg tracker.Config) (aytracker.AudioBuffer, error) {
	buffer, err := tracker.Render(song, ay.New(cfg.ChipTypeFor(song)), cfg, maxSeconds)
	if err != nil {
		return nil, fmt.Errorf("render failed: %w", err)
	}
	return buffer, nil
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	for _, path := range args {
		song, err := loadSong(path)
		if err != nil {
			return err
		}
		buffer, err := renderSong(song, cfg)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		extension, contents := ".wav", []byte(nil)
		if renderRaw {
			extension = ".raw"
			contents, err = buffer.Raw(renderPCM)
		} else {
			contents, err = buffer.Wav(renderPCM, cfg.SampleRate)
		}
		if err != nil {
			return fmt.Errorf("%s: could not generate %s file: %w", path, extension, err)
		}
		if err := renderOutput.write(path, extension, contents); err != nil {
			return fmt.Errorf("error outputting %s file: %w", extension, err)
		}
	}
	return nil
}
