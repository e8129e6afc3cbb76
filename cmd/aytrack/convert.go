package main

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aytracker/aytracker/tracker"
	"github.com/aytracker/aytracker/tracker/gomidi"
)

var (
	convertOutput outputOptions
	convertTo     string
)

var convertCmd = &cobra.Command{
	Use:   "convert FILE...",
	Short: "Convert songs to .yml, .json, .vt2, .mid or .wav",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runConvert,
}

func init() {
	fs := convertCmd.Flags()
	addOutputFlags(fs, &convertOutput)
	fs.StringVarP(&convertTo, "to", "t", "yml", "target format: yml, json, vt2, mid or wav")
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	to := strings.TrimPrefix(strings.ToLower(convertTo), ".")
	for _, path := range args {
		song, err := loadSong(path)
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		switch to {
		case "mid", "midi":
			to = "mid"
			err = gomidi.Export(&buf, song)
		case "wav":
			buffer, rerr := renderSong(song, cfg)
			if rerr != nil {
				return fmt.Errorf("%s: %w", path, rerr)
			}
			var wav []byte
			if wav, err = buffer.Wav(false, cfg.SampleRate); err == nil {
				buf.Write(wav)
			}
		case "yaml":
			to = "yml"
			fallthrough
		default:
			err = tracker.WriteSong(&buf, tracker.Format(to), song)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if err := convertOutput.write(path, "."+to, buf.Bytes()); err != nil {
			return err
		}
	}
	return nil
}
