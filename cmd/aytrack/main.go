package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/Southclaws/fault/fmsg"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/aytracker/aytracker"
	"github.com/aytracker/aytracker/tracker"
	"github.com/aytracker/aytracker/version"
)

type (
	globalOptions struct {
		configPath    string
		rate          int
		clock         int
		stereo        string
		chip          string
		loopPoint     bool
		relativeJumps bool
		verbose       bool
	}

	outputOptions struct {
		directory string
		stdout    bool
	}
)

var (
	global globalOptions
	logger = log.New(os.Stderr, "aytrack: ", 0)
)

var rootCmd = &cobra.Command{
	Use:   "aytrack",
	Short: "Play, render and convert AY-3-8910 / YM2149 tracker modules",
	Long: `aytrack plays ProTracker 3 (.pt3) and Vortex Tracker II (.txt, .vt2)
modules on an emulated AY-3-8910 or YM2149 chip.

Songs can also be stored as .yml or .json, rendered to .wav or .raw, and
exported to MIDI.`,
	Version:       version.VersionOrHash,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	defaultConfig, err := tracker.DefaultConfigPath()
	if err != nil {
		defaultConfig = ""
	}
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&global.configPath, "config", defaultConfig, "YAML config file")
	flags.IntVarP(&global.rate, "rate", "r", tracker.DefaultSampleRate, "output sample rate in Hz")
	flags.IntVar(&global.clock, "clock", 0, "chip clock in Hz (0 = from the song)")
	flags.StringVar(&global.stereo, "stereo", "ABC", "stereo layout: ABC, ACB or mono")
	flags.StringVar(&global.chip, "chip", "", "chip type override: AY or YM")
	flags.BoolVar(&global.loopPoint, "loop-point", true, "restart at the loop point when the order wraps")
	flags.BoolVar(&global.relativeJumps, "relative-jumps", false, "follow relative jumps in PT3 channel streams")
	flags.BoolVarP(&global.verbose, "verbose", "v", false, "print warnings and progress")
	rootCmd.SetVersionTemplate(version.String("aytrack") + "\n")
	rootCmd.AddCommand(playCmd, renderCmd, convertCmd, infoCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if issue := fmsg.GetIssue(err); issue != "" && !global.verbose {
			logger.Println(issue)
		} else {
			logger.Println(err)
		}
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies the flags that were given on
// the command line on top of it.
func loadConfig(cmd *cobra.Command) (tracker.Config, error) {
	cfg := tracker.DefaultConfig()
	if global.configPath != "" {
		var err error
		if cfg, err = tracker.LoadConfig(global.configPath); err != nil {
			return cfg, err
		}
	}
	flags := cmd.Flags()
	if flags.Changed("rate") {
		cfg.SampleRate = global.rate
	}
	if flags.Changed("clock") {
		cfg.ChipClock = global.clock
	}
	if flags.Changed("stereo") {
		cfg.Stereo = global.stereo
	}
	if flags.Changed("chip") {
		cfg.ChipType = global.chip
	}
	if flags.Changed("loop-point") {
		cfg.RestartAtLoopPoint = global.loopPoint
	}
	return cfg, cfg.Validate()
}

func loadOptions() tracker.LoadOptions {
	opts := tracker.LoadOptions{RelativeJumps: global.relativeJumps}
	if global.verbose {
		opts.Logger = logger
	}
	return opts
}

func loadSong(path string) (*aytracker.Song, error) {
	return tracker.LoadSong(path, loadOptions())
}

func addOutputFlags(fs *pflag.FlagSet, o *outputOptions) {
	fs.StringVarP(&o.directory, "output", "o", "", "directory for the output files; created if needed (default: working directory)")
	fs.BoolVarP(&o.stdout, "stdout", "s", false, "write to standard output instead of files")
}

// write stores contents in a file named after the input file with the given
// extension.
func (o *outputOptions) write(input, extension string, contents []byte) error {
	if o.stdout {
		_, err := os.Stdout.Write(contents)
		return err
	}
	dir := o.directory
	if dir == "" {
		var err error
		if dir, err = os.Getwd(); err != nil {
			return fmt.Errorf("could not get working directory, specify the output directory explicitly: %v", err)
		}
	}
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return fmt.Errorf("could not create output directory %v: %v", dir, err)
	}
	name := filepath.Base(input)
	name = strings.TrimSuffix(name, filepath.Ext(name)) + extension
	f := filepath.Join(dir, name)
	if err := os.WriteFile(f, contents, 0o644); err != nil {
		return fmt.Errorf("could not write file %v: %v", f, err)
	}
	if global.verbose {
		logger.Printf("wrote %s", f)
	}
	return nil
}
