package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/aytracker/aytracker"
	"github.com/aytracker/aytracker/ay"
	"github.com/aytracker/aytracker/oto"
	"github.com/aytracker/aytracker/tracker"
)

var (
	playForever bool
	playLazy    bool
	startOrder  int
)

var playCmd = &cobra.Command{
	Use:   "play FILE...",
	Short: "Play songs on the audio device until the order wraps (Ctrl-C stops)",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPlay,
}

func init() {
	fs := playCmd.Flags()
	fs.BoolVar(&playForever, "forever", false, "keep looping the last song instead of moving on")
	fs.BoolVar(&playLazy, "lazy", false, "stream patterns to the player on demand")
	fs.IntVar(&startOrder, "start", 0, "order index to start playing from")
}

const pollInterval = 50 * time.Millisecond

func runPlay(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("lazy") {
		cfg.Lazy = playLazy
	}
	audioContext, err := oto.NewContext(cfg.SampleRate, cfg.BufferSize)
	if err != nil {
		return fmt.Errorf("could not acquire oto AudioContext: %w", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	for i, path := range args {
		song, err := loadSong(path)
		if err != nil {
			return err
		}
		last := i == len(args)-1
		if err := playSong(ctx, audioContext, song, cfg, playForever && last); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if ctx.Err() != nil {
			return nil
		}
	}
	return nil
}

func playSong(ctx context.Context, audioContext aytracker.AudioContext, song *aytracker.Song, cfg tracker.Config, forever bool) error {
	broker := tracker.NewBroker()
	model := tracker.NewModel(broker, cfg)
	player := tracker.NewPlayer(broker, cfg.RestartAtLoopPoint)
	chip := ay.New(cfg.ChipTypeFor(song))
	if err := model.Init(chip, audioContext.SampleRate()); err != nil {
		return err
	}
	if err := model.Play(song, tracker.PlayOptions{StartOrder: startOrder, Lazy: cfg.Lazy}); err != nil {
		return err
	}
	output := audioContext.Play(func(buf aytracker.AudioBuffer) error {
		player.Process(buf)
		return nil
	})
	defer output.Close()
	if global.verbose {
		logger.Printf("playing %q by %q", song.Title, song.Author)
	}
	var pos aytracker.SongPos
	for {
		select {
		case <-ctx.Done():
			model.Stop()
			return nil
		default:
		}
		msg, ok := tracker.TimeoutReceive(broker.ToModel, pollInterval)
		if !ok {
			continue
		}
		model.ProcessMsg(msg)
		for _, a := range model.Alerts() {
			logger.Println(a)
		}
		if global.verbose && model.Position() != pos {
			pos = model.Position()
			fmt.Fprintf(os.Stderr, "\r%02d:%02d speed %d", pos.OrderIndex, pos.Row, model.Speed())
		}
		if !forever && model.Loops() > 0 {
			if global.verbose {
				fmt.Fprintln(os.Stderr)
			}
			model.Stop()
			return nil
		}
	}
}
