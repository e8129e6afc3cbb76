package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"github.com/aytracker/aytracker"
)

var infoDump bool

var infoCmd = &cobra.Command{
	Use:   "info FILE...",
	Short: "Print the metadata of songs",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, path := range args {
			song, err := loadSong(path)
			if err != nil {
				return err
			}
			printInfo(os.Stdout, path, song)
			if infoDump {
				dumper := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, DisableCapacities: true, SortKeys: true}
				dumper.Fdump(os.Stdout, song)
			}
		}
		return nil
	},
}

func init() {
	infoCmd.Flags().BoolVar(&infoDump, "dump", false, "dump the whole decoded song")
}

func printInfo(w io.Writer, path string, song *aytracker.Song) {
	order := make([]string, len(song.PatternOrder))
	for i, p := range song.PatternOrder {
		order[i] = fmt.Sprint(p)
		if i == song.LoopPoint {
			order[i] = "L" + order[i]
		}
	}
	rows := 0
	for i := range song.PatternOrder {
		if p := song.PatternAt(i); p != nil {
			rows += p.Length
		}
	}
	fmt.Fprintf(w, "%s\n", path)
	fmt.Fprintf(w, "  title:     %s\n", song.Title)
	fmt.Fprintf(w, "  author:    %s\n", song.Author)
	fmt.Fprintf(w, "  chip:      %s @ %d Hz, %d ticks/s\n", song.ChipType, song.Clock(), song.TickRate())
	fmt.Fprintf(w, "  speed:     %d\n", song.Speed())
	fmt.Fprintf(w, "  order:     %s\n", strings.Join(order, ","))
	fmt.Fprintf(w, "  patterns:  %d (%d rows in the order)\n", len(song.Patterns), rows)
	fmt.Fprintf(w, "  samples:   %d\n", len(song.Samples))
	fmt.Fprintf(w, "  ornaments: %d\n", len(song.Ornaments))
}
