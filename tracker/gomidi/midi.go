package gomidi

import (
	"fmt"
	"io"

	"github.com/aytracker/aytracker"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// TicksPerQuarter is the MIDI resolution. One MIDI tick is one song tick, so
// the tempo of the file is 60*tickRate/TicksPerQuarter beats per minute.
const TicksPerQuarter = 24

const defaultVolume = 15

type event struct {
	tick uint32
	msg  midi.Message
}

// Export writes the song as a Standard MIDI File: a tempo track followed by
// one track per chip channel, each on its own MIDI channel. The order is
// played once. Channels that have not set a volume yet play at full
// velocity.
func Export(w io.Writer, song *aytracker.Song) error {
	s, err := Convert(song)
	if err != nil {
		return err
	}
	if _, err := s.WriteTo(w); err != nil {
		return fmt.Errorf("error writing MIDI file: %w", err)
	}
	return nil
}

// Convert builds the SMF for a song without writing it.
func Convert(song *aytracker.Song) (*smf.SMF, error) {
	if err := song.Validate(); err != nil {
		return nil, err
	}
	sm := smf.New()
	sm.TimeFormat = smf.MetricTicks(TicksPerQuarter)

	var track0 smf.Track
	if song.Title != "" {
		track0.Add(0, smf.MetaTrackSequenceName(song.Title))
	}
	track0.Add(0, smf.MetaMeter(4, 4))
	track0.Add(0, smf.MetaTempo(Tempo(song.TickRate())))
	track0.Close(0)
	if err := sm.Add(track0); err != nil {
		return nil, fmt.Errorf("error adding tempo track: %w", err)
	}

	events, end := channelEvents(song)
	for ch := range events {
		var track smf.Track
		track.Add(0, smf.MetaTrackSequenceName("Channel "+aytracker.ChannelLabel(ch)))
		var prev uint32
		for _, e := range events[ch] {
			track.Add(e.tick-prev, e.msg)
			prev = e.tick
		}
		track.Close(end - prev)
		if err := sm.Add(track); err != nil {
			return nil, fmt.Errorf("error adding track %d: %w", ch, err)
		}
	}
	return sm, nil
}

// Tempo returns the MIDI tempo in beats per minute for a tick rate.
func Tempo(tickRate int) float64 {
	return 60 * float64(tickRate) / TicksPerQuarter
}

// Key returns the MIDI key of a pitched note; C-4 is 60.
func Key(n aytracker.Note) uint8 {
	return uint8(min(max(n.Semitone()+24, 0), 127))
}

func velocity(volume int) uint8 {
	return uint8(volume * 127 / 15)
}

func channelEvents(song *aytracker.Song) (ret [aytracker.NumChannels][]event, end uint32) {
	var (
		tick    uint32
		speed   = song.Speed()
		volumes = [aytracker.NumChannels]int{defaultVolume, defaultVolume, defaultVolume}
		playing [aytracker.NumChannels]int // key+1 of the sounding note, 0 if none
	)
	for i := range song.PatternOrder {
		p := song.PatternAt(i)
		for row := 0; row < p.Length; row++ {
			for ch := 0; ch < aytracker.NumChannels; ch++ {
				r := p.Row(ch, row)
				if r.Volume > 0 {
					volumes[ch] = r.Volume
				}
				if r.Effect != nil && r.Effect.Kind == aytracker.EffectSpeed && r.Effect.Parameter > 0 {
					speed = int(r.Effect.Parameter)
				}
				if r.Note.Name == aytracker.NoteOff || r.Note.Pitched() {
					if playing[ch] > 0 {
						ret[ch] = append(ret[ch], event{tick, midi.NoteOff(uint8(ch), uint8(playing[ch]-1))})
						playing[ch] = 0
					}
				}
				if r.Note.Pitched() {
					key := Key(r.Note)
					ret[ch] = append(ret[ch], event{tick, midi.NoteOn(uint8(ch), key, velocity(volumes[ch]))})
					playing[ch] = int(key) + 1
				}
			}
			tick += uint32(speed)
		}
	}
	for ch := range playing {
		if playing[ch] > 0 {
			ret[ch] = append(ret[ch], event{tick, midi.NoteOff(uint8(ch), uint8(playing[ch]-1))})
		}
	}
	return ret, tick
}
