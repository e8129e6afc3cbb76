package tracker

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	"gopkg.in/yaml.v3"

	"github.com/aytracker/aytracker"
	"github.com/aytracker/aytracker/pt3"
	"github.com/aytracker/aytracker/vt2"
)

// Format is a song file format, named by its usual file extension.
type Format string

const (
	FormatPT3  Format = "pt3"
	FormatVT2  Format = "vt2"
	FormatYAML Format = "yml"
	FormatJSON Format = "json"
)

// LoadOptions are passed on to the module decoders.
type LoadOptions struct {
	Logger        *log.Logger
	RelativeJumps bool
}

// FormatFromPath guesses the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pt3":
		return FormatPT3, nil
	case ".vt2", ".txt":
		return FormatVT2, nil
	case ".yml", ".yaml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", fault.New(fmt.Sprintf("unknown song format %q", filepath.Ext(path)),
		ftag.With(ftag.InvalidArgument),
		fmsg.WithDesc("unknown format", fmt.Sprintf("Cannot tell the format of %s from its extension", filepath.Base(path))))
}

// LoadSong reads a song file. The format is chosen by the extension.
func LoadSong(path string, opts LoadOptions) (*aytracker.Song, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fault.Wrap(err, ftag.With(ftag.NotFound), fmsg.WithDesc("could not open song", fmt.Sprintf("Could not open %s", path)))
	}
	defer f.Close()
	song, err := ReadSong(f, format, opts)
	if err != nil {
		return nil, fault.Wrap(err, fmsg.WithDesc("could not load song", fmt.Sprintf("Could not load %s", path)))
	}
	return song, nil
}

// ReadSong decodes a song in the given format.
func ReadSong(r io.Reader, format Format, opts LoadOptions) (*aytracker.Song, error) {
	switch format {
	case FormatPT3:
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fault.Wrap(err, fmsg.With("read PT3 module"))
		}
		var pt3opts []pt3.Option
		if opts.Logger != nil {
			pt3opts = append(pt3opts, pt3.WithLogger(opts.Logger))
		}
		pt3opts = append(pt3opts, pt3.WithRelativeJumps(opts.RelativeJumps))
		song, err := pt3.Decode(data, pt3opts...)
		if err != nil {
			return nil, fault.Wrap(err, ftag.With(ftag.InvalidArgument))
		}
		return song, nil
	case FormatVT2:
		var vt2opts []vt2.Option
		if opts.Logger != nil {
			vt2opts = append(vt2opts, vt2.WithLogger(opts.Logger))
		}
		song, err := vt2.Decode(r, vt2opts...)
		if err != nil {
			return nil, fault.Wrap(err, ftag.With(ftag.InvalidArgument))
		}
		return song, nil
	case FormatYAML, FormatJSON:
		b, err := io.ReadAll(r)
		if err != nil {
			return nil, fault.Wrap(err, fmsg.With("read song"))
		}
		var song aytracker.Song
		if format == FormatJSON {
			err = json.Unmarshal(b, &song)
		} else {
			err = yaml.Unmarshal(b, &song)
		}
		if err != nil {
			return nil, fault.Wrap(err, ftag.With(ftag.InvalidArgument), fmsg.With("unmarshal song"))
		}
		if err := song.Validate(); err != nil {
			return nil, fault.Wrap(err, ftag.With(ftag.InvalidArgument))
		}
		return &song, nil
	}
	return nil, fault.New(fmt.Sprintf("cannot read format %q", format), ftag.With(ftag.InvalidArgument))
}

// SaveSong writes a song file. PT3 cannot be written.
func SaveSong(path string, song *aytracker.Song) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := WriteSong(&buf, format, song); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fault.Wrap(err, fmsg.WithDesc("cannot write file", fmt.Sprintf("Could not write %s", path)))
	}
	return nil
}

// WriteSong encodes a song in the given format.
func WriteSong(w io.Writer, format Format, song *aytracker.Song) error {
	var contents []byte
	var err error
	switch format {
	case FormatVT2:
		if err := vt2.Encode(w, song); err != nil {
			return fault.Wrap(err, fmsg.With("encode VT2"))
		}
		return nil
	case FormatJSON:
		contents, err = json.MarshalIndent(song, "", "  ")
	case FormatYAML:
		contents, err = yaml.Marshal(song)
	default:
		return fault.New(fmt.Sprintf("cannot write format %q", format), ftag.With(ftag.InvalidArgument))
	}
	if err != nil {
		return fault.Wrap(err, fmsg.With("marshal song"))
	}
	if _, err := w.Write(contents); err != nil {
		return fault.Wrap(err, fmsg.With("write song"))
	}
	return nil
}

// WriteWav writes rendered audio to a .wav file.
func WriteWav(path string, buffer aytracker.AudioBuffer, pcm16 bool, sampleRate int) error {
	data, err := buffer.Wav(pcm16, sampleRate)
	if err != nil {
		return fault.Wrap(err, fmsg.With("encode wav"))
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fault.Wrap(err, fmsg.WithDesc("cannot write file", fmt.Sprintf("Could not write %s", path)))
	}
	return nil
}
