package aytracker

import "fmt"

type (
	// FormatError reports a module that cannot be decoded: bad magic, a
	// malformed header, a truncated buffer or an unterminated order list.
	// Decoders return no song together with a FormatError.
	FormatError struct {
		Format string // "PT3", "VT2", ...
		Offset int    // byte offset (binary formats) or line number (text formats); -1 if unknown
		Reason string
	}

	// RangeError reports an index outside the table or list it refers to.
	// Playback recovers from these locally.
	RangeError struct {
		What  string
		Index int
		Len   int
	}

	// DeviceError reports a chip device that is missing or could not be
	// configured.
	DeviceError struct {
		Op  string
		Err error
	}
)

func (e *FormatError) Error() string {
	if e.Offset < 0 {
		return fmt.Sprintf("%s: %s", e.Format, e.Reason)
	}
	return fmt.Sprintf("%s: %s (at %d)", e.Format, e.Reason, e.Offset)
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s: index %d out of range [0, %d)", e.What, e.Index, e.Len)
}

func (e *DeviceError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("chip device: %s", e.Op)
	}
	return fmt.Sprintf("chip device: %s: %v", e.Op, e.Err)
}

func (e *DeviceError) Unwrap() error {
	return e.Err
}
