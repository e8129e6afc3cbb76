/*
Package tracker plays songs on a chip device.

The Sequencer is the clock of the tracker. It counts samples, advances ticks,
rows and order entries, and writes the chip registers when a row starts. It
renders into buffers of any size; the position after N samples does not
depend on how the samples were split into buffers.

The Player owns a Sequencer and the chip device on the audio goroutine. The
Model owns the song on the controlling goroutine. They talk only through the
Broker: the Model sends play, pattern and tuning messages to the Player, and
the Player sends position updates, level readings, pattern requests and
alerts back. The Player never blocks; if the Model is not reading, updates are
dropped.

Render plays a song offline with no goroutines, which is what the render and
convert commands use.
*/
package tracker
