// Package monitor implements the nav-data monitor sink: an io.Writer that
// daily-rotates its output file, toggled on and off at runtime by its own
// SetEnabled. It's adapted from the teacher repo's
// rtcmlogger/logger.Writer, which wraps the same dailylogger package
// around a different payload (raw RTCM bytes rather than decoded HAS
// correction records).
package monitor

import (
	"encoding/json"
	"io"
	"sync"

	"github.com/goblimey/go-tools/dailylogger"

	"github.com/jwen15/DM-gnss-sdr/internal/mt1"
)

// Writer satisfies io.Writer and writes the lines it is given to a
// daily-rotating log file under logDirectory: cmd/hasreceiver writes one
// JSON-encoded monitor event per line, and LogRecord writes one
// JSON-encoded HAS correction record per line.
type Writer struct {
	mutex     sync.Mutex
	logWriter *dailylogger.Writer
	enabled   bool
}

var _ io.Writer = (*Writer)(nil)

// New creates a Writer rooted at logDirectory, producing files named
// "has.<date>.jsonl".
func New(logDirectory string) *Writer {
	return &Writer{
		logWriter: dailylogger.New(logDirectory, "has.", ".jsonl"),
	}
}

// SetEnabled turns monitor output on or off without tearing down the
// underlying daily log file.
func (w *Writer) SetEnabled(enabled bool) {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	w.enabled = enabled
}

// Enabled reports the current on/off state.
func (w *Writer) Enabled() bool {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.enabled
}

// Write writes buffer to today's log file if the monitor is enabled, else
// discards it - but always reports success, so a disabled monitor never
// looks like a failing writer to its caller.
func (w *Writer) Write(buffer []byte) (int, error) {
	w.mutex.Lock()
	enabled := w.enabled
	w.mutex.Unlock()

	if !enabled {
		return len(buffer), nil
	}
	return w.logWriter.Write(buffer)
}

// LogRecord JSON-encodes rec as one line and writes it via Write.
func (w *Writer) LogRecord(rec *mt1.Record) error {
	line, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	line = append(line, '\n')
	_, err = w.Write(line)
	return err
}
