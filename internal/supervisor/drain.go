package supervisor

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"os"
)

const maxLine = 1 << 20

// drain reads r until EOF, handing each non-empty line to sink. ffmpeg
// rewrites its progress line with '\r', so both '\r' and '\n' end a line.
// If a line exceeds maxLine the rest of the stream is discarded rather than
// left unread, so the child never blocks on a full pipe.
func drain(r io.Reader, sink func(string)) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)
	sc.Split(scanLines)
	for sc.Scan() {
		if line := sc.Text(); line != "" {
			sink(line)
		}
	}
	err := sc.Err()
	if errors.Is(err, bufio.ErrTooLong) {
		_, err = io.Copy(io.Discard, r)
	}
	if errors.Is(err, os.ErrClosed) {
		return nil
	}
	return err
}

// scanLines is bufio.ScanLines with '\r' accepted as a terminator.
func scanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
