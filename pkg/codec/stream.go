package codec

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
)

// MaxLineBytes bounds a single envelope in a stream.
const MaxLineBytes = 1 << 20

// Reader reads newline-delimited envelopes. Blank lines and lines starting
// with '#' are skipped.
type Reader struct {
	scanner *bufio.Scanner
	line    int
}

// NewReader returns a Reader over r.
func NewReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineBytes)
	return &Reader{scanner: scanner}
}

// Next returns the next Input. A malformed envelope yields a *DecodeError
// and the stream can continue; io.EOF marks the end of the stream. Any other
// error is fatal.
func (r *Reader) Next() (Input, error) {
	for r.scanner.Scan() {
		r.line++
		line := bytes.TrimSpace(r.scanner.Bytes())
		if len(line) == 0 || line[0] == '#' {
			continue
		}

		in, err := Decode(line)
		if err != nil {
			var de *DecodeError
			if errors.As(err, &de) {
				de.Line = r.line
			}
			return Input{}, err
		}
		return in, nil
	}

	if err := r.scanner.Err(); err != nil {
		return Input{}, fmt.Errorf("failed to read line %d: %w", r.line+1, err)
	}
	return Input{}, io.EOF
}

// Line returns the number of the last line read.
func (r *Reader) Line() int {
	return r.line
}

// Writer writes envelopes, one per line.
type Writer struct {
	w io.Writer
}

// NewWriter returns a Writer over w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Write encodes in and terminates it with a newline.
func (w *Writer) Write(in Input) error {
	data, err := Encode(in)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.w.Write(data)
	return err
}
