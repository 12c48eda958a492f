// Copyright © 2021 Optable Technologies Inc. All rights reserved.
// See LICENSE for details.
package io

import (
	"bufio"
	"errors"
	"io"

	"github.com/optable/easybytes/unit"
)

// FrameWriter writes messages (payload) framed in a stream. Batch conversion
// writes one result per frame.
type FrameWriter interface {
	// Write a single message. Returns the number of bytes required to write
	// the message with framing.
	Write(payload []byte) (int, error)
}

// FrameReader reads messages framed in a stream. Returns io.EOF when no frames
// are left. The implementer is not required to provide any concurrency
// guarantees.
type FrameReader interface {
	// Read a single message. The payload is only valid until the next call.
	Read() ([]byte, error)
}

// NewNewlineDelimitedFrameWriter terminates every message with a `\n`. The
// payload must not contain a newline; this is the responsibility of the
// caller.
func NewNewlineDelimitedFrameWriter(w io.Writer) FrameWriter {
	newline := []byte{'\n'}
	return frameWriterFn(func(payload []byte) (int, error) {
		n, err := w.Write(payload)
		if err != nil {
			return n, err
		}

		written, err := w.Write(newline)
		return n + written, err
	})
}

// maxFrameSize caps a single input line.
const maxFrameSize = unit.Mebibyte

// NewNewlineDelimitedFrameReader parses a stream separated by newlines with a
// bufio.Scanner. It supports `\r?\n` delimiters and fails with
// `bufio.ErrTooLong` on lines longer than a mebibyte. With skipEmpty, blank
// lines are not returned.
func NewNewlineDelimitedFrameReader(r io.Reader, skipEmpty bool) FrameReader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 4096), maxFrameSize)

	return frameReaderFn(func() ([]byte, error) {
		for {
			if !scanner.Scan() {
				err := scanner.Err()
				// We reached EOF
				if err == nil {
					err = io.EOF
				}
				return nil, err
			}
			line := scanner.Bytes()
			if skipEmpty && len(line) == 0 {
				continue
			}
			return line, nil
		}
	})
}

// ReadAllFrames returns copies of all frames exposed by a FrameReader until
// io.EOF is reached. If an error is encountered, it returns said error with a
// nil slice.
func ReadAllFrames(r FrameReader) ([][]byte, error) {
	frames := make([][]byte, 0, 16)
	for {
		frame, err := r.Read()
		if errors.Is(err, io.EOF) {
			return frames, nil
		} else if err != nil {
			return nil, err
		}

		newFrame := make([]byte, len(frame))
		copy(newFrame, frame)
		frames = append(frames, newFrame)
	}
}

type frameWriterFn func([]byte) (int, error)

func (f frameWriterFn) Write(payload []byte) (int, error) {
	return f(payload)
}

type frameReaderFn func() ([]byte, error)

func (f frameReaderFn) Read() ([]byte, error) {
	return f()
}
