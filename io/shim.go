// Copyright © 2021 Optable Technologies Inc. All rights reserved.
// See LICENSE for details.
package io

import (
	"bufio"
	"io"
)

const (
	defaultBufSize = 4096
)

// NewBufferWriteCloser wraps an io.Writer in a buffer that is flushed on
// Close. If the writer also implements io.Closer, it is closed after the
// flush.
func NewBufferWriteCloser(w io.Writer) io.WriteCloser {
	return NewBufferWriteCloserSize(w, defaultBufSize)
}

// NewBufferWriteCloserSize is NewBufferWriteCloser with a buffer of the given
// size. A negative size selects the default.
func NewBufferWriteCloserSize(w io.Writer, size int) io.WriteCloser {
	if size < 0 {
		size = defaultBufSize
	}

	buf := bufio.NewWriterSize(w, size)

	closers := []io.Closer{CloserFn(buf.Flush)}
	if wc, ok := w.(io.Closer); ok {
		closers = append(closers, wc)
	}

	return NewChainedCloser(buf, closers...)
}

// NewChainedCloser returns a io.WriteCloser that closes the provided closers
// in order, stopping at the first failure.
func NewChainedCloser(w io.Writer, cs ...io.Closer) io.WriteCloser {
	return &chainedCloser{Writer: w, cs: cs}
}

type chainedCloser struct {
	io.Writer
	cs []io.Closer
}

func (w *chainedCloser) Close() error {
	for _, c := range w.cs {
		if err := c.Close(); err != nil {
			return err
		}
	}

	return nil
}

// WithoutClose hides the Close method of w, e.g. to buffer os.Stdout without
// closing it.
func WithoutClose(w io.Writer) io.Writer {
	return struct{ io.Writer }{w}
}

// CloserFn implements the io.Closer interface for closures of the same
// signature.
type CloserFn func() error

func (c CloserFn) Close() error {
	return c()
}
