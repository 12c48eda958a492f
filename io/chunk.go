// Copyright © 2021 Optable Technologies Inc. All rights reserved.
// See LICENSE for details.
package io

import (
	"bytes"
	"errors"
	"io"
)

type (
	// Chunk is a run of complete frames cut from a stream. Seq numbers chunks
	// from 0 in stream order so that results computed in parallel can be put
	// back in order. Lines holds the 1-based line number of each frame in the
	// stream, blank lines included in the count.
	Chunk struct {
		Seq    int
		Frames [][]byte
		Lines  []int
	}

	// ChunkReader breaks a stream into chunks amenable to parallel parsing.
	ChunkReader interface {
		// NextChunk returns the next chunk, or io.EOF.
		NextChunk() (Chunk, error)
	}
)

var (
	InvalidArgErr   = errors.New("Invalid argument")
	NoFrameFoundErr = errors.New("No frame found in chunk")
)

// NewNewlineDelimitedChunkReader returns a ChunkReader that cuts chunks of
// frames delimited by newlines, skipping empty lines. The chunkSize must be
// large enough to hold a full frame, otherwise NextChunk fails with
// NoFrameFoundErr.
func NewNewlineDelimitedChunkReader(reader io.Reader, chunkSize int) (ChunkReader, error) {
	if chunkSize <= 0 {
		return nil, InvalidArgErr
	}

	if reader == nil {
		return nil, InvalidArgErr
	}

	return &delimitedChunker{
		r:         reader,
		delimiter: '\n',
		chunkSize: chunkSize,
	}, nil
}

type delimitedChunker struct {
	r         io.Reader
	delimiter byte
	chunkSize int

	seq  int
	line int
	prev []byte
}

func (c *delimitedChunker) NextChunk() (Chunk, error) {
	for {
		reader, err := c.nextReader()
		if err != nil {
			return Chunk{}, err
		}

		all, err := ReadAllFrames(reader)
		if err != nil {
			return Chunk{}, err
		}

		chunk := Chunk{Seq: c.seq}
		for i, frame := range all {
			if len(frame) == 0 {
				continue
			}
			chunk.Frames = append(chunk.Frames, frame)
			chunk.Lines = append(chunk.Lines, c.line+i+1)
		}
		c.line += len(all)
		if len(chunk.Frames) == 0 {
			// A chunk made only of blank lines.
			continue
		}

		c.seq++
		return chunk, nil
	}
}

func (c *delimitedChunker) nextReader() (FrameReader, error) {
	if c.r == nil {
		if len(c.prev) == 0 {
			return nil, io.EOF
		}
		// Flush what is left after the last delimiter.
		rest := c.prev
		c.prev = nil
		return NewNewlineDelimitedFrameReader(bytes.NewReader(rest), false), nil
	}

	buf := make([]byte, c.chunkSize)
	n, err := io.ReadFull(c.r, buf)
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		// ReadFull returns ErrUnexpectedEOF if it couldn't read the full
		// buffer. We use this signal as equivalent to EOF and only the last
		// chunk can have less than chunkSize.
		c.r = nil
		buf = buf[:n]
	} else if err != nil {
		return nil, err
	}

	var buffers []io.Reader
	if len(c.prev) > 0 {
		buffers, c.prev = append(buffers, bytes.NewReader(c.prev)), nil
	}

	pos := bytes.LastIndexByte(buf, c.delimiter)
	if pos == -1 {
		if c.r != nil {
			// A full chunk without a single delimiter cannot hold a frame.
			return nil, NoFrameFoundErr
		}
		buffers = append(buffers, bytes.NewReader(buf))
	} else {
		// Keep the delimiter so that every line of the chunk is terminated
		// and prev only holds the start of the next line.
		buffers, c.prev = append(buffers, bytes.NewReader(buf[:pos+1])), buf[pos+1:]
	}

	return NewNewlineDelimitedFrameReader(io.MultiReader(buffers...), false), nil
}

// ReadAllChunks consumes the chunker. It may hold the entire stream in memory
// and is mostly used for testing.
func ReadAllChunks(chunker ChunkReader) (chunks []Chunk, err error) {
	for {
		chunk, err := chunker.NextChunk()
		if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return nil, err
		}

		chunks = append(chunks, chunk)
	}

	return chunks, nil
}
