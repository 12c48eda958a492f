// Copyright © 2021 Optable Technologies Inc. All rights reserved.
// See LICENSE for details.

// Package batch converts newline-delimited values in bulk. Input is cut in
// chunks converted in parallel; results are written in input order, one line
// per non-blank input line.
package batch

import (
	"context"
	"errors"
	"fmt"
	stdio "io"
	"runtime"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/optable/easybytes/convert"
	pkgerrors "github.com/optable/easybytes/errors"
	"github.com/optable/easybytes/io"
	"github.com/optable/easybytes/metrics"
	"github.com/optable/easybytes/unit"
)

// Mode is the direction of a batch conversion.
type Mode string

const (
	// ToDisplay reads byte counts and writes "AMOUNT\tUNIT".
	ToDisplay Mode = "display"
	// ToBytes reads "AMOUNT UNIT" and writes byte counts.
	ToBytes Mode = "bytes"
)

const DefaultChunkSize = 64 * unit.KiB

var ErrInvalidMode = errors.New(`mode must be "display" or "bytes"`)

type (
	Options struct {
		Mode      Mode
		Converter *convert.Converter
		// Abbreviate unit names in ToDisplay output.
		Abbreviate bool
		// Workers defaults to the number of CPUs.
		Workers int
		// ChunkSize must hold the longest input line.
		ChunkSize int
		// Recorder is optional.
		Recorder *metrics.Recorder
	}

	// Stats summarises a run.
	Stats struct {
		Lines     int `json:"lines"`
		Empty     int `json:"empty"`
		Malformed int `json:"malformed"`
	}
)

func (s *Stats) add(o Stats) {
	s.Lines += o.Lines
	s.Empty += o.Empty
	s.Malformed += o.Malformed
}

type (
	result struct {
		seq   int
		lines [][]byte
		errs  []error
		stats Stats
	}
)

// Run converts every line of r and writes the results to w. Lines that are
// not well-formed produce an empty result line and a PositionalError; these
// are returned together once the whole input is processed. Any other error
// stops the run.
func Run(ctx context.Context, r stdio.Reader, w stdio.Writer, opts Options) (Stats, error) {
	var stats Stats

	if opts.Mode != ToDisplay && opts.Mode != ToBytes {
		return stats, fmt.Errorf("%q: %w", opts.Mode, ErrInvalidMode)
	}
	if opts.Converter == nil {
		return stats, errors.New("missing converter")
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	chunkSize := opts.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	chunker, err := io.NewNewlineDelimitedChunkReader(r, chunkSize)
	if err != nil {
		return stats, err
	}

	logger := zerolog.Ctx(ctx).With().Str("mode", string(opts.Mode)).Logger()

	jobs := make(chan io.Chunk, workers)
	results := make(chan result, workers)

	group, ctx := errgroup.WithContext(ctx)

	// Read chunks in order.
	group.Go(func() error {
		defer close(jobs)

		for {
			if err := ctx.Err(); err != nil {
				return err
			}

			chunk, err := chunker.NextChunk()
			if errors.Is(err, stdio.EOF) {
				return nil
			} else if err != nil {
				return fmt.Errorf("failed reading input: %w", err)
			}

			select {
			case jobs <- chunk:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	})

	// Convert chunks.
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		group.Go(func() error {
			defer wg.Done()
			for chunk := range jobs {
				select {
				case results <- convertChunk(opts, chunk):
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			return nil
		})
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	// Write results back in input order.
	var lineErrs []error
	group.Go(func() error {
		out := io.NewBufferWriteCloser(io.WithoutClose(w))
		frames := io.NewNewlineDelimitedFrameWriter(out)

		pending := make(map[int]result)
		seq := 0
		for res := range results {
			pending[res.seq] = res
			for {
				ready, ok := pending[seq]
				if !ok {
					break
				}
				delete(pending, seq)
				seq++

				for _, line := range ready.lines {
					if _, err := frames.Write(line); err != nil {
						_ = out.Close()
						return fmt.Errorf("failed writing output: %w", err)
					}
				}
				for _, err := range ready.errs {
					logger.Warn().Err(err).Msg("Malformed line")
				}
				lineErrs = append(lineErrs, ready.errs...)
				stats.add(ready.stats)
				observe(opts.Recorder, opts.Mode, ready.stats)
			}
		}

		if err := out.Close(); err != nil {
			return fmt.Errorf("failed flushing output: %w", err)
		}
		return nil
	})

	if err := group.Wait(); err != nil {
		return stats, err
	}

	logger.Debug().
		Int("lines", stats.Lines).
		Int("empty", stats.Empty).
		Int("malformed", stats.Malformed).
		Msg("Batch conversion completed")

	return stats, pkgerrors.NewErrors(lineErrs...)
}

func convertChunk(opts Options, chunk io.Chunk) result {
	res := result{seq: chunk.Seq, lines: make([][]byte, 0, len(chunk.Frames))}

	for i, frame := range chunk.Frames {
		var lr lineResult
		if opts.Mode == ToDisplay {
			lr = convertToDisplay(opts.Converter, opts.Abbreviate, string(frame))
		} else {
			lr = convertToBytes(opts.Converter, string(frame))
		}

		res.lines = append(res.lines, []byte(lr.out))
		res.stats.Lines++
		if lr.empty {
			res.stats.Empty++
		}
		if lr.err != nil {
			res.stats.Malformed++
			res.errs = append(res.errs, pkgerrors.NewPositionalError(chunk.Lines[i], lr.err))
		}
	}

	return res
}

func observe(recorder *metrics.Recorder, mode Mode, stats Stats) {
	if recorder == nil {
		return
	}
	direction := metrics.ToBytes
	if mode == ToDisplay {
		direction = metrics.ToDisplay
	}
	// Malformed lines are counted apart from conversions.
	recorder.Observe(direction, stats.Lines-stats.Malformed, stats.Empty-stats.Malformed)
	recorder.Malformed(stats.Malformed)
}
