// Copyright © 2021 Optable Technologies Inc. All rights reserved.
// See LICENSE for details.
package batch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optable/easybytes/convert"
	pkgerrors "github.com/optable/easybytes/errors"
	"github.com/optable/easybytes/metrics"
	"github.com/optable/easybytes/unit"
)

func requireConverter(t *testing.T, base unit.Base) *convert.Converter {
	conv, err := convert.NewConverter(base)
	require.NoError(t, err)
	return conv
}

func TestRunToDisplay(t *testing.T) {
	input := "3072\n\n1536\n0\nnope\n5000000000000000\n"
	out := new(bytes.Buffer)

	stats, err := Run(context.Background(), strings.NewReader(input), out, Options{
		Mode:       ToDisplay,
		Converter:  requireConverter(t, unit.Binary),
		Abbreviate: true,
	})
	require.NoError(t, err)
	assert.Equal(t, Stats{Lines: 5, Empty: 2}, stats)
	assert.Equal(t, "3\tKB\n1.5\tKB\n\tGB\n\tGB\n4547.47\tTB\n", out.String())
}

func TestRunToBytes(t *testing.T) {
	input := "3 KB\n1500\n1.5MB\n\n2 Gigabytes\n abc KB\n"
	out := new(bytes.Buffer)

	stats, err := Run(context.Background(), strings.NewReader(input), out, Options{
		Mode:      ToBytes,
		Converter: requireConverter(t, unit.Binary),
	})
	require.NoError(t, err)
	assert.Equal(t, Stats{Lines: 5, Empty: 1}, stats)
	assert.Equal(t, fmt.Sprintf("3072\n1500\n1572864\n%d\n\n", 2*unit.GiB), out.String())
}

func TestRunReportsMalformedLines(t *testing.T) {
	input := "1 KB\n1 2 3\n2 XB\n3 MB\n"
	out := new(bytes.Buffer)
	recorder := metrics.NewRecorder()

	stats, err := Run(context.Background(), strings.NewReader(input), out, Options{
		Mode:      ToBytes,
		Converter: requireConverter(t, unit.Decimal),
		Recorder:  recorder,
	})
	assert.Equal(t, Stats{Lines: 4, Empty: 2, Malformed: 2}, stats)
	assert.Equal(t, "1000\n\n\n3000000\n", out.String())

	errs := pkgerrors.All(err)
	require.Len(t, errs, 2)

	var posErr *pkgerrors.PositionalError
	require.True(t, errors.As(errs[0], &posErr))
	assert.Equal(t, 2, posErr.Position())
	assert.ErrorIs(t, errs[0], ErrFieldCount)

	require.True(t, errors.As(errs[1], &posErr))
	assert.Equal(t, 3, posErr.Position())
	assert.ErrorIs(t, errs[1], ErrUnknownUnit)

	families, err := recorder.Gatherer().Gather()
	require.NoError(t, err)
	assert.Len(t, families, 3)
	assert.NoError(t, testutil.GatherAndCompare(recorder.Gatherer(), strings.NewReader(`
# HELP easybytes_malformed_lines_total Number of batch input lines that could not be read.
# TYPE easybytes_malformed_lines_total counter
easybytes_malformed_lines_total 2
`), "easybytes_malformed_lines_total"))
}

func TestRunKeepsOrderAcrossChunks(t *testing.T) {
	var input, expected strings.Builder
	for i := 1; i <= 5000; i++ {
		fmt.Fprintf(&input, "%d\n", i*unit.KiB)
		fmt.Fprintf(&expected, "%d\n", i*unit.KiB)
	}

	out := new(bytes.Buffer)
	stats, err := Run(context.Background(), strings.NewReader(input.String()), out, Options{
		Mode:      ToBytes,
		Converter: requireConverter(t, unit.Binary),
		Workers:   8,
		ChunkSize: 256,
	})
	require.NoError(t, err)
	assert.Equal(t, 5000, stats.Lines)
	assert.Equal(t, expected.String(), out.String())
}

func TestRunPositionsAcrossChunks(t *testing.T) {
	var input strings.Builder
	for i := 0; i < 300; i++ {
		input.WriteString("1 KB\n")
	}
	input.WriteString("1 ZB\n")

	_, err := Run(context.Background(), strings.NewReader(input.String()), new(bytes.Buffer), Options{
		Mode:      ToBytes,
		Converter: requireConverter(t, unit.Binary),
		Workers:   4,
		ChunkSize: 64,
	})
	var posErr *pkgerrors.PositionalError
	require.True(t, errors.As(err, &posErr))
	assert.Equal(t, 301, posErr.Position())
}

func TestRunPositionsCountBlankLines(t *testing.T) {
	input := "1 KB\n\n\n2 XB\r\n\r\n\n3 MB\n1 2\n"
	out := new(bytes.Buffer)

	stats, err := Run(context.Background(), strings.NewReader(input), out, Options{
		Mode:      ToBytes,
		Converter: requireConverter(t, unit.Decimal),
		ChunkSize: 8,
	})
	assert.Equal(t, Stats{Lines: 4, Empty: 2, Malformed: 2}, stats)
	assert.Equal(t, "1000\n\n3000000\n\n", out.String())

	errs := pkgerrors.All(err)
	require.Len(t, errs, 2)
	assert.EqualError(t, errs[0], `line 4: "XB": unknown unit`)

	var posErr *pkgerrors.PositionalError
	require.True(t, errors.As(errs[1], &posErr))
	assert.Equal(t, 8, posErr.Position())
}

func TestRunInvalidOptions(t *testing.T) {
	_, err := Run(context.Background(), strings.NewReader(""), new(bytes.Buffer), Options{Mode: "sideways", Converter: requireConverter(t, unit.Binary)})
	assert.ErrorIs(t, err, ErrInvalidMode)

	_, err = Run(context.Background(), strings.NewReader(""), new(bytes.Buffer), Options{Mode: ToBytes})
	assert.Error(t, err)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	input := strings.Repeat("1 KB\n", 100000)
	_, err := Run(ctx, strings.NewReader(input), new(bytes.Buffer), Options{
		Mode:      ToBytes,
		Converter: requireConverter(t, unit.Binary),
		ChunkSize: 64,
	})
	assert.ErrorIs(t, err, context.Canceled)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestRunWriteFailure(t *testing.T) {
	input := strings.Repeat("1 KB\n", 10000)
	_, err := Run(context.Background(), strings.NewReader(input), failingWriter{}, Options{
		Mode:      ToBytes,
		Converter: requireConverter(t, unit.Binary),
	})
	assert.Error(t, err)
}
