package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wippyai/mswasm-runtime/config"
	"github.com/wippyai/mswasm-runtime/errors"
	"github.com/wippyai/mswasm-runtime/tag"
)

func TestExecuteCapturesStdout(t *testing.T) {
	ctx := context.Background()
	var out bytes.Buffer

	res, err := execute(ctx, config.Default(), "echo", []string{"x", "y"}, nil, &out)
	require.NoError(t, err)
	defer res.inst.Close(ctx)

	require.NoError(t, res.err)
	require.True(t, res.exited)
	require.Equal(t, uint32(0), res.code)
	require.Equal(t, "x y\n", res.stdout)
	require.Equal(t, "x y\n", out.String())
}

func TestExecuteTrap(t *testing.T) {
	ctx := context.Background()

	res, err := execute(ctx, config.Default(), "temporal", nil, nil, nil)
	require.NoError(t, err)
	defer res.inst.Close(ctx)

	require.False(t, res.exited)
	require.True(t, errors.IsKind(res.err, errors.KindFreed))
}

func TestExecuteUnknownProgram(t *testing.T) {
	_, err := execute(context.Background(), config.Default(), "nope", nil, nil, nil)
	require.Error(t, err)
}

func TestExecuteFromSnapshot(t *testing.T) {
	ctx := context.Background()

	first, err := execute(ctx, config.Default(), "smallest", nil, nil, nil)
	require.NoError(t, err)
	snap, err := first.inst.Snapshot()
	require.NoError(t, err)
	live := first.inst.Store().Len()
	require.NoError(t, first.inst.Close(ctx))

	second, err := execute(ctx, config.Default(), "smallest", nil, snap, nil)
	require.NoError(t, err)
	defer second.inst.Close(ctx)
	require.Equal(t, uint32(4), second.code)
	require.Greater(t, second.inst.Store().Len(), live)
}

func TestRenderSegments(t *testing.T) {
	ctx := context.Background()

	res, err := execute(ctx, config.Default(), "hello", nil, nil, nil)
	require.NoError(t, err)
	defer res.inst.Close(ctx)

	out := renderSegments(res.inst.Store())
	require.Contains(t, out, "segments:")
	require.Contains(t, out, "#1")
	require.Contains(t, out, "per-word")
}

func TestNextStrategy(t *testing.T) {
	require.Equal(t, tag.Packed, nextStrategy(tag.PerWord))
	require.Equal(t, tag.Disabled, nextStrategy(tag.Packed))
	require.Equal(t, tag.PerWord, nextStrategy(tag.Disabled))
}

func TestLoadConfigOverride(t *testing.T) {
	cfg, err := loadConfig("", "packed")
	require.NoError(t, err)
	require.Equal(t, tag.Packed, cfg.Memory.TagStrategy)

	_, err = loadConfig("", "bogus")
	require.Error(t, err)
}
