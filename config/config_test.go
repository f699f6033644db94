package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wippyai/mswasm-runtime/errors"
	"github.com/wippyai/mswasm-runtime/tag"
)

func TestDefault(t *testing.T) {
	c, err := Parse("")
	require.NoError(t, err)
	require.Equal(t, tag.PerWord, c.Memory.TagStrategy)
	require.Equal(t, 2, c.Runtime.Globals)
	require.Equal(t, uint32(8), c.Runtime.TableSize)
	require.Equal(t, "info", c.Log.Level)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mswasm.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[memory]
tag-strategy = "packed"
max-segments = 100

[runtime]
table-size = 16

[log]
level = "debug"
development = true

[host]
args = ["-v"]
walltime = true

[host.env]
HOME = "/tmp"
`), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, path, c.Path)
	require.Equal(t, tag.Packed, c.Memory.TagStrategy)
	require.Equal(t, uint32(100), c.Memory.MaxSegments)
	require.Equal(t, 2, c.Runtime.Globals, "omitted keys keep defaults")
	require.Equal(t, uint32(16), c.Runtime.TableSize)

	rc := c.RuntimeConfig()
	require.Equal(t, tag.Packed, rc.TagStrategy)
	require.Equal(t, uint32(100), rc.MaxSegments)
	require.Equal(t, uint32(16), rc.TableSize)

	var out bytes.Buffer
	hc := c.HostConfig("hello", nil, &out, nil)
	require.Equal(t, []string{"hello", "-v"}, hc.Args)
	require.Equal(t, map[string]string{"HOME": "/tmp"}, hc.Env)
	require.True(t, hc.Walltime)
	require.Same(t, &out, hc.Stdout)

	log, err := c.NewLogger()
	require.NoError(t, err)
	require.True(t, log.Core().Enabled(zap.DebugLevel))
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
		kind errors.Kind
	}{
		{"syntax", "[memory", errors.KindInvalidData},
		{"unknown strategy", "[memory]\ntag-strategy = \"shadow\"", errors.KindInvalidData},
		{"unknown key", "[memory]\ntags = \"packed\"", errors.KindInvalidData},
		{"negative globals", "[runtime]\nglobals = -1", errors.KindInvalidInput},
		{"bad level", "[log]\nlevel = \"loud\"", errors.KindInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.text)
			require.True(t, errors.IsKind(err, tt.kind), "got %v", err)
		})
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.True(t, errors.IsKind(err, errors.KindNotFound))
}
