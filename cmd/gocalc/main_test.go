package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gocalc"
)

func run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs(args)
	err = cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestEval(t *testing.T) {
	out, _, err := run(t, "eval", "2^10")
	require.NoError(t, err)
	assert.Contains(t, out, "✅ Result: 1024")
}

func TestSolve_JSON(t *testing.T) {
	out, _, err := run(t, "--json", "solve", "x + y = 5, x - y = 1", "x, y")
	require.NoError(t, err)
	var resp gocalc.ToolResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "{x: 3, y: 2}", resp.String)
}

func TestFailureGoesToStderr(t *testing.T) {
	out, errOut, err := run(t, "diff", "sin(x", "x")
	require.ErrorIs(t, err, errReported)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "❌ Error:")
}

func TestIntegrateFlags(t *testing.T) {
	out, _, err := run(t, "integrate", "x^2", "x", "--lower", "0", "--upper", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Definite integral: 9")
}

func TestChartWritesPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bar.png")
	out, _, err := run(t, "chart", "bar", "a,b,c", "1,2,3", "--out", path)
	require.NoError(t, err)
	assert.Contains(t, out, "image written to")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))
}

func TestFFT_JSONOmitsWrittenImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fft.png")
	out, _, err := run(t, "--json", "fft", "--freq", "5", "--out", path)
	require.NoError(t, err)
	var resp gocalc.ToolResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Empty(t, resp.Image)
	assert.Contains(t, resp.String, "peak 5.000 Hz")
}

func TestConfigFlagAndLogLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gocalc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engine:\n  timeout: 3s\nchart:\n  width: 640\n"), 0o644))

	out, _, err := run(t, "--config", path, "--log-level", "debug", "config")
	require.NoError(t, err)
	assert.Contains(t, out, "timeout: 3s")
	assert.Contains(t, out, "width: 640")

	_, _, err = run(t, "--log-level", "loud", "schema")
	assert.Error(t, err)
}

func TestSchema(t *testing.T) {
	out, _, err := run(t, "schema")
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(out)))
}
