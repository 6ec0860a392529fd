package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

const line = "x,y,dy\n0,1.1,0.2\n1,2.9,0.2\n2,5.2,0.2\n3,6.8,0.2\n4,9.1,0.2\n5,11.0,0.2\n"

func TestRootSubcommands(t *testing.T) {
	cmd := NewRootCmd()
	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"version", "fit", "table", "describe", "sort", "interval"} {
		assert.Contains(t, names, want)
	}
}

func TestFit(t *testing.T) {
	t.Chdir(t.TempDir())
	require.NoError(t, os.WriteFile("line.csv", []byte(line), 0600))

	out, err := run(t, "fit", "{a}*x + {b}", "--data", "line.csv", "-x", "x", "-y", "y", "--yerr", "dy", "--beta0", "1,1", "--printf")
	require.NoError(t, err)
	assert.Contains(t, out, "PARAMETER")
	assert.Contains(t, out, "│ a ")
	assert.Contains(t, out, "│ b ")
	assert.Contains(t, out, "*x + ")
}

func TestFitRunDirectory(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile("line.csv", []byte(line), 0600))

	_, err := run(t, "fit", "{a}*x + {b}", "--data", "line.csv", "-x", "x", "-y", "y",
		"--beta0", "1,1", "--out", "runs", "--note", "calib", "--graph", "data,curve", "--save", "lin.png")
	require.NoError(t, err)

	logs, err := filepath.Glob(filepath.Join(dir, "runs", "*", "* calib", "log.txt"))
	require.NoError(t, err)
	require.Len(t, logs, 1)
	b, err := os.ReadFile(logs[0])
	require.NoError(t, err)
	assert.Contains(t, string(b), "Formula: {a}*x + {b}")
	assert.Contains(t, string(b), "Runtime note: calib")

	runPath := filepath.Dir(logs[0])
	for _, name := range []string{"lin_data.png", "lin_curve.png"} {
		_, err := os.Stat(filepath.Join(runPath, name))
		assert.NoError(t, err, name)
	}
}

func TestFitConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())
	require.NoError(t, os.WriteFile("line.csv", []byte(line), 0600))
	require.NoError(t, os.WriteFile("labfit.yaml", []byte("method: odr\n"), 0600))

	out, err := run(t, "fit", "{a}*x + {b}", "--data", "line.csv", "-x", "x", "-y", "y", "--beta0", "2,1", "--verbose")
	require.NoError(t, err)
	assert.Contains(t, out, "using config file")
	assert.Contains(t, out, "│ a ")
}

func TestInvalidFlagValue(t *testing.T) {
	t.Chdir(t.TempDir())
	require.NoError(t, os.WriteFile("line.csv", []byte(line), 0600))

	_, err := run(t, "fit", "{a}*x", "--data", "line.csv", "-x", "x", "-y", "y", "--method", "newton")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "method must be one of: simple, odr")

	_, err = run(t, "--style", "eng", "version")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "style must be one of")
}

func TestFitMissingColumn(t *testing.T) {
	t.Chdir(t.TempDir())
	require.NoError(t, os.WriteFile("line.csv", []byte(line), 0600))

	_, err := run(t, "fit", "{a}*x", "--data", "line.csv", "-x", "t", "-y", "y")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no such column")
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "labfit v"+Version+"\n", out)
}

func TestVersionWithoutGnuplot(t *testing.T) {
	t.Setenv("PATH", "")
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "labfit v"+Version+"\n", out)
}
