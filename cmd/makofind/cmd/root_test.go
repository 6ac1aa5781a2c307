package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const usageLine = "usage: makofind dir1 dir2 ... dirN\n"

func run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := Run("makofind", args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestRunUsage(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "nil args", args: nil},
		{name: "empty args", args: []string{}},
		{name: "flags only", args: []string{"--summary"}},
		{name: "terminator only", args: []string{"--"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := Run("makofind", tt.args, &stdout, &stderr)

			assert.Equal(t, 1, code)
			assert.Empty(t, stdout.String())
			assert.Equal(t, usageLine, stderr.String())
		})
	}
}

func TestRunUnknownFlag(t *testing.T) {
	code, stdout, stderr := run(t, "--bogus", t.TempDir())

	assert.Equal(t, 1, code)
	assert.Empty(t, stdout)
	assert.True(t, strings.HasPrefix(stderr, "makofind: unknown flag: --bogus\n"), stderr)
	assert.True(t, strings.HasSuffix(stderr, usageLine), stderr)
}

func TestRunScansRoots(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "a", "file.txt"), "hello")

	code, stdout, stderr := run(t, root)

	assert.Equal(t, 0, code)
	assert.Empty(t, stderr)
	require.Equal(t, 1, strings.Count(stdout, "\n"))
	fields := strings.Split(strings.TrimSuffix(stdout, "\n"), "\t")
	require.Len(t, fields, 4)
	assert.Equal(t, filepath.Join(root, "a", "file.txt"), fields[0])
	assert.Equal(t, "5", fields[1])
}

func TestRunFailedRoot(t *testing.T) {
	good := t.TempDir()
	mustWrite(t, filepath.Join(good, "kept"), "x")
	missing := filepath.Join(t.TempDir(), "nope")

	code, stdout, stderr := run(t, missing, good)

	assert.Equal(t, 1, code)
	assert.Contains(t, stdout, filepath.Join(good, "kept")+"\t1\t")
	assert.Equal(t, "makofind: "+missing+": encountered an error\n", stderr)
}

func TestRunSummary(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "one"), "1")
	mustWrite(t, filepath.Join(root, "two"), "22")

	code, stdout, stderr := run(t, "--summary", root)

	assert.Equal(t, 0, code)
	assert.Equal(t, 2, strings.Count(stdout, "\n"), "summary must not touch stdout")
	assert.Contains(t, stderr, root)
	assert.Contains(t, stderr, "TOTAL (1 ROOTS)")
	assert.Contains(t, stderr, "LOGICAL BLOCKS")
}

func TestRunSummaryNoHeader(t *testing.T) {
	root := t.TempDir()

	code, _, stderr := run(t, "--summary", "--no-header", root)

	assert.Equal(t, 0, code)
	assert.NotContains(t, stderr, "LOGICAL BLOCKS")
	assert.Contains(t, stderr, "TOTAL (1 ROOTS)")
}

func TestRunVerbose(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "f"), "f")

	code, stdout, stderr := run(t, "-v", "--max-open", "1", root)

	assert.Equal(t, 0, code)
	assert.Equal(t, 1, strings.Count(stdout, "\n"))
	assert.Contains(t, stderr, "pass started")
	assert.Contains(t, stderr, "pass complete")
}

func TestRunRootAfterTerminator(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "-dash", "inside"), "i")
	t.Chdir(dir)

	code, stdout, stderr := run(t, "--", "-dash")

	assert.Equal(t, 0, code)
	assert.Empty(t, stderr)
	assert.True(t, strings.HasPrefix(stdout, "-dash/inside\t1\t"), stdout)
}

func TestRunHelp(t *testing.T) {
	code, stdout, _ := run(t, "--help")

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "without following symbolic links")
	assert.Contains(t, stdout, "--max-open")
}

func TestFlagDefaultsResetBetweenRuns(t *testing.T) {
	run(t, "--max-open", "3", "--summary", t.TempDir())
	newRootCmd("makofind", &bytes.Buffer{}, &bytes.Buffer{}, new(int))

	assert.Equal(t, 10, maxOpen)
	assert.False(t, summary)
}
