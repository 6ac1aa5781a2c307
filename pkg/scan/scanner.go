// Package scan reports regular files under one or more directory trees.
//
// A TreeScanner walks each root with the makofind traversal and classifies
// every visited object: regular files become one tab-separated report line on
// stdout, unreadable directories and failed stats become diagnostics on
// stderr, and an object of unknown type aborts the walk of that root. The
// outcome of every root is recorded in a Report.
package scan

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"syscall"

	"github.com/otuschhoff/makofind"
)

// Stats holds the outcome of one root's pass.
type Stats struct {
	Root          string // Root path as given
	Files         int64  // Report lines written
	Bytes         int64  // Sum of reported sizes
	LogicalBlocks int64  // Sum of reported logical blocks
	Unreadable    int64  // Directories that could not be opened
	StatFailures  int64  // Objects whose lstat failed
	Drains        int    // Directories drained to stay within the handle bound
	Err           error  // Cause of a failed pass, nil on success
}

// Failed reports whether the pass for this root failed.
func (s *Stats) Failed() bool {
	return s.Err != nil
}

// Report holds the outcome of a whole scan, one Stats per root in argument order.
type Report struct {
	Roots    []*Stats
	Failures int
}

// ExitCode returns the process exit status for the scan.
func (r *Report) ExitCode() int {
	if r.Failures != 0 {
		return 1
	}
	return 0
}

// TreeScanner walks roots in order and reports regular files found under them.
type TreeScanner struct {
	Prog    string       // Program name used in per-root diagnostics
	Roots   []string     // Roots to walk, in order
	MaxOpen int          // Bound on open directory handles per pass
	Stdout  io.Writer    // Report lines
	Stderr  io.Writer    // Diagnostics
	Logger  *slog.Logger // Operational logging
}

// NewTreeScanner creates a TreeScanner writing to the process's standard streams.
func NewTreeScanner(prog string, roots []string, maxOpen int) *TreeScanner {
	return &TreeScanner{
		Prog:    prog,
		Roots:   roots,
		MaxOpen: maxOpen,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Logger:  slog.New(slog.DiscardHandler),
	}
}

// Scan walks every root and returns the aggregated Report.
//
// A failed root gets one "<prog>: <root>: encountered an error" line on
// stderr and counts as one failure; the remaining roots are still walked.
// Report lines of a root are flushed before the next root starts.
func (ts *TreeScanner) Scan() *Report {
	report := &Report{}
	out := bufio.NewWriter(ts.Stdout)

	for _, root := range ts.Roots {
		stats := ts.scanRoot(out, root)
		report.Roots = append(report.Roots, stats)

		if stats.Failed() {
			fmt.Fprintf(ts.Stderr, "%s: %s: encountered an error\n", ts.Prog, root)
			report.Failures++
			ts.Logger.Debug("pass failed", "root", root, "error", stats.Err)
			continue
		}
		ts.Logger.Debug("pass complete", "root", root, "files", stats.Files,
			"bytes", stats.Bytes, "logical_blocks", stats.LogicalBlocks)
	}

	return report
}

// scanRoot performs one pass over root.
func (ts *TreeScanner) scanRoot(out *bufio.Writer, root string) *Stats {
	stats := &Stats{Root: root}
	c := &classifier{out: out, errOut: ts.Stderr, stats: stats}

	ts.Logger.Debug("pass started", "root", root, "max_open", ts.MaxOpen)
	walker := makofind.NewWalker(root, ts.MaxOpen, c.visit).WithLogger(ts.Logger)
	err := walker.Run()
	stats.Drains = walker.Drains()

	if flushErr := out.Flush(); flushErr != nil && err == nil {
		err = fmt.Errorf("write report for '%s': %w", root, flushErr)
	}
	stats.Err = err
	return stats
}

// classifier turns visited entries into report lines and diagnostics.
type classifier struct {
	out    io.Writer
	errOut io.Writer
	stats  *Stats
}

func (c *classifier) visit(e *makofind.Entry) makofind.Action {
	switch e.Kind {
	case makofind.KindFile:
		size := e.Info.Size()
		logical := LogicalBlocks(rawBlocks(e.Info))
		fmt.Fprintf(c.out, "%s\t%d\t%d\t%d\n", e.Path, size, e.Info.ModTime().Unix(), logical)
		c.stats.Files++
		c.stats.Bytes += size
		c.stats.LogicalBlocks += logical

	// Directories and links are not reported.
	case makofind.KindDir, makofind.KindSymlink:

	case makofind.KindDirNoRead:
		fmt.Fprintf(c.errOut, "%s: unable to read\n", e.Name())
		c.stats.Unreadable++

	case makofind.KindStatFailed:
		fmt.Fprintf(c.errOut, "%s: stat failed: %s\n", e.Name(), errorText(e.Err))
		c.stats.StatFailures++

	default:
		// No trailing newline: existing consumers of this stream expect the
		// line exactly as the scanner has always written it. Likely a bug.
		fmt.Fprintf(c.errOut, "%s: unknown type (%d)", e.Name(), int(e.Kind))
		return makofind.Abort
	}

	return makofind.Continue
}

// errorText returns the system error description carried by err.
func errorText(err error) string {
	if err == nil {
		return "unknown error"
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno.Error()
	}
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return pathErr.Err.Error()
	}
	return err.Error()
}
