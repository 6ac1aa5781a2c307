// Package cmd provides the Cobra CLI command structure for makofind.
//
// The root command takes one or more directory roots, scans them and writes
// one line per regular file to stdout. The exit code is the only result a
// calling script gets: 0 when every root was scanned, 1 on a usage error or
// when at least one root failed.
package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/otuschhoff/makofind"
	"github.com/otuschhoff/makofind/pkg/logging"
	"github.com/otuschhoff/makofind/pkg/output"
	"github.com/otuschhoff/makofind/pkg/scan"
	"github.com/spf13/cobra"
)

var (
	// Traversal options
	maxOpen int

	// Reporting options
	summary  bool
	noHeader bool
	verbose  bool
)

// errUsage is returned by argument validation when no root was given.
var errUsage = errors.New("no directory given")

// newRootCmd builds the root command. The exit status of a completed scan is
// stored in exitCode.
func newRootCmd(prog string, stdout, stderr io.Writer, exitCode *int) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "makofind [flags] dir1 [dir2 ... dirN]",
		Short: "Report size and block usage of every file under directory trees",
		Long: `makofind walks each directory tree without following symbolic links and
prints one tab-separated line per regular file:

  path <TAB> size in bytes <TAB> mtime (epoch seconds) <TAB> 1K blocks used

Examples:
  makofind /manta
  makofind --summary /manta/stor /manta/public
  makofind --max-open 32 -- -odd-root-name`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 {
				return errUsage
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			*exitCode = runScan(prog, args, stdout, stderr)
			return nil
		},
	}

	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	// Traversal flags
	rootCmd.Flags().IntVar(&maxOpen, "max-open", makofind.DefaultMaxOpen,
		"Maximum number of directory handles held open per tree")

	// Reporting flags
	rootCmd.Flags().BoolVar(&summary, "summary", false,
		"Print a per-root totals table to stderr after scanning")
	rootCmd.Flags().BoolVar(&noHeader, "no-header", false,
		"Hide the summary table header")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false,
		"Log traversal progress to stderr")

	return rootCmd
}

// runScan scans roots and returns the process exit status.
func runScan(prog string, roots []string, stdout, stderr io.Writer) int {
	logger := logging.New(stderr, verbose)

	scanner := scan.NewTreeScanner(prog, roots, maxOpen)
	scanner.Stdout = stdout
	scanner.Stderr = stderr
	scanner.Logger = logger

	report := scanner.Scan()

	if summary {
		formatter := output.NewFormatter(logging.IsTerminal(stderr), noHeader)
		fmt.Fprint(stderr, formatter.Format(report))
	}

	return report.ExitCode()
}

// Run parses args, scans the given roots and returns the process exit status.
// prog is the program name used in usage and diagnostic messages.
func Run(prog string, args []string, stdout, stderr io.Writer) int {
	var exitCode int
	rootCmd := newRootCmd(prog, stdout, stderr, &exitCode)
	if args == nil {
		// Cobra falls back to os.Args on a nil slice.
		args = []string{}
	}
	rootCmd.SetArgs(args)

	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(stderr, "%s: %v\n", prog, err)
		}
		fmt.Fprintf(stderr, "usage: %s dir1 dir2 ... dirN\n", prog)
		return 1
	}

	return exitCode
}

// Execute runs the root command with the process arguments.
func Execute() int {
	return Run(os.Args[0], os.Args[1:], os.Stdout, os.Stderr)
}
