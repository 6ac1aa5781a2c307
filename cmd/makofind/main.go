// Package main provides the entry point for the makofind CLI tool.
//
// makofind is the scanning stage of a storage-accounting pipeline: it walks
// directory trees and prints one line per regular file with its path, size,
// modification time and the number of 1K logical blocks it occupies.
//
// Usage:
//
//	makofind [flags] dir1 [dir2 ... dirN]
//
// Examples:
//
//	makofind /manta
//	makofind --summary /manta/stor /manta/public
package main

import (
	"os"

	"github.com/otuschhoff/makofind/cmd/makofind/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
