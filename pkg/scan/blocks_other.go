//go:build !unix

package scan

import "os"

// rawBlocks estimates allocation from the size where the platform does not
// expose a block count.
func rawBlocks(info os.FileInfo) int64 {
	return sizeBlocks(info.Size())
}
