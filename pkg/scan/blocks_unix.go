//go:build unix

package scan

import (
	"os"
	"syscall"
)

// rawBlocks returns the number of 512-byte blocks allocated to the file.
func rawBlocks(info os.FileInfo) int64 {
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		return int64(st.Blocks)
	}
	return sizeBlocks(info.Size())
}
