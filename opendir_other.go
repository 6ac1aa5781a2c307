//go:build !unix

package makofind

import "os"

func openDir(path string) (*os.File, error) {
	return os.Open(path)
}
