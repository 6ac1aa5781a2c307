//go:build unix

package makofind

import (
	"os"

	"golang.org/x/sys/unix"
)

// openDir opens path for reading without following a symbolic link, so a
// directory replaced by a link between lstat and open is reported as
// unreadable instead of being entered.
func openDir(path string) (*os.File, error) {
	for {
		fd, err := unix.Open(path, unix.O_RDONLY|unix.O_DIRECTORY|unix.O_NOFOLLOW|unix.O_CLOEXEC, 0)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return nil, &os.PathError{Op: "open", Path: path, Err: err}
		}
		return os.NewFile(uintptr(fd), path), nil
	}
}
