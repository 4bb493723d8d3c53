//go:build linux

package diffsketch

import "golang.org/x/sys/unix"

// fadviseSequential hints to the kernel that the file will be read
// sequentially. Applied before mapping a sketch file for Load.
// Best-effort: errors are silently ignored.
func fadviseSequential(fd int, offset, length int64) {
	_ = unix.Fadvise(fd, offset, length, unix.FADV_SEQUENTIAL)
}
