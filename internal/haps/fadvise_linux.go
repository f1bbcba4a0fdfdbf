//go:build linux

package haps

import (
	"os"

	"golang.org/x/sys/unix"
)

// adviseSequential asks the kernel for aggressive read-ahead. Best effort.
func adviseSequential(f *os.File) {
	_ = unix.Fadvise(int(f.Fd()), 0, 0, unix.FADV_SEQUENTIAL)
}
