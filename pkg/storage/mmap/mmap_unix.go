//go:build unix || darwin || linux
// +build unix darwin linux

package mmap

import (
	"golang.org/x/sys/unix"
)

// mmapFile maps a file descriptor read-write into memory. MAP_SHARED
// carries writes through to the underlying file.
func mmapFile(fd uintptr, size int) ([]byte, error) {
	return unix.Mmap(int(fd), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
}

// munmapFile releases the mapping.
func munmapFile(data []byte) error {
	return unix.Munmap(data)
}
