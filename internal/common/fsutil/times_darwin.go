//go:build darwin

package fsutil

import (
	"io/fs"
	"syscall"
)

// FileTimes returns (created, modified) as unix seconds.
func FileTimes(fi fs.FileInfo) (int64, int64) {
	mod := fi.ModTime().Unix()
	if st, ok := fi.Sys().(*syscall.Stat_t); ok {
		return int64(st.Birthtimespec.Sec), mod
	}
	return mod, mod
}
