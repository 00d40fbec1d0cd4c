//go:build linux

package fsutil

import (
	"io/fs"
	"syscall"
)

// FileTimes returns (created, modified) as unix seconds. Linux reports the
// inode change time as the creation time.
func FileTimes(fi fs.FileInfo) (int64, int64) {
	mod := fi.ModTime().Unix()
	if st, ok := fi.Sys().(*syscall.Stat_t); ok {
		return int64(st.Ctim.Sec), mod
	}
	return mod, mod
}
