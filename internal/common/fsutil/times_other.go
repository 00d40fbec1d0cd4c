//go:build !linux && !darwin

package fsutil

import "io/fs"

// FileTimes returns (created, modified) as unix seconds. Platforms without a
// portable creation time report the modification time for both.
func FileTimes(fi fs.FileInfo) (int64, int64) {
	mod := fi.ModTime().Unix()
	return mod, mod
}
