//go:build linux

package scanner

import (
	"os"

	"golang.org/x/sys/unix"
)

// statCtime returns the inode change time in Unix seconds. Falls back to
// mtime when the stat call fails (file vanished between walk and stat).
func statCtime(path string, info os.FileInfo) int64 {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return info.ModTime().Unix()
	}
	return st.Ctim.Sec
}
