//go:build !linux && !darwin

package scanner

import "os"

// statCtime falls back to mtime on platforms without a reliable change time.
func statCtime(_ string, info os.FileInfo) int64 {
	return info.ModTime().Unix()
}
