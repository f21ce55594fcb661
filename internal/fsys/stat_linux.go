//go:build linux

package fsys

import (
	"os"
	"syscall"
	"time"
)

// fillStatFields extracts platform-specific fields from syscall.Stat_t into an Info.
func fillStatFields(fi os.FileInfo, info *Info) {
	stat, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		return
	}
	info.UID = stat.Uid
	info.GID = stat.Gid
	info.AccTime = time.Unix(stat.Atim.Sec, stat.Atim.Nsec)
}
