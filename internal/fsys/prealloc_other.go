//go:build !linux

package fsys

import "io"

// Preallocate is a no-op on non-Linux platforms (fallocate is Linux-only).
func Preallocate(_ io.Writer, _ int64) {}
