//go:build !unix

package fsys

func errnoKind(error) (error, bool) { return nil, false }
