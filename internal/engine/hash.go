package engine

import (
	"encoding/hex"
	"io"

	"github.com/zeebo/blake3"

	"github.com/bamsammich/wrench/internal/fsys"
)

// HashFile computes the BLAKE3 hash of the file at path, returning the hex-encoded digest.
func HashFile(fs fsys.FS, path string) (string, error) {
	sum, err := hashFile(fs, path)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(sum), nil
}

func hashFile(fs fsys.FS, path string) ([]byte, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	bufp := bufPool.Get().(*[]byte)
	defer bufPool.Put(bufp)

	h := blake3.New()
	if _, err := io.CopyBuffer(h, struct{ io.Reader }{f}, *bufp); err != nil {
		return nil, fsys.Wrap("hash", path, err)
	}
	return h.Sum(nil), nil
}
