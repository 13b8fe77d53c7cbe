package primitives

import (
	"os"
	"path/filepath"

	"github.com/OneOfOne/xxhash"
)

// Filepath is a type-safe wrapper around the paths of database files.
type Filepath string

// Hash derives the stable TableID for this path using 64-bit xxhash of the
// cleaned path. Two distinct paths may collide with probability ~2^-64;
// callers treat the ID as stable, not as proof of identity.
func (f Filepath) Hash() TableID {
	h := xxhash.New64()
	_, _ = h.Write([]byte(f.Clean()))
	return TableID(h.Sum64())
}

// Clean returns the lexically shortest equivalent path.
func (f Filepath) Clean() Filepath {
	return Filepath(filepath.Clean(string(f)))
}

// Dir returns the directory portion of the path.
func (f Filepath) Dir() string {
	return filepath.Dir(string(f))
}

// Base returns the last element of the path.
func (f Filepath) Base() string {
	return filepath.Base(string(f))
}

// Join appends path elements and returns the combined Filepath.
func (f Filepath) Join(elem ...string) Filepath {
	parts := append([]string{string(f)}, elem...)
	return Filepath(filepath.Join(parts...))
}

// IsEmpty reports whether the path is the empty string.
func (f Filepath) IsEmpty() bool {
	return string(f) == ""
}

// Exists reports whether a file exists at this path.
func (f Filepath) Exists() bool {
	_, err := os.Stat(string(f))
	return err == nil
}

func (f Filepath) String() string {
	return string(f)
}
