package project

import (
	"crypto/sha256"
	"sort"
)

// Digest - фиксированный 256 битный хеш (совместим с source.File.Hash)
type Digest [32]byte

// Combine строит агрегированный хеш: H( content || part1 || part2 ... ).
// Порядок parts должен быть детерминированным.
func Combine(content Digest, parts ...Digest) Digest {
	h := sha256.New()
	_, _ = h.Write(content[:])
	for _, d := range parts {
		_, _ = h.Write(d[:])
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// StringDigest hashes s.
func StringDigest(s string) Digest {
	return sha256.Sum256([]byte(s))
}

// SourcesDigest hashes a set of files by path and content hash, independent
// of the order they were given in.
func SourcesDigest(files map[string]Digest) Digest {
	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	parts := make([]Digest, 0, 2*len(paths))
	for _, p := range paths {
		parts = append(parts, StringDigest(p), files[p])
	}
	return Combine(Digest{}, parts...)
}
