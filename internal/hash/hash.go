// Package hash computes archive checksums.
//
// The download manager identifies an archive by the MD5 of its contents, the
// same digest the Nexus API accepts for file lookups. Archives registered by
// an import carry it so they can be matched to their remote page later.
package hash

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// Hasher computes the checksum of a file.
type Hasher interface {
	// HashFile returns the hex-encoded checksum of the file at path.
	HashFile(path string) (string, error)
}

// MD5Hasher implements Hasher using MD5.
type MD5Hasher struct{}

// NewMD5Hasher creates a new MD5Hasher.
func NewMD5Hasher() *MD5Hasher {
	return &MD5Hasher{}
}

// HashFile computes the MD5 of the file at path.
func (h *MD5Hasher) HashFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	hasher := md5.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// FakeHasher implements Hasher with fixed checksums for testing.
type FakeHasher struct {
	hashes map[string]string
	errs   map[string]error
}

// NewFakeHasher creates a new FakeHasher.
func NewFakeHasher() *FakeHasher {
	return &FakeHasher{
		hashes: make(map[string]string),
		errs:   make(map[string]error),
	}
}

// SetHash sets the checksum returned for path.
func (h *FakeHasher) SetHash(path, hash string) {
	h.hashes[path] = hash
}

// SetError makes HashFile fail for path.
func (h *FakeHasher) SetError(path string, err error) {
	h.errs[path] = err
}

// HashFile returns the checksum set for path, or "fakehash".
func (h *FakeHasher) HashFile(path string) (string, error) {
	if err, ok := h.errs[path]; ok {
		return "", err
	}
	if hash, ok := h.hashes[path]; ok {
		return hash, nil
	}
	return "fakehash", nil
}
