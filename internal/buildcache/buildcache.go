// Package buildcache gives every emitter an idempotent-write primitive:
// compute a content digest for generated text, skip the write if the file
// on disk already has that digest, and track a move-to-front history of
// change IDs so `nomnomgen compile` can report what changed between runs.
// Ported from the teacher's inventory digest/change-ID tracking, applied to
// generated source files instead of applied Kubernetes manifests.
package buildcache

import (
	"crypto/sha1" //nolint:gosec // non-cryptographic change fingerprinting only
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
)

// Digest computes a deterministic "sha256:<hex>" digest over file content.
func Digest(content []byte) string {
	sum := sha256.Sum256(content)
	return fmt.Sprintf("sha256:%x", sum)
}

// ChangeID derives a short change fingerprint from a file path and its
// content digest, analogous to the teacher's module+values+digest change ID.
func ChangeID(path, digest string) string {
	h := sha1.New() //nolint:gosec // not used for security
	h.Write([]byte(path))
	h.Write([]byte(digest))
	sum := h.Sum(nil)
	return fmt.Sprintf("change-sha1-%08x", sum[:4])
}

// WriteResult reports what WriteIfChanged did for one file.
type WriteResult struct {
	Path      string
	Digest    string
	ChangeID  string
	Written   bool // false when content was unchanged and the write was skipped
}

// WriteIfChanged writes content to path only if the file doesn't exist or
// its current content digest differs. This keeps repeated `nomnomgen
// compile` runs from touching mtimes of files whose generated content is
// byte-identical, matching the emission determinism testable property.
func WriteIfChanged(path string, content []byte) (WriteResult, error) {
	digest := Digest(content)
	res := WriteResult{Path: path, Digest: digest, ChangeID: ChangeID(path, digest)}

	if existing, err := os.ReadFile(path); err == nil {
		if Digest(existing) == digest {
			return res, nil
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return res, fmt.Errorf("creating directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return res, fmt.Errorf("writing %s: %w", path, err)
	}

	res.Written = true
	return res, nil
}

// History is a move-to-front list of change IDs, bounded to maxEntries, the
// same pruning rule the teacher's inventory secret uses for apply history.
type History struct {
	Entries    []string
	maxEntries int
}

// NewHistory constructs a History bounded to maxEntries (0 means unbounded).
func NewHistory(maxEntries int) *History {
	return &History{maxEntries: maxEntries}
}

// Record moves changeID to the front of the history, pruning the tail if
// the history now exceeds maxEntries.
func (h *History) Record(changeID string) {
	filtered := make([]string, 0, len(h.Entries)+1)
	filtered = append(filtered, changeID)
	for _, id := range h.Entries {
		if id != changeID {
			filtered = append(filtered, id)
		}
	}
	if h.maxEntries > 0 && len(filtered) > h.maxEntries {
		filtered = filtered[:h.maxEntries]
	}
	h.Entries = filtered
}
