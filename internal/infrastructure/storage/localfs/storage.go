// Package localfs persists enhancement artifacts on the local filesystem.
// Success documents and raw provider payloads live in separate
// directories so an operator can tell "done" from "needs attention" by
// listing alone; the success naming doubles as the idempotent-skip
// predicate for re-runs.
package localfs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mlindqvist/school-pipeline/internal/core/domain"
)

const (
	SuccessSuffix = "_ai_description.md"
	RawSuffix     = "_response.json"
	FailedSuffix  = "_FAILED_response.json"
	sourceSuffix  = ".md"
)

type Store struct {
	inputDir    string
	enhancedDir string
	rawDir      string
}

func NewStore(inputDir, enhancedDir, rawDir string) (*Store, error) {
	for _, dir := range []string{enhancedDir, rawDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create artifact dir %s: %w", dir, err)
		}
	}
	return &Store{inputDir: inputDir, enhancedDir: enhancedDir, rawDir: rawDir}, nil
}

// ListDocuments discovers the rendered source documents, sorted by key.
// The key is the filename stem, which is the school code by construction.
func (s *Store) ListDocuments(_ context.Context) ([]domain.Document, error) {
	entries, err := os.ReadDir(s.inputDir)
	if err != nil {
		return nil, fmt.Errorf("read input dir %s: %w", s.inputDir, err)
	}

	docs := make([]domain.Document, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, sourceSuffix) {
			continue
		}
		content, err := os.ReadFile(filepath.Join(s.inputDir, name))
		if err != nil {
			return nil, fmt.Errorf("read source document %s: %w", name, err)
		}
		docs = append(docs, domain.Document{
			Key:           strings.TrimSuffix(name, sourceSuffix),
			SourceContent: string(content),
		})
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Key < docs[j].Key })
	return docs, nil
}

// HasSuccess reports whether a prior run already produced the enhanced
// artifact for this key.
func (s *Store) HasSuccess(key string) bool {
	_, err := os.Stat(s.successPath(key))
	return err == nil
}

func (s *Store) SaveSuccess(_ context.Context, key, content string) error {
	return writeFileAtomic(s.successPath(key), []byte(content))
}

// SaveRawResponse archives the provider payload; failed payloads get a
// distinct suffix so they never collide with successful ones.
func (s *Store) SaveRawResponse(_ context.Context, key string, raw []byte, failed bool) error {
	suffix := RawSuffix
	if failed {
		suffix = FailedSuffix
	}
	return writeFileAtomic(filepath.Join(s.rawDir, sanitizeKey(key)+suffix), raw)
}

func (s *Store) successPath(key string) string {
	return filepath.Join(s.enhancedDir, sanitizeKey(key)+SuccessSuffix)
}

// sanitizeKey keeps artifact names flat: path separators and parent
// references in a key must not escape the artifact directory.
func sanitizeKey(key string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", "..", "_")
	cleaned := replacer.Replace(key)
	if cleaned == "" {
		cleaned = "_"
	}
	return cleaned
}

// writeFileAtomic writes via a temp file and rename so a crash mid-write
// never leaves a partial artifact that a later skip check would trust.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// DirWriter writes generated source documents, one {key}.md per school.
type DirWriter struct {
	dir string
}

func NewDirWriter(dir string) (*DirWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir %s: %w", dir, err)
	}
	return &DirWriter{dir: dir}, nil
}

func (w *DirWriter) Write(key, content string) error {
	return writeFileAtomic(filepath.Join(w.dir, sanitizeKey(key)+sourceSuffix), []byte(content))
}
