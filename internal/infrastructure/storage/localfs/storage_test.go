package localfs

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestStore(t *testing.T) (*Store, string, string, string) {
	t.Helper()
	root := t.TempDir()
	inputDir := filepath.Join(root, "markdown")
	enhancedDir := filepath.Join(root, "enhanced")
	rawDir := filepath.Join(root, "responses")
	if err := os.MkdirAll(inputDir, 0o755); err != nil {
		t.Fatalf("mkdir input: %v", err)
	}
	store, err := NewStore(inputDir, enhancedDir, rawDir)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	return store, inputDir, enhancedDir, rawDir
}

func TestListDocumentsSortedByKey(t *testing.T) {
	store, inputDir, _, _ := newTestStore(t)

	for name, content := range map[string]string{
		"2002.md":   "# Andra skolan",
		"1001.md":   "# Första skolan",
		"notes.txt": "ignored",
	} {
		if err := os.WriteFile(filepath.Join(inputDir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	docs, err := store.ListDocuments(context.Background())
	if err != nil {
		t.Fatalf("ListDocuments() error = %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
	if docs[0].Key != "1001" || docs[1].Key != "2002" {
		t.Fatalf("expected sorted keys, got %q, %q", docs[0].Key, docs[1].Key)
	}
	if docs[0].SourceContent != "# Första skolan" {
		t.Fatalf("unexpected content: %q", docs[0].SourceContent)
	}
}

func TestSaveSuccessEnablesHasSuccess(t *testing.T) {
	store, _, enhancedDir, _ := newTestStore(t)

	if store.HasSuccess("1001") {
		t.Fatalf("HasSuccess must be false before anything is written")
	}
	if err := store.SaveSuccess(context.Background(), "1001", "Beskrivning."); err != nil {
		t.Fatalf("SaveSuccess() error = %v", err)
	}
	if !store.HasSuccess("1001") {
		t.Fatalf("HasSuccess must report the saved artifact")
	}

	data, err := os.ReadFile(filepath.Join(enhancedDir, "1001"+SuccessSuffix))
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	if string(data) != "Beskrivning." {
		t.Fatalf("unexpected artifact content: %q", data)
	}
}

func TestSaveRawResponseSuffixes(t *testing.T) {
	store, _, _, rawDir := newTestStore(t)
	ctx := context.Background()

	if err := store.SaveRawResponse(ctx, "1001", []byte(`{"ok":true}`), false); err != nil {
		t.Fatalf("SaveRawResponse(success) error = %v", err)
	}
	if err := store.SaveRawResponse(ctx, "2002", []byte(`{"error":"x"}`), true); err != nil {
		t.Fatalf("SaveRawResponse(failed) error = %v", err)
	}

	if _, err := os.Stat(filepath.Join(rawDir, "1001"+RawSuffix)); err != nil {
		t.Fatalf("expected success payload file: %v", err)
	}
	if _, err := os.Stat(filepath.Join(rawDir, "2002"+FailedSuffix)); err != nil {
		t.Fatalf("expected failed payload file: %v", err)
	}
}

func TestKeysCannotEscapeArtifactDir(t *testing.T) {
	store, _, enhancedDir, _ := newTestStore(t)

	if err := store.SaveSuccess(context.Background(), "../escape", "content"); err != nil {
		t.Fatalf("SaveSuccess() error = %v", err)
	}

	entries, err := os.ReadDir(enhancedDir)
	if err != nil {
		t.Fatalf("read enhanced dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected exactly one artifact inside the dir, got %d", len(entries))
	}
	if strings.Contains(entries[0].Name(), "..") {
		t.Fatalf("sanitized name still contains parent reference: %q", entries[0].Name())
	}
}

func TestAtomicWriteLeavesNoTempFiles(t *testing.T) {
	store, _, enhancedDir, _ := newTestStore(t)

	if err := store.SaveSuccess(context.Background(), "1001", "v1"); err != nil {
		t.Fatalf("SaveSuccess() error = %v", err)
	}
	if err := store.SaveSuccess(context.Background(), "1001", "v2"); err != nil {
		t.Fatalf("overwrite error = %v", err)
	}

	entries, err := os.ReadDir(enhancedDir)
	if err != nil {
		t.Fatalf("read enhanced dir: %v", err)
	}
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".tmp-") {
			t.Fatalf("temp file left behind: %q", entry.Name())
		}
	}
	data, _ := os.ReadFile(filepath.Join(enhancedDir, "1001"+SuccessSuffix))
	if string(data) != "v2" {
		t.Fatalf("expected overwrite to win, got %q", data)
	}
}

func TestDirWriterWritesSourceDocuments(t *testing.T) {
	dir := t.TempDir()
	writer, err := NewDirWriter(filepath.Join(dir, "markdown"))
	if err != nil {
		t.Fatalf("NewDirWriter() error = %v", err)
	}

	if err := writer.Write("1001", "# Skola"); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "markdown", "1001.md"))
	if err != nil {
		t.Fatalf("read generated file: %v", err)
	}
	if string(data) != "# Skola" {
		t.Fatalf("unexpected content: %q", data)
	}
}
