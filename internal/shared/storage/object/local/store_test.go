package local

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"resume-matcher/internal/shared/storage/object"
)

func TestSaveOpenDelete(t *testing.T) {
	ctx := context.Background()
	store := New(t.TempDir())

	key, size, mime, err := store.Save(ctx, "doc-1", "cv.txt", strings.NewReader("Ana Souza\nPython"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.HasPrefix(key, "doc-1/") || !strings.HasSuffix(key, "_cv.txt") {
		t.Fatalf("unexpected key %q", key)
	}
	if size != int64(len("Ana Souza\nPython")) {
		t.Fatalf("unexpected size %d", size)
	}
	if !strings.HasPrefix(mime, "text/plain") {
		t.Fatalf("unexpected mime %q", mime)
	}

	rc, err := store.Open(ctx, key)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != "Ana Souza\nPython" {
		t.Fatalf("unexpected content %q", data)
	}

	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("second delete should be a no-op: %v", err)
	}
	if _, err := store.Open(ctx, key); !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestSaveWithKeyOverwrites(t *testing.T) {
	ctx := context.Background()
	store := New(t.TempDir())

	for _, body := range []string{"first", "second"} {
		if _, err := store.SaveWithKey(ctx, "doc-1/cv.extracted.txt", "text/plain", strings.NewReader(body)); err != nil {
			t.Fatalf("save with key: %v", err)
		}
	}
	rc, err := store.Open(ctx, "doc-1/cv.extracted.txt")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "second" {
		t.Fatalf("expected overwrite, got %q", data)
	}
}

func TestRejectsTraversal(t *testing.T) {
	store := New(t.TempDir())
	if _, err := store.Open(context.Background(), "../secret"); !errors.Is(err, object.ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
	if _, _, _, err := store.Save(context.Background(), "..", "cv.pdf", strings.NewReader("x")); err == nil {
		t.Fatalf("expected namespace traversal to be rejected")
	}
}
