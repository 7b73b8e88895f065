package localfs

import (
	"context"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/kirillkom/weekly-issue/internal/core/domain"
)

func TestSaveAndOpen(t *testing.T) {
	storage, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := context.Background()
	if err := storage.Save(ctx, "weekly-issues-2026-W42.xlsx", strings.NewReader("v1")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := storage.Save(ctx, "weekly-issues-2026-W42.xlsx", strings.NewReader("v2")); err != nil {
		t.Fatalf("Save() overwrite error = %v", err)
	}

	rc, err := storage.Open(ctx, "weekly-issues-2026-W42.xlsx")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer rc.Close()
	body, _ := io.ReadAll(rc)
	if string(body) != "v2" {
		t.Fatalf("expected overwritten content, got %q", body)
	}

	entries, err := os.ReadDir(storage.basePath)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected temp files to be cleaned up, got %d entries", len(entries))
	}
}

func TestRejectsUnsafeKeysAndReportsMissing(t *testing.T) {
	storage, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	for _, key := range []string{"", "../escape.xlsx", "nested/report.xlsx", ".hidden"} {
		if err := storage.Save(context.Background(), key, strings.NewReader("x")); !domain.IsKind(err, domain.ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput for %q, got %v", key, err)
		}
	}

	if _, err := storage.Open(context.Background(), "missing.xlsx"); !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
