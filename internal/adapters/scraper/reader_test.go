package scraper

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"hotel_advisor/internal/domain"
)

func writeExport(t *testing.T, root, folder, body string) {
	t.Helper()
	dir := filepath.Join(root, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ReviewsFile), []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestDir_LatestPicksNewestFolder(t *testing.T) {
	root := t.TempDir()
	writeExport(t, root, "asri-villas_2024-01-01", "rating,full_review\n8,old\n")
	writeExport(t, root, "asri-villas_2024-11-09", "rating,full_review,review_post_date\n9,\"Great, quiet\",2024-11-09\n7,Fine,2024-10-06\n")
	writeExport(t, root, "asri-villas-bis_2025-01-01", "rating,full_review\n1,other hotel\n")

	d := NewDir(root)
	exp, err := d.Latest(context.Background(), "asri-villas")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if exp.Folder != "asri-villas_2024-11-09" || len(exp.Rows) != 2 {
		t.Fatalf("unexpected export: %+v", exp)
	}
	if exp.Rows[0]["full_review"] != "Great, quiet" || exp.Rows[0]["review_post_date"] != "2024-11-09" {
		t.Fatalf("quoted field not parsed: %+v", exp.Rows[0])
	}
}

func TestDir_LatestSkipsFolderWithoutCSV(t *testing.T) {
	root := t.TempDir()
	writeExport(t, root, "soko_2024-01-01", "rating,full_review\n8,ok\n")
	if err := os.MkdirAll(filepath.Join(root, "soko_2024-12-01"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	exp, err := NewDir(root).Latest(context.Background(), "soko")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if exp.Folder != "soko_2024-01-01" {
		t.Fatalf("expected fallback to older export, got %s", exp.Folder)
	}
}

func TestDir_LatestNotFound(t *testing.T) {
	_, err := NewDir(t.TempDir()).Latest(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDir_Hotels(t *testing.T) {
	root := t.TempDir()
	writeExport(t, root, "soko_2024-01-01", "rating\n8\n")
	writeExport(t, root, "soko_2024-02-01", "rating\n8\n")
	writeExport(t, root, "lumbung-bukit_2024-02-01", "rating\n8\n")
	if err := os.WriteFile(filepath.Join(root, "notes_2024.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := NewDir(root).Hotels(context.Background())
	if err != nil {
		t.Fatalf("hotels: %v", err)
	}
	if strings.Join(got, ",") != "lumbung-bukit,soko" {
		t.Fatalf("unexpected hotels: %v", got)
	}
}

func TestParseCSV_BOMAndBlankRows(t *testing.T) {
	rows, err := parseCSV(strings.NewReader("\ufeffrating, full_review\n9,Lovely\n,\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(rows) != 1 || rows[0]["rating"] != "9" || rows[0]["full_review"] != "Lovely" {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}
