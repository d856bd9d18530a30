package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestDetectSource(t *testing.T) {
	cases := map[string]SourceType{
		"https://example.com/article": SourceURL,
		"http://example.com/article":  SourceURL,
		"report.pdf":                  SourcePDF,
		"REPORT.PDF":                  SourcePDF,
		"notes.txt":                   SourceText,
	}
	for input, want := range cases {
		if got := DetectSource(input); got != want {
			t.Errorf("DetectSource(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestTextIngester_ReadsFileAndCountsWords(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "source.txt")
	body := "첫 줄 제목\n\n오늘은 이 주제에 대해 이야기해볼게요 여러 문단이 이어집니다."
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	ing := NewIngester(path)
	content, err := ing.Ingest(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if content.Title != "첫 줄 제목" {
		t.Errorf("Title = %q, want %q", content.Title, "첫 줄 제목")
	}
	if content.WordCount == 0 {
		t.Error("expected a non-zero word count")
	}
	if content.Source != "source.txt" {
		t.Errorf("Source = %q, want source.txt", content.Source)
	}
}

func TestTextIngester_RejectsEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.txt")
	if err := os.WriteFile(path, []byte(""), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	ing := &TextIngester{}
	if _, err := ing.Ingest(context.Background(), path); err == nil {
		t.Fatal("expected an error for an empty file")
	}
}

func TestTextIngester_RejectsMissingFile(t *testing.T) {
	ing := &TextIngester{}
	if _, err := ing.Ingest(context.Background(), "/nonexistent/path.txt"); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
