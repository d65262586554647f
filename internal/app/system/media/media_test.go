package media

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func multipartRequest(t *testing.T, field, filename string, content []byte) (multipart.File, *multipart.FileHeader) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write part: %v", err)
	}
	w.Close()

	req := httptest.NewRequest("POST", "/upload", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	file, header, err := req.FormFile(field)
	if err != nil {
		t.Fatalf("FormFile: %v", err)
	}
	return file, header
}

func TestSaveTemp_WritesUniqueFile(t *testing.T) {
	dir := t.TempDir()
	file, header := multipartRequest(t, "thumbnail", "cover.png", []byte("png-bytes"))
	defer file.Close()

	path, err := SaveTemp(file, header, dir)
	if err != nil {
		t.Fatalf("SaveTemp failed: %v", err)
	}

	if filepath.Ext(path) != ".png" {
		t.Errorf("expected extension preserved, got %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read temp file: %v", err)
	}
	if string(data) != "png-bytes" {
		t.Errorf("temp file content mismatch: %q", data)
	}
}

func TestSaveTemp_DistinctNames(t *testing.T) {
	dir := t.TempDir()

	f1, h1 := multipartRequest(t, "video", "lecture.mp4", []byte("a"))
	defer f1.Close()
	f2, h2 := multipartRequest(t, "video", "lecture.mp4", []byte("b"))
	defer f2.Close()

	p1, err := SaveTemp(f1, h1, dir)
	if err != nil {
		t.Fatalf("SaveTemp 1: %v", err)
	}
	p2, err := SaveTemp(f2, h2, dir)
	if err != nil {
		t.Fatalf("SaveTemp 2: %v", err)
	}
	if p1 == p2 {
		t.Error("expected distinct temp paths for same filename")
	}
}

func TestRemove_MissingFileIsQuiet(t *testing.T) {
	// Should not panic or log-fail on an already-gone path.
	Remove(filepath.Join(t.TempDir(), "nope.mp4"), zap.NewNop())
	Remove("", nil)
}

func TestCloudinary_RequiresCredentials(t *testing.T) {
	if _, err := NewCloudinary("", "key", "secret", zap.NewNop()); err == nil {
		t.Error("expected error for missing cloud name")
	}
	if _, err := NewCloudinary("cloud", "", "secret", zap.NewNop()); err == nil {
		t.Error("expected error for missing API key")
	}
	if _, err := NewCloudinary("cloud", "key", "", zap.NewNop()); err == nil {
		t.Error("expected error for missing API secret")
	}
}

func TestCloudinary_Upload_MissingFile(t *testing.T) {
	c, err := NewCloudinary("cloud", "key", "secret", zap.NewNop())
	if err != nil {
		t.Fatalf("NewCloudinary: %v", err)
	}

	_, err = c.Upload(t.Context(), filepath.Join(t.TempDir(), "missing.png"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestCloudinary_Upload_RemovesTempOnFailure(t *testing.T) {
	c, err := NewCloudinary("cloud", "key", "secret", zap.NewNop())
	if err != nil {
		t.Fatalf("NewCloudinary: %v", err)
	}

	// Bogus credentials: the upload will fail, but the temp file must
	// still be gone afterwards.
	path := filepath.Join(t.TempDir(), "photo.png")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write temp: %v", err)
	}

	if _, err := c.Upload(t.Context(), path); err == nil {
		t.Skip("unexpected upload success with fake credentials")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expected temp file to be removed after failed upload")
	}
}
