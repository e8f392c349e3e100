package parser

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
)

func writeTestArchive(t *testing.T, path string, files map[string]string) {
	t.Helper()
	out, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create archive: %v", err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	for _, name := range []string{"content.xml", "META-INF/manifest.xml", "meta.xml", "attachments/", "attachments/a.png"} {
		data, ok := files[name]
		if !ok {
			continue
		}
		method := zip.Deflate
		if name[len(name)-1] == '/' {
			method = zip.Store
		}
		w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: method})
		if err != nil {
			t.Fatalf("Failed to add %s: %v", name, err)
		}
		if _, err := w.Write([]byte(data)); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Failed to close archive: %v", err)
	}
}

func TestReadArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.xmind")
	writeTestArchive(t, path, map[string]string{
		"content.xml": sampleContent,
		"META-INF/manifest.xml": `<manifest xmlns="urn:xmind:xmap:xmlns:manifest:1.0">` +
			`<file-entry full-path="content.xml" media-type="text/xml"/></manifest>`,
		"meta.xml": `<meta xmlns="urn:xmind:xmap:xmlns:meta:2.0" version="2.0">` +
			`<Create><Time>2026-01-02T03:04:05Z</Time></Create><Creator><Name>xmind-go</Name><Version>0.1.0</Version></Creator></meta>`,
		"attachments/":      "",
		"attachments/a.png": "png",
	})

	summary, err := ReadArchive(path, DefaultLayout())
	if err != nil {
		t.Fatalf("ReadArchive failed: %v", err)
	}

	if summary.BookName != "test.xmind" {
		t.Errorf("BookName = %q", summary.BookName)
	}
	if len(summary.Entries) != 5 {
		t.Fatalf("Expected 5 entries, got %d", len(summary.Entries))
	}
	if e := summary.Entries[0]; e.Name != "content.xml" || e.Method != "deflate" || e.Dir {
		t.Errorf("Unexpected first entry: %+v", e)
	}
	if e := summary.Entries[3]; !e.Dir || e.Method != "store" {
		t.Errorf("Unexpected directory entry: %+v", e)
	}
	if len(summary.Sheets) != 2 {
		t.Errorf("Expected 2 sheets, got %d", len(summary.Sheets))
	}
	if summary.Manifest == nil || len(summary.Manifest.Entries) != 1 || summary.Manifest.Entries[0].MediaType != "text/xml" {
		t.Errorf("Unexpected manifest: %+v", summary.Manifest)
	}
	if summary.Meta == nil || summary.Meta.Creator.Name != "xmind-go" || summary.Meta.Create.Time != "2026-01-02T03:04:05Z" {
		t.Errorf("Unexpected meta: %+v", summary.Meta)
	}
}

func TestReadArchiveMissingParts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bare.xmind")
	writeTestArchive(t, path, map[string]string{"attachments/a.png": "png"})

	summary, err := ReadArchive(path, DefaultLayout())
	if err != nil {
		t.Fatalf("ReadArchive failed: %v", err)
	}
	if summary.Sheets != nil || summary.Manifest != nil || summary.Meta != nil {
		t.Errorf("Expected no decoded parts, got %+v", summary)
	}
}

func TestReadArchiveNotAZip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.xmind")
	if err := os.WriteFile(path, []byte("not a zip"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadArchive(path, DefaultLayout()); err == nil {
		t.Error("Expected an error for a non-zip file")
	}
}
