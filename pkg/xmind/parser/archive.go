// Package parser reads xmind archives and xlsx outlines back into models.
package parser

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"

	"github.com/ukaji3/xmind-go/pkg/xmind/models"
)

// Layout names the archive parts the parser decodes.
type Layout struct {
	Content  string
	Manifest string
	Metadata string
}

// DefaultLayout returns the standard part locations.
func DefaultLayout() Layout {
	return Layout{
		Content:  "content.xml",
		Manifest: "META-INF/manifest.xml",
		Metadata: "meta.xml",
	}
}

// ReadArchive summarizes the xmind archive at path.
func ReadArchive(path string, layout Layout) (*models.WorkbookSummary, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return Summarize(&r.Reader, filepath.Base(path), layout)
}

// Summarize lists the entries of r and decodes its content, manifest and
// metadata parts. Missing parts are left out of the summary.
func Summarize(r *zip.Reader, bookName string, layout Layout) (*models.WorkbookSummary, error) {
	summary := &models.WorkbookSummary{BookName: bookName}
	for _, f := range r.File {
		summary.Entries = append(summary.Entries, models.ArchiveEntry{
			Name:   f.Name,
			Dir:    f.FileInfo().IsDir(),
			Method: methodName(f.Method),
			Size:   f.UncompressedSize64,
		})
	}

	contentXML, err := readZipFile(r, layout.Content)
	if err != nil {
		return nil, err
	}
	if contentXML != nil {
		sheets, err := ParseContent(contentXML)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", layout.Content, err)
		}
		summary.Sheets = sheets
	}

	manifestXML, err := readZipFile(r, layout.Manifest)
	if err != nil {
		return nil, err
	}
	if manifestXML != nil {
		var m models.Manifest
		if err := xml.Unmarshal(manifestXML, &m); err != nil {
			return nil, fmt.Errorf("parse %s: %w", layout.Manifest, err)
		}
		summary.Manifest = &m
	}

	metaXML, err := readZipFile(r, layout.Metadata)
	if err != nil {
		return nil, err
	}
	if metaXML != nil {
		var m models.Meta
		if err := xml.Unmarshal(metaXML, &m); err != nil {
			return nil, fmt.Errorf("parse %s: %w", layout.Metadata, err)
		}
		summary.Meta = &m
	}

	return summary, nil
}

func methodName(method uint16) string {
	switch method {
	case zip.Deflate:
		return "deflate"
	case zip.Store:
		return "store"
	}
	return fmt.Sprintf("method-%d", method)
}

// readZipFile returns the content of the named entry, or nil if there is none.
func readZipFile(r *zip.Reader, name string) ([]byte, error) {
	for _, f := range r.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	return nil, nil
}
