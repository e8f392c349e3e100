// Package models defines data structures for xmind archive parts and their read-back summaries.
package models

// WorkbookSummary represents an xmind archive read back from disk.
type WorkbookSummary struct {
	// BookName is the archive file name (no path).
	BookName string `json:"book_name"`
	// Entries lists the archive entries in archive order.
	Entries []ArchiveEntry `json:"entries"`
	// Sheets contains the sheets found in content.xml, in document order.
	Sheets []SheetOutline `json:"sheets"`
	// Manifest is the decoded META-INF/manifest.xml, when present.
	Manifest *Manifest `json:"manifest,omitempty"`
	// Meta is the decoded meta.xml, when present.
	Meta *Meta `json:"meta,omitempty"`
}

// ArchiveEntry represents a single zip entry.
type ArchiveEntry struct {
	// Name is the entry path inside the archive.
	Name string `json:"name"`
	// Dir is true for directory entries.
	Dir bool `json:"dir,omitempty"`
	// Method is the compression method name ("deflate" or "store").
	Method string `json:"method"`
	// Size is the uncompressed size in bytes.
	Size uint64 `json:"size"`
}
