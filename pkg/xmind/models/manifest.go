package models

import "encoding/xml"

// NamespaceManifest is the default namespace of META-INF/manifest.xml.
const NamespaceManifest = "urn:xmind:xmap:xmlns:manifest:1.0"

// Manifest lists the parts packaged in an archive.
type Manifest struct {
	XMLName xml.Name    `xml:"urn:xmind:xmap:xmlns:manifest:1.0 manifest" json:"-"`
	Entries []FileEntry `xml:"file-entry" json:"entries"`
}

// FileEntry describes one packaged part.
type FileEntry struct {
	// FullPath is the part path inside the archive; directories end with "/".
	FullPath string `xml:"full-path,attr" json:"full_path"`
	// MediaType is the MIME type of the part; empty for directories.
	MediaType string `xml:"media-type,attr" json:"media_type"`
}
