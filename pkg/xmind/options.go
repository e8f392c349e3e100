// Package xmind builds mind-map workbooks and saves them as xmind archives.
//
// A Configuration decides where a workbook is written: to the local disk
// through a file writer, to any billy filesystem, or to an in-memory buffer.
// Workbooks created from it hold sheets of topic trees; Save renders every
// bound artifact (content, manifest, metadata, attachments and optionally an
// xlsx outline), writes each one exactly once and, when zip packaging is on,
// packs the archive parts into a single file named after the workbook.
package xmind

// FileOptions configures the file writer.
type FileOptions struct {
	// BasePath is the output directory. If empty, the "output:base" setting is used.
	BasePath string
	// Zip specifies whether the written parts are packed into one archive.
	// If nil, defaults to true.
	Zip *bool
	// Outline specifies whether an xlsx outline is written next to the archive.
	Outline bool
}

// DefaultFileOptions returns the default file writer options.
func DefaultFileOptions() FileOptions {
	return FileOptions{}
}

// ShouldZip returns whether the written parts are packed into an archive.
func (o FileOptions) ShouldZip() bool {
	if o.Zip != nil {
		return *o.Zip
	}
	return true
}

// Bool returns a pointer to b, for optional settings.
func Bool(b bool) *bool {
	return &b
}
