package xmind

import (
	"strings"

	"github.com/ukaji3/xmind-go/pkg/xmind/config"
	"github.com/ukaji3/xmind-go/pkg/xmind/models"
	"github.com/ukaji3/xmind-go/pkg/xmind/parser"
	"github.com/ukaji3/xmind-go/pkg/xmind/writer"
)

// Inspect reads back an archive written by Save. Part locations come from
// reg; a nil registry uses the standard layout.
func Inspect(path string, reg *config.Registry) (*models.WorkbookSummary, error) {
	layout := parser.DefaultLayout()
	if reg != nil {
		files := reg.OutputFiles()
		if p := files[writer.LabelContent]; p != "" && !strings.HasSuffix(p, "/") {
			layout.Content = p
		}
		if p := files[writer.LabelManifest]; p != "" && !strings.HasSuffix(p, "/") {
			layout.Manifest = p
		}
		if p := files[writer.LabelMetadata]; p != "" && !strings.HasSuffix(p, "/") {
			layout.Metadata = p
		}
	}
	return parser.ReadArchive(path, layout)
}

// InspectOutline reads back an xlsx outline export.
func InspectOutline(path string) ([]models.SheetOutline, error) {
	return parser.ReadOutlineFile(path)
}
