package xmind

import (
	"context"
	"encoding/xml"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/ukaji3/xmind-go/pkg/xmind/config"
	"github.com/ukaji3/xmind-go/pkg/xmind/errdefs"
	"github.com/ukaji3/xmind-go/pkg/xmind/models"
	"github.com/ukaji3/xmind-go/pkg/xmind/writer"
)

// MetaVersion is the version attribute of the metadata part.
const MetaVersion = "2.0"

var _ writer.Document = (*Workbook)(nil)

// Render produces the artifact for label. It implements writer.Document.
func (w *Workbook) Render(ctx context.Context, label string) (writer.Artifact, error) {
	if err := ctx.Err(); err != nil {
		return writer.Artifact{}, err
	}

	var (
		data []byte
		err  error
	)
	switch label {
	case writer.LabelContent:
		data, err = w.content.Bytes(0)
	case writer.LabelManifest:
		data, err = marshalXML(w.manifest())
	case writer.LabelMetadata:
		data, err = marshalXML(w.meta())
	case writer.LabelAttachments:
		parts := make([]writer.Part, len(w.attachments))
		for i, a := range w.attachments {
			parts[i] = writer.Part{Name: a.name, Data: a.data}
		}
		return writer.Artifact{Label: label, Parts: parts}, nil
	case writer.LabelOutline:
		data, err = w.renderOutline()
	default:
		return writer.Artifact{}, errdefs.NewArgumentError("Workbook.Render", "unknown artifact %q", label)
	}
	if err != nil {
		return writer.Artifact{}, err
	}
	return writer.Artifact{Label: label, Parts: []writer.Part{{Data: data}}}, nil
}

// manifest lists the bound archive parts in binding order.
func (w *Workbook) manifest() *models.Manifest {
	files := w.registry.OutputFiles()
	m := &models.Manifest{}
	for _, b := range w.pipeline.Bindings() {
		if _, ok := files[b.Label]; !ok {
			continue
		}
		p := b.Destination.Path
		if !b.Destination.IsDir() {
			m.Entries = append(m.Entries, models.FileEntry{FullPath: p, MediaType: mediaType(p)})
			continue
		}
		if len(w.attachments) == 0 {
			continue
		}
		m.Entries = append(m.Entries, models.FileEntry{FullPath: p})
		for _, a := range w.attachments {
			name := p + a.name
			m.Entries = append(m.Entries, models.FileEntry{FullPath: name, MediaType: mediaType(name)})
		}
	}
	return m
}

func (w *Workbook) meta() *models.Meta {
	creator := w.registry.String(config.KeyCreatorName)
	if creator == "" {
		creator = "xmind-go"
	}
	return &models.Meta{
		Version: MetaVersion,
		Author:  w.author,
		Create:  models.Stamp{Time: w.created.UTC().Format(time.RFC3339)},
		Creator: models.Creator{
			Name:    creator,
			Version: w.registry.String(config.KeyCreatorVersion),
		},
	}
}

func mediaType(name string) string {
	ext := strings.ToLower(path.Ext(name))
	if ext == ".xml" {
		return "text/xml"
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return "application/octet-stream"
}

func marshalXML(v any) ([]byte, error) {
	body, err := xml.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), body...), nil
}
