package writer

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/ukaji3/xmind-go/pkg/xmind/errdefs"
)

// FileWriter writes artifacts to a filesystem, overwriting existing output.
type FileWriter struct {
	fs     billy.Filesystem
	labels []string
	permF  os.FileMode
	permD  os.FileMode
	logger *slog.Logger
}

var _ Writer = (*FileWriter)(nil)

// NewFileWriter creates a writer for labels over fs. A nil logger uses slog.Default.
func NewFileWriter(fs billy.Filesystem, labels []string, logger *slog.Logger) *FileWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileWriter{
		fs:     fs,
		labels: append([]string(nil), labels...),
		permF:  0o644,
		permD:  0o755,
		logger: logger.With("component", "writer.file"),
	}
}

// NewOSFileWriter creates a FileWriter rooted at baseDir on the local disk.
func NewOSFileWriter(baseDir string, labels []string, logger *slog.Logger) *FileWriter {
	return NewFileWriter(osfs.New(baseDir), labels, logger)
}

// Name implements Writer.
func (w *FileWriter) Name() string { return "file" }

// Kind implements Writer.
func (w *FileWriter) Kind() Kind { return KindFile }

// Labels implements Writer.
func (w *FileWriter) Labels() []string { return append([]string(nil), w.labels...) }

// Filesystem returns the filesystem the writer is rooted in.
func (w *FileWriter) Filesystem() billy.Filesystem { return w.fs }

// Write implements Writer. Single-file artifacts replace the file at dest;
// directory artifacts replace the whole directory.
func (w *FileWriter) Write(ctx context.Context, dest Destination, a Artifact) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}

	p, dir, err := CleanPath(dest.Path)
	if err != nil {
		return Record{}, errdefs.NewArtifactError(a.Label, dest.Path, "write", err)
	}
	rec := Record{Label: a.Label, Writer: w.Name(), Kind: KindFile, Path: p, Dir: dir}

	if !dir {
		if len(a.Parts) != 1 {
			return Record{}, errdefs.NewArtifactError(a.Label, p, "write",
				errdefs.NewArgumentError("FileWriter.Write", "single-file artifact has %d parts", len(a.Parts)))
		}
		if err := w.writeFile(p, a.Parts[0].Data); err != nil {
			return Record{}, errdefs.NewArtifactError(a.Label, p, "write", err)
		}
		rec.Files = []string{p}
		return rec, nil
	}

	if err := util.RemoveAll(w.fs, p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Record{}, errdefs.NewArtifactError(a.Label, p, "remove", err)
	}
	for _, part := range a.Parts {
		full, err := partPath(p, part)
		if err != nil {
			return rec, errdefs.NewArtifactError(a.Label, p, "write", err)
		}
		if err := w.writeFile(full, part.Data); err != nil {
			return rec, errdefs.NewArtifactError(a.Label, full, "write", err)
		}
		rec.Files = append(rec.Files, full)
	}
	w.logger.Debug("directory artifact written", "label", a.Label, "path", p, "files", len(rec.Files))
	return rec, nil
}

func (w *FileWriter) writeFile(p string, data []byte) error {
	if d := path.Dir(p); d != "." {
		if err := w.fs.MkdirAll(d, w.permD); err != nil {
			return err
		}
	}
	return util.WriteFile(w.fs, p, data, w.permF)
}
