// Package archive packs the artifacts written during a save into a single
// deflate-compressed container and removes the loose originals.
package archive

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/ukaji3/xmind-go/pkg/xmind/errdefs"
	"github.com/ukaji3/xmind-go/pkg/xmind/writer"
)

// ZipFinalizer packages file-writer records into <name> on the same filesystem.
type ZipFinalizer struct {
	fs     billy.Filesystem
	labels map[string]bool
	clock  func() time.Time
	logger *slog.Logger
}

// NewZipFinalizer creates a finalizer over fs that packages the given labels.
// Records with other labels are left alone.
func NewZipFinalizer(fs billy.Filesystem, labels []string, logger *slog.Logger) *ZipFinalizer {
	if logger == nil {
		logger = slog.Default()
	}
	set := make(map[string]bool, len(labels))
	for _, l := range labels {
		set[l] = true
	}
	return &ZipFinalizer{
		fs:     fs,
		labels: set,
		clock:  time.Now,
		logger: logger.With("component", "archive.zip"),
	}
}

// Labels returns the packaged labels, sorted.
func (z *ZipFinalizer) Labels() []string {
	out := make([]string, 0, len(z.labels))
	for l := range z.labels {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// Finalize writes the archive and then deletes the packaged loose files.
// Nothing is deleted unless every entry was added and the archive closed
// cleanly; on failure the partial archive and all loose files stay in place.
func (z *ZipFinalizer) Finalize(ctx context.Context, name string, records []writer.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	archivePath, _, err := writer.CleanPath(name)
	if err != nil {
		return err
	}

	for _, rec := range records {
		if rec.Kind == writer.KindFile && (rec.Path == archivePath || strings.HasPrefix(rec.Path, archivePath+"/")) {
			return errdefs.NewArgumentError("ZipFinalizer.Finalize",
				"archive %q would overwrite the %s artifact", archivePath, rec.Label)
		}
	}

	var packed []writer.Record
	for _, rec := range records {
		if rec.Kind != writer.KindFile || !z.labels[rec.Label] || rec.Empty() {
			continue
		}
		packed = append(packed, rec)
	}

	if err := z.build(archivePath, packed); err != nil {
		return err
	}
	z.logger.Info("archive written", "path", archivePath, "artifacts", len(packed))

	for _, rec := range packed {
		if err := z.remove(rec); err != nil {
			return err
		}
	}
	return nil
}

func (z *ZipFinalizer) build(archivePath string, records []writer.Record) (err error) {
	f, err := z.fs.Create(archivePath)
	if err != nil {
		return errdefs.NewArtifactError("archive", archivePath, "archive", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errdefs.NewArtifactError("archive", archivePath, "archive", cerr)
		}
	}()

	zw := zip.NewWriter(f)
	for _, rec := range records {
		info, statErr := z.fs.Stat(rec.Path)
		if statErr != nil {
			return errdefs.NewMissingArtifactError(rec.Label, rec.Path, statErr)
		}
		if info.IsDir() != rec.Dir {
			return errdefs.NewMissingArtifactError(rec.Label, rec.Path,
				fmt.Errorf("expected dir=%v, found dir=%v", rec.Dir, info.IsDir()))
		}

		if rec.Dir {
			err = z.addDirectory(zw, rec)
		} else {
			err = z.addFile(zw, rec.Path, info)
		}
		if err != nil {
			return errdefs.NewArtifactError(rec.Label, rec.Path, "archive", err)
		}
	}

	if err := zw.Close(); err != nil {
		return errdefs.NewArtifactError("archive", archivePath, "archive", err)
	}
	return nil
}

func (z *ZipFinalizer) addFile(zw *zip.Writer, name string, info os.FileInfo) error {
	src, err := z.fs.Open(name)
	if err != nil {
		return err
	}
	defer src.Close()

	hdr := &zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: info.ModTime(),
	}
	if hdr.Modified.IsZero() {
		hdr.Modified = z.clock()
	}
	dst, err := zw.CreateHeader(hdr)
	if err != nil {
		return err
	}
	_, err = io.Copy(dst, src)
	return err
}

func (z *ZipFinalizer) addDirectory(zw *zip.Writer, rec writer.Record) error {
	return util.Walk(z.fs, rec.Path, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		name := filepath.ToSlash(p)
		if info.IsDir() {
			_, err := zw.CreateHeader(&zip.FileHeader{
				Name:     name + "/",
				Method:   zip.Store,
				Modified: z.clock(),
			})
			return err
		}
		return z.addFile(zw, name, info)
	})
}

// remove deletes a packaged artifact. A generated parent directory that is
// left empty is removed as well.
func (z *ZipFinalizer) remove(rec writer.Record) error {
	if rec.Dir {
		if err := util.RemoveAll(z.fs, rec.Path); err != nil {
			return errdefs.NewArtifactError(rec.Label, rec.Path, "remove", err)
		}
	} else if err := z.fs.Remove(rec.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return errdefs.NewArtifactError(rec.Label, rec.Path, "remove", err)
	}

	dir := path.Dir(rec.Path)
	if dir == "." {
		return nil
	}
	entries, err := z.fs.ReadDir(dir)
	if err != nil || len(entries) > 0 {
		return nil
	}
	if err := z.fs.Remove(dir); err != nil && !errors.Is(err, os.ErrNotExist) {
		return errdefs.NewArtifactError(rec.Label, dir, "remove", err)
	}
	z.logger.Debug("removed generated directory", "label", rec.Label, "path", dir)
	return nil
}
