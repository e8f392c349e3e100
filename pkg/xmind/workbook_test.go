package xmind

import (
	"archive/zip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukaji3/xmind-go/pkg/xmind/config"
	"github.com/ukaji3/xmind-go/pkg/xmind/writer"
)

var fixedTime = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func fixedClock() time.Time { return fixedTime }

func zipEntries(t *testing.T, path string) map[string]*zip.File {
	t.Helper()
	r, err := zip.OpenReader(path)
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	entries := make(map[string]*zip.File)
	for _, f := range r.File {
		entries[f.Name] = f
	}
	return entries
}

func TestSaveZipsToFileSystem(t *testing.T) {
	base := t.TempDir()
	wb, err := NewConfiguration(config.NewDefault()).
		WithFileWriter(FileOptions{BasePath: base}).
		CreateWorkbook("test.xmind")
	require.NoError(t, err)

	wb.PrimarySheet().RootTopic().SetTitle("RootTopic")
	require.NoError(t, wb.Save(context.Background()))

	archivePath := filepath.Join(base, "test.xmind")
	entries := zipEntries(t, archivePath)
	require.Contains(t, entries, "content.xml")
	assert.Equal(t, zip.Deflate, entries["content.xml"].Method)
	assert.Contains(t, entries, "META-INF/manifest.xml")
	assert.Contains(t, entries, "meta.xml")

	for _, loose := range []string{"content.xml", "meta.xml", "META-INF"} {
		_, err := os.Stat(filepath.Join(base, loose))
		assert.True(t, os.IsNotExist(err), loose)
	}

	records := wb.Records()
	require.Len(t, records, 4)
	assert.Equal(t, writer.LabelContent, records[0].Label)
	assert.True(t, records[3].Empty())
}

func TestSaveWithAttachmentsAndInspect(t *testing.T) {
	base := t.TempDir()
	wb, err := NewConfiguration(config.NewDefault()).
		WithClock(fixedClock).
		WithFileWriter(FileOptions{BasePath: base, Outline: true}).
		CreateWorkbook("full.xmind")
	require.NoError(t, err)
	wb.SetAuthor("Ada", "ada@example.com", "")

	root := wb.PrimarySheet().RootTopic()
	root.SetTitle("RootTopic")
	child := wb.CreateTopic("Child")
	require.NoError(t, root.Add(child))
	child.SetLabels("one", "two")
	child.AddMarker("priority-1")
	child.SetHyperlink("https://example.com")
	child.SetFolded(true)
	require.NoError(t, child.AddNotes([]Note{{"Laptop", "x"}, {"Desktop", "y"}}))
	require.NoError(t, child.AddImage([]byte("png-bytes"), "a.png"))

	require.NoError(t, wb.Save(context.Background()))

	archivePath := filepath.Join(base, "full.xmind")
	entries := zipEntries(t, archivePath)
	assert.Contains(t, entries, "attachments/")
	assert.Contains(t, entries, "attachments/a.png")
	assert.NotContains(t, entries, "outline.xlsx")
	_, err = os.Stat(filepath.Join(base, "attachments"))
	assert.True(t, os.IsNotExist(err))

	summary, err := Inspect(archivePath, wb.Registry())
	require.NoError(t, err)
	require.Len(t, summary.Sheets, 1)
	topics := summary.Sheets[0].Topics
	require.Len(t, topics, 2)
	assert.Equal(t, "RootTopic", topics[0].Title)
	got := topics[1]
	assert.Equal(t, child.ID(), got.ID)
	assert.Equal(t, root.ID(), got.ParentID)
	assert.Equal(t, []string{"one", "two"}, got.Labels)
	assert.Equal(t, []string{"priority-1"}, got.Markers)
	assert.Equal(t, "https://example.com", got.Hyperlink)
	assert.True(t, got.Folded)
	assert.Equal(t, "Laptop : x\nDesktop : y\n", got.Notes)
	assert.Equal(t, []string{"xap:attachments/a.png"}, got.Images)

	require.NotNil(t, summary.Manifest)
	var paths []string
	for _, e := range summary.Manifest.Entries {
		paths = append(paths, e.FullPath)
	}
	assert.Equal(t, []string{"content.xml", "META-INF/manifest.xml", "meta.xml", "attachments/", "attachments/a.png"}, paths)
	assert.Equal(t, "image/png", summary.Manifest.Entries[4].MediaType)

	require.NotNil(t, summary.Meta)
	assert.Equal(t, "2026-01-02T03:04:05Z", summary.Meta.Create.Time)
	require.NotNil(t, summary.Meta.Author)
	assert.Equal(t, "Ada", summary.Meta.Author.Name)
	assert.Equal(t, "xmind-go", summary.Meta.Creator.Name)

	outline, err := InspectOutline(filepath.Join(base, "outline.xlsx"))
	require.NoError(t, err)
	require.Len(t, outline, 1)
	assert.Equal(t, DefaultSheetTitle, outline[0].Title)
	require.Len(t, outline[0].Topics, 2)
	assert.Equal(t, 1, outline[0].Topics[1].Depth)
	assert.Equal(t, "https://example.com", outline[0].Topics[1].Hyperlink)
}

func TestSaveInMemoryWritesNothingToDisk(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	wb := newMemoryWorkbook(t, "memory.xmind")
	wb.PrimarySheet().RootTopic().SetTitle("RootTopic")
	require.NoError(t, wb.Save(context.Background()))

	mem := wb.InMemoryWriter()
	require.NotNil(t, mem)
	content, ok := mem.Bytes(writer.LabelContent)
	require.True(t, ok)
	assert.Contains(t, string(content), "<title>RootTopic</title>")
	assert.True(t, strings.HasPrefix(string(content), "<?xml"))

	infos, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, infos)
}

func TestRepeatedSaveOverwrites(t *testing.T) {
	wb := newMemoryWorkbook(t, "again.xmind")
	root := wb.PrimarySheet().RootTopic()
	ctx := context.Background()

	root.SetTitle("first")
	require.NoError(t, wb.Save(ctx))
	root.SetTitle("second")
	require.NoError(t, wb.Save(ctx))

	content, ok := wb.InMemoryWriter().Bytes(writer.LabelContent)
	require.True(t, ok)
	assert.Contains(t, string(content), "second")
	assert.NotContains(t, string(content), "first")
	assert.Len(t, wb.Records(), 4)
}

func TestRepeatedZipSaveOnSameFileSystem(t *testing.T) {
	fs := memfs.New()
	wb, err := NewConfiguration(config.NewDefault()).
		WithFileSystem(fs, true).
		CreateWorkbook("twice.xmind")
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, wb.Save(ctx))
	require.NoError(t, wb.Save(ctx))

	_, err = fs.Stat("twice.xmind")
	assert.NoError(t, err)
	for _, loose := range []string{"content.xml", "META-INF", "meta.xml"} {
		_, err := fs.Stat(loose)
		assert.True(t, os.IsNotExist(err), loose)
	}
}

func TestCreateWorkbookRejectsNamesOfOwnArtifacts(t *testing.T) {
	tests := []struct {
		name  string
		label string
	}{
		{"content.xml", writer.LabelContent},
		{"meta.xml", writer.LabelMetadata},
		{"META-INF", writer.LabelManifest},
		{"attachments", writer.LabelAttachments},
		{"outline.xlsx", writer.LabelOutline},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := memfs.New()
			wb, err := NewConfiguration(config.NewDefault()).
				WithFileSystem(fs, true).
				WithOutline().
				CreateWorkbook(tt.name)
			require.Error(t, err)
			assert.Nil(t, wb)
			assert.True(t, errors.Is(err, ErrInvalidArgument))
			assert.Contains(t, err.Error(), tt.label)

			_, err = fs.Stat(tt.name)
			assert.True(t, os.IsNotExist(err))
		})
	}

	wb := newMemoryWorkbook(t, "content.xml")
	require.NoError(t, wb.Save(context.Background()))
}

func TestSaveWithoutZipLeavesLooseFiles(t *testing.T) {
	fs := memfs.New()
	wb, err := NewConfiguration(config.NewDefault()).
		WithFileSystem(fs, false).
		CreateWorkbook("loose.xmind")
	require.NoError(t, err)
	require.NoError(t, wb.Save(context.Background()))

	for _, p := range []string{"content.xml", "META-INF/manifest.xml", "meta.xml"} {
		_, err := fs.Stat(p)
		assert.NoError(t, err, p)
	}
	_, err = fs.Stat("loose.xmind")
	assert.True(t, os.IsNotExist(err))
}

func TestCustomFinalizerReplacesZip(t *testing.T) {
	fs := memfs.New()
	var got []writer.Record
	wb, err := NewConfiguration(config.NewDefault()).
		WithFileSystem(fs, true).
		SetFinalizer(FinalizerFunc(func(_ context.Context, name string, records []writer.Record) error {
			assert.Equal(t, "custom.xmind", name)
			got = records
			return nil
		})).
		CreateWorkbook("custom.xmind")
	require.NoError(t, err)

	require.NoError(t, wb.Save(context.Background()))
	assert.Len(t, got, 4)
	_, err = fs.Stat("custom.xmind")
	assert.True(t, os.IsNotExist(err))
	_, err = fs.Stat("content.xml")
	assert.NoError(t, err)
}

func TestSaveSurfacesFinalizerErrors(t *testing.T) {
	fs := memfs.New()
	wb, err := NewConfiguration(config.NewDefault()).
		WithFileSystem(fs, true).
		SetFinalizer(FinalizerFunc(func(context.Context, string, []writer.Record) error {
			return ErrMissingArtifact
		})).
		CreateWorkbook("broken.xmind")
	require.NoError(t, err)

	err = wb.Save(context.Background())
	assert.ErrorIs(t, err, ErrMissingArtifact)
	assert.Len(t, wb.Records(), 4)
}

func TestSaveStopsOnCancelledContext(t *testing.T) {
	wb := newMemoryWorkbook(t, "cancel.xmind")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := wb.Save(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, wb.Records())
}

func TestSaveAsync(t *testing.T) {
	wb := newMemoryWorkbook(t, "async.xmind")
	wb.PrimarySheet().RootTopic().SetTitle("RootTopic")

	select {
	case err := <-wb.SaveAsync(context.Background()):
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("save did not complete")
	}
	_, ok := wb.InMemoryWriter().Bytes(writer.LabelContent)
	assert.True(t, ok)
}

func TestRenderUnknownArtifact(t *testing.T) {
	wb := newMemoryWorkbook(t, "render.xmind")
	_, err := wb.Render(context.Background(), "thumbnail")
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestRenderContentDeclaresNamespaces(t *testing.T) {
	wb := newMemoryWorkbook(t, "ns.xmind")
	a, err := wb.Render(context.Background(), writer.LabelContent)
	require.NoError(t, err)
	require.Len(t, a.Parts, 1)

	content := string(a.Parts[0].Data)
	assert.Contains(t, content, `xmlns="urn:xmind:xmap:xmlns:content:2.0"`)
	assert.Contains(t, content, `xmlns:xhtml="http://www.w3.org/1999/xhtml"`)
	assert.Contains(t, content, `xmlns:xlink="http://www.w3.org/1999/xlink"`)
	assert.Contains(t, content, `version="2.0"`)
}
