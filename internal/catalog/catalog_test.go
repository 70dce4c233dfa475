package catalog_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rohmanhakim/legaldata/internal/catalog"
	"github.com/rohmanhakim/legaldata/internal/metadata"
	"github.com/rohmanhakim/legaldata/internal/record"
	"github.com/rohmanhakim/legaldata/pkg/failure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.Open(t.TempDir())
	require.Nil(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func sampleRecord(code string, saved ...string) record.Record {
	rec := record.New("legislation", code, "https://www.legislation.gov.au/Details/"+code, time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC))
	rec.Title = "Income Tax Act"
	rec.DownloadLinks = []string{"https://example.com/a", "https://example.com/b"}
	for _, name := range saved {
		rec.AddSaved(name, "hash-"+name)
	}
	return rec
}

func TestOpen_CreatesDatabaseFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	c, err := catalog.Open(dir)
	require.Nil(t, err)
	defer c.Close()

	_, statErr := os.Stat(filepath.Join(dir, catalog.DefaultFilename))
	assert.NoError(t, statErr)
	assert.Equal(t, filepath.Join(dir, catalog.DefaultFilename), c.Path())
}

func TestOpen_UnwritableDirIsFatal(t *testing.T) {
	file := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	_, err := catalog.Open(file)
	require.NotNil(t, err)
	assert.Equal(t, failure.SeverityFatal, err.Severity())
}

func TestUpsert_InsertThenReplace(t *testing.T) {
	c := openCatalog(t)
	ctx := context.Background()

	require.Nil(t, c.Upsert(ctx, sampleRecord("C2004A00001", "a.pdf")))
	require.Nil(t, c.Upsert(ctx, sampleRecord("C2004A00001", "a.pdf", "b.docx")))

	rows, err := c.List(ctx, "legislation")
	require.Nil(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 2, rows[0].SavedCount)
	assert.True(t, rows[0].Complete())

	got, err := c.Get(ctx, "legislation", "C2004A00001")
	require.Nil(t, err)
	assert.Equal(t, []string{"a.pdf", "b.docx"}, got.SavedFilenames)
	assert.Equal(t, "hash-b.docx", got.ContentHashes["b.docx"])
	assert.Equal(t, "01-03-2024 09:30:00", got.CrawlDate)
}

func TestList_OrdersByCodeAndFiltersSite(t *testing.T) {
	c := openCatalog(t)
	ctx := context.Background()

	require.Nil(t, c.Upsert(ctx, sampleRecord("C2")))
	require.Nil(t, c.Upsert(ctx, sampleRecord("C1", "only.pdf")))
	other := record.New("austlii", "cth-act-1", "http://www.austlii.edu.au/au/legis/cth/consol_act/a/", time.Now())
	require.Nil(t, c.Upsert(ctx, other))

	rows, err := c.List(ctx, "legislation")
	require.Nil(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "C1", rows[0].Code)
	assert.False(t, rows[0].Complete())
	assert.Equal(t, "C2", rows[1].Code)

	all, err := c.List(ctx, "")
	require.Nil(t, err)
	assert.Len(t, all, 3)
}

func TestGet_Missing(t *testing.T) {
	c := openCatalog(t)

	_, err := c.Get(context.Background(), "legislation", "nope")
	require.NotNil(t, err)

	var catErr *catalog.CatalogError
	require.ErrorAs(t, err, &catErr)
	assert.Equal(t, metadata.CauseNotFound, catalog.MapCatalogErrorToMetadataCause(catErr))
	assert.Equal(t, failure.SeverityRecoverable, err.Severity())
}
