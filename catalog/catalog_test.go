package catalog

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	cat, err := Open(filepath.Join(t.TempDir(), "slides.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { cat.Close() })
	return cat
}

func sampleRecord(path string) SlideRecord {
	return SlideRecord{
		ScanID:     "scan-1",
		Path:       path,
		Vendor:     "aperio",
		Width:      2048,
		Height:     1024,
		LevelCount: 3,
		MPPX:       0.499,
		MPPY:       0.499,
		CreatedAt:  time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestCatalog_RecordAndFind(t *testing.T) {
	cat := openTestCatalog(t)
	ctx := context.Background()

	id, err := cat.Record(ctx, sampleRecord("/slides/a.svs"))
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if id <= 0 {
		t.Errorf("Record() id = %d, want > 0", id)
	}

	rec, err := cat.FindByPath(ctx, "/slides/a.svs")
	if err != nil {
		t.Fatalf("FindByPath() error = %v", err)
	}
	if rec.Vendor != "aperio" || rec.Width != 2048 || rec.Height != 1024 || rec.LevelCount != 3 {
		t.Errorf("FindByPath() = %+v, fields do not match what was recorded", rec)
	}
	if rec.MPPX != 0.499 || rec.MPPY != 0.499 {
		t.Errorf("FindByPath() mpp = (%g, %g), want (0.499, 0.499)", rec.MPPX, rec.MPPY)
	}
	if !rec.CreatedAt.Equal(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("FindByPath() created_at = %v", rec.CreatedAt)
	}
}

func TestCatalog_RecordUpsert(t *testing.T) {
	cat := openTestCatalog(t)
	ctx := context.Background()

	first, err := cat.Record(ctx, sampleRecord("/slides/a.svs"))
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	updated := sampleRecord("/slides/a.svs")
	updated.ScanID = "scan-2"
	updated.Vendor = "hamamatsu"
	second, err := cat.Record(ctx, updated)
	if err != nil {
		t.Fatalf("Record() upsert error = %v", err)
	}
	if first != second {
		t.Errorf("upsert changed row id: %d -> %d", first, second)
	}

	rec, err := cat.FindByPath(ctx, "/slides/a.svs")
	if err != nil {
		t.Fatalf("FindByPath() error = %v", err)
	}
	if rec.Vendor != "hamamatsu" || rec.ScanID != "scan-2" {
		t.Errorf("upsert did not update fields: %+v", rec)
	}
	if rec.ID != second {
		t.Errorf("Record() returned id %d, row holds %d", second, rec.ID)
	}

	all, err := cat.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 1 {
		t.Errorf("List() after upsert = %d rows, want 1", len(all))
	}
}

func TestCatalog_List(t *testing.T) {
	cat := openTestCatalog(t)
	ctx := context.Background()

	paths := []string{"/slides/c.svs", "/slides/a.svs", "/slides/b.ndpi"}
	for _, p := range paths {
		rec := sampleRecord(p)
		if p == "/slides/b.ndpi" {
			rec.Vendor = "hamamatsu"
		}
		if _, err := cat.Record(ctx, rec); err != nil {
			t.Fatalf("Record(%s) error = %v", p, err)
		}
	}

	all, err := cat.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("List() = %d rows, want 3", len(all))
	}
	// Ordered by path.
	if all[0].Path != "/slides/a.svs" || all[2].Path != "/slides/c.svs" {
		t.Errorf("List() order = [%s, %s, %s]", all[0].Path, all[1].Path, all[2].Path)
	}

	aperio, err := cat.ListByVendor(ctx, "aperio")
	if err != nil {
		t.Fatalf("ListByVendor() error = %v", err)
	}
	if len(aperio) != 2 {
		t.Errorf("ListByVendor(aperio) = %d rows, want 2", len(aperio))
	}
}

func TestCatalog_FindMissing(t *testing.T) {
	cat := openTestCatalog(t)

	_, err := cat.FindByPath(context.Background(), "/slides/missing.svs")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("FindByPath() on missing path error = %v, want ErrNotFound", err)
	}
}

func TestCatalog_NullMPP(t *testing.T) {
	cat := openTestCatalog(t)
	ctx := context.Background()

	rec := sampleRecord("/slides/no-mpp.tif")
	rec.MPPX = 0
	rec.MPPY = 0
	if _, err := cat.Record(ctx, rec); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	got, err := cat.FindByPath(ctx, "/slides/no-mpp.tif")
	if err != nil {
		t.Fatalf("FindByPath() error = %v", err)
	}
	if got.MPPX != 0 || got.MPPY != 0 {
		t.Errorf("FindByPath() mpp = (%g, %g), want zeros for unknown resolution", got.MPPX, got.MPPY)
	}
}

func TestCatalog_RequiresPath(t *testing.T) {
	cat := openTestCatalog(t)

	if _, err := cat.Record(context.Background(), SlideRecord{Vendor: "aperio"}); err == nil {
		t.Error("Record() without path error = nil, want error")
	}
}
