package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/hyperjump/shiori/internal/models"
)

func newTestCatalog(t *testing.T) *SQLiteCatalog {
	t.Helper()
	c, err := NewSQLiteCatalog(filepath.Join(t.TempDir(), "db", "catalog.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestSQLiteCatalog_PaperCRUD(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()

	p := &models.Paper{
		ID:       "paper:abc",
		Filename: "attention.pdf",
		Path:     "/papers/attention.pdf",
		Preview:  "Attention is all you need",
		Pages:    2,
		Chunks:   3,
	}
	if err := c.UpsertPaper(ctx, p); err != nil {
		t.Fatal(err)
	}
	if p.IndexedAt.IsZero() || p.UpdatedAt.IsZero() {
		t.Error("timestamps should be set")
	}

	got, err := c.GetPaper(ctx, "paper:abc")
	if err != nil {
		t.Fatal(err)
	}
	if got.Filename != "attention.pdf" || got.Chunks != 3 || got.Topic != "" {
		t.Errorf("got %+v", got)
	}

	p.Preview = "updated"
	if err := c.UpsertPaper(ctx, p); err != nil {
		t.Fatal(err)
	}
	got, _ = c.GetPaper(ctx, "paper:abc")
	if got.Preview != "updated" {
		t.Errorf("Preview = %q, want updated", got.Preview)
	}
	if n, _ := c.CountPapers(ctx); n != 1 {
		t.Errorf("CountPapers = %d, want 1", n)
	}

	if err := c.DeletePaper(ctx, "paper:abc"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.GetPaper(ctx, "paper:abc"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetPaper after delete: err = %v, want ErrNotFound", err)
	}
	if err := c.DeletePaper(ctx, "paper:abc"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeletePaper: err = %v, want ErrNotFound", err)
	}
}

func TestSQLiteCatalog_UpdatePaperLocation(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()

	_ = c.UpsertPaper(ctx, &models.Paper{ID: "p1", Filename: "a.pdf", Path: "/in/a.pdf"})
	if err := c.UpdatePaperLocation(ctx, "p1", "/in/NLP/a.pdf", "NLP", 0.42); err != nil {
		t.Fatal(err)
	}
	got, _ := c.GetPaper(ctx, "p1")
	if got.Path != "/in/NLP/a.pdf" || got.Topic != "NLP" || got.TopicScore != 0.42 {
		t.Errorf("got %+v", got)
	}
	if err := c.UpdatePaperLocation(ctx, "missing", "/x", "CV", 0); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSQLiteCatalog_GetPapersAndList(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()

	for _, p := range []*models.Paper{
		{ID: "p1", Filename: "a.pdf", Path: "/a.pdf", Topic: "CV"},
		{ID: "p2", Filename: "b.pdf", Path: "/b.pdf", Topic: "NLP"},
		{ID: "p3", Filename: "c.pdf", Path: "/c.pdf", Topic: "NLP"},
	} {
		if err := c.UpsertPaper(ctx, p); err != nil {
			t.Fatal(err)
		}
	}

	got, err := c.GetPapers(ctx, []string{"p1", "p3", "nope"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got["p1"] == nil || got["p3"] == nil {
		t.Errorf("GetPapers = %v", got)
	}
	if empty, err := c.GetPapers(ctx, nil); err != nil || len(empty) != 0 {
		t.Errorf("GetPapers(nil) = %v, %v", empty, err)
	}

	list, err := c.ListPapers(ctx, 0, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Errorf("ListPapers limit 2: got %d", len(list))
	}

	byTopic, err := c.CountPapersByTopic(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if byTopic["CV"] != 1 || byTopic["NLP"] != 2 {
		t.Errorf("CountPapersByTopic = %v", byTopic)
	}
}

func TestSQLiteCatalog_Images(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()

	imgs := []*models.Image{
		{ID: "image:1", Filename: "cat.jpg", Path: "/img/cat.jpg", Width: 640, Height: 480},
		{ID: "image:2", Filename: "dog.png", Path: "/img/dog.png", Width: 10, Height: 10},
	}
	if err := c.UpsertImages(ctx, imgs); err != nil {
		t.Fatal(err)
	}
	imgs[0].Width = 320
	if err := c.UpsertImages(ctx, imgs[:1]); err != nil {
		t.Fatal(err)
	}
	if n, _ := c.CountImages(ctx); n != 2 {
		t.Errorf("CountImages = %d, want 2", n)
	}
	got, err := c.GetImage(ctx, "image:1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Width != 320 || got.Filename != "cat.jpg" {
		t.Errorf("got %+v", got)
	}
	if _, err := c.GetImage(ctx, "image:9"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if err := c.UpsertImages(ctx, nil); err != nil {
		t.Errorf("empty upsert: %v", err)
	}
}
