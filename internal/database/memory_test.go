package database

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/trentd187/f1-fansite/internal/models"
)

func TestMemoryUpdateLogRecordFillsFields(t *testing.T) {
	log := NewMemoryUpdateLog()
	u := &models.DataUpdate{Dataset: "next-race", Bytes: 42, Subject: "data-job"}

	if err := log.Record(context.Background(), u); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.ID == uuid.Nil {
		t.Fatal("expected an ID to be assigned")
	}
	if u.CreatedAt.IsZero() {
		t.Fatal("expected CreatedAt to be set")
	}

	fixed := time.Date(2025, 7, 27, 13, 0, 0, 0, time.UTC)
	id := uuid.New()
	u2 := &models.DataUpdate{ID: id, Dataset: "latest-session", CreatedAt: fixed}
	if err := log.Record(context.Background(), u2); err != nil {
		t.Fatal(err)
	}
	if u2.ID != id || !u2.CreatedAt.Equal(fixed) {
		t.Fatal("preset fields must be kept")
	}
}

func TestMemoryUpdateLogRecentNewestFirst(t *testing.T) {
	log := NewMemoryUpdateLog()
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if err := log.Record(ctx, &models.DataUpdate{Dataset: fmt.Sprintf("ds-%d", i)}); err != nil {
			t.Fatal(err)
		}
	}

	got, err := log.Recent(ctx, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 updates, got %d", len(got))
	}
	if got[0].Dataset != "ds-4" || got[2].Dataset != "ds-2" {
		t.Fatalf("unexpected order: %s ... %s", got[0].Dataset, got[2].Dataset)
	}

	// Non-positive limits are clamped to one entry.
	got, _ = log.Recent(ctx, 0)
	if len(got) != 1 {
		t.Fatalf("expected 1 update, got %d", len(got))
	}
}

func TestMemoryUpdateLogBounded(t *testing.T) {
	log := NewMemoryUpdateLog()
	ctx := context.Background()
	for i := 0; i < MaxRecent+10; i++ {
		if err := log.Record(ctx, &models.DataUpdate{Dataset: fmt.Sprintf("ds-%d", i)}); err != nil {
			t.Fatal(err)
		}
	}

	got, _ := log.Recent(ctx, MaxRecent+50)
	if len(got) != MaxRecent {
		t.Fatalf("expected %d updates, got %d", MaxRecent, len(got))
	}
	if got[len(got)-1].Dataset != "ds-10" {
		t.Fatalf("oldest kept entry should be ds-10, got %s", got[len(got)-1].Dataset)
	}
}
