package store

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryJournalListFiltersAndOrders(t *testing.T) {
	j := NewMemoryJournal()
	ctx := context.Background()

	recs := []Settlement{
		{ID: "a", RequestID: "r1", Party: "alice", Stake: 10, Status: "settled"},
		{ID: "b", RequestID: "r2", Party: "alice", Stake: 20, Status: "partially_failed"},
		{ID: "c", RequestID: "r3", Party: "bob", Stake: 30, Status: "partially_failed"},
	}
	for _, rec := range recs {
		if err := j.Append(ctx, rec); err != nil {
			t.Fatalf("append %s: %v", rec.ID, err)
		}
	}

	got, err := j.List(ctx, "partially_failed", false, 50, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].ID != "c" || got[1].ID != "b" {
		t.Fatalf("list = %+v, want [c b]", got)
	}
}

func TestMemoryJournalReconcile(t *testing.T) {
	j := NewMemoryJournal()
	ctx := context.Background()
	if err := j.Append(ctx, Settlement{ID: "a", Status: "partially_failed"}); err != nil {
		t.Fatalf("append: %v", err)
	}

	if err := j.MarkReconciled(ctx, "a"); err != nil {
		t.Fatalf("mark reconciled: %v", err)
	}
	got, err := j.List(ctx, "partially_failed", true, 50, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("unreconciled list = %+v, want empty", got)
	}

	if err := j.MarkReconciled(ctx, "zzz"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestMemoryJournalGet(t *testing.T) {
	j := NewMemoryJournal()
	ctx := context.Background()
	_ = j.Append(ctx, Settlement{ID: "a", Party: "alice"})

	rec, err := j.Get(ctx, "a")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.Party != "alice" {
		t.Fatalf("party = %q, want alice", rec.Party)
	}
	if _, err := j.Get(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
