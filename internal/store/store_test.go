package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/verte-zerg/shiftscope/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestInsertAndListRuns(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	var ids []string
	for i := 0; i < 3; i++ {
		label := "large"
		if i == 1 {
			label = "small"
		}
		rec := model.RunRecord{
			Label:         label,
			CreatedAt:     base.Add(time.Duration(i) * time.Minute),
			Tables:        "english",
			Letters:       100 + i,
			IC:            0.066,
			BestKey:       i,
			BestChi:       12.5,
			BigramBestKey: i,
			BigramBestChi: 40.25,
		}
		scores := []model.RunScore{{Key: 0, Chi: 1.5, ChiBigram: 2.5}, {Key: 1, Chi: 3, ChiBigram: 4}}
		id, err := st.InsertRun(ctx, rec, scores)
		if err != nil {
			t.Fatalf("insert run: %v", err)
		}
		if id == "" {
			t.Fatalf("expected generated id")
		}
		ids = append(ids, id)
	}

	runs, err := st.ListRuns(ctx, model.HistoryFilter{})
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 3 || runs[0].ID != ids[0] || runs[2].ID != ids[2] {
		t.Fatalf("unexpected runs order: %+v", runs)
	}
	if !runs[1].CreatedAt.Equal(base.Add(time.Minute)) {
		t.Fatalf("unexpected created_at: %v", runs[1].CreatedAt)
	}

	large, err := st.ListRuns(ctx, model.HistoryFilter{Label: "large", Last: 1})
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(large) != 1 || large[0].ID != ids[2] {
		t.Fatalf("unexpected filtered runs: %+v", large)
	}

	since := base.Add(90 * time.Second)
	recent, err := st.ListRuns(ctx, model.HistoryFilter{Since: &since})
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(recent) != 1 || recent[0].Letters != 102 {
		t.Fatalf("unexpected since filter result: %+v", recent)
	}

	scores, err := st.ListRunScores(ctx, ids[0])
	if err != nil {
		t.Fatalf("list scores: %v", err)
	}
	want := []model.RunScore{{Key: 0, Chi: 1.5, ChiBigram: 2.5}, {Key: 1, Chi: 3, ChiBigram: 4}}
	if diff := cmp.Diff(want, scores); diff != "" {
		t.Fatalf("unexpected scores (-want +got):\n%s", diff)
	}
}

func TestGetRunByPrefix(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"abc-1", "abd-2"} {
		if _, err := st.InsertRun(ctx, model.RunRecord{ID: id, Label: "x", CreatedAt: time.Now()}, nil); err != nil {
			t.Fatalf("insert run: %v", err)
		}
	}
	rec, err := st.GetRun(ctx, "abc")
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if rec.ID != "abc-1" {
		t.Fatalf("unexpected run %q", rec.ID)
	}
	if _, err := st.GetRun(ctx, "ab"); err == nil {
		t.Fatalf("expected ambiguous prefix error")
	}
	if _, err := st.GetRun(ctx, "zzz"); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
	if _, err := st.GetRun(ctx, "a%"); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("expected wildcard to be escaped, got %v", err)
	}
}

func TestInsertRunDuplicateIDRollsBack(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	rec := model.RunRecord{ID: "dup", Label: "x", CreatedAt: time.Now()}
	if _, err := st.InsertRun(ctx, rec, []model.RunScore{{Key: 0}}); err != nil {
		t.Fatalf("insert run: %v", err)
	}
	if _, err := st.InsertRun(ctx, rec, []model.RunScore{{Key: 5}}); err == nil {
		t.Fatalf("expected duplicate id error")
	}
	scores, err := st.ListRunScores(ctx, "dup")
	if err != nil {
		t.Fatalf("list scores: %v", err)
	}
	if len(scores) != 1 || scores[0].Key != 0 {
		t.Fatalf("expected failed insert to roll back, got %+v", scores)
	}
}
