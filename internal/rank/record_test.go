package rank

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/verte-zerg/shiftscope/internal/cipher"
)

func TestRecordRoundTrip(t *testing.T) {
	res, err := Rank(cipher.Shift("DEFENDTHEEASTWALLOFTHECASTLE", 4))
	if err != nil {
		t.Fatalf("Rank failed: %v", err)
	}
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	rec, scores := res.Record("small", "english", at)
	if rec.Label != "small" || rec.Tables != "english" || !rec.CreatedAt.Equal(at) {
		t.Fatalf("unexpected record metadata: %+v", rec)
	}
	if rec.Letters != res.Letters || rec.IC != res.IC {
		t.Fatalf("unexpected record values: %+v", rec)
	}
	if rec.BestKey != int(res.Unigram.Best().Key) || rec.BigramBestKey != int(res.Bigram.Best().Key) {
		t.Fatalf("unexpected best keys: %+v", rec)
	}
	if len(scores) != cipher.Size {
		t.Fatalf("expected %d scores, got %d", cipher.Size, len(scores))
	}

	uni, bi := FromScores(scores)
	if diff := cmp.Diff(res.Unigram.Scores, uni.Scores); diff != "" {
		t.Fatalf("unigram ranking mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(res.Bigram.Scores, bi.Scores); diff != "" {
		t.Fatalf("bigram ranking mismatch (-want +got):\n%s", diff)
	}
}
