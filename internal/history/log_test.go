package history

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/classpulse/backend/internal/models"
)

func entry(question string, counts ...int) models.HistoryEntry {
	tally := make(models.Tally, len(counts))
	total := 0
	for i, c := range counts {
		tally[i] = models.OptionCount{Label: string(rune('A' + i)), Count: c}
		total += c
	}
	return models.HistoryEntry{
		Poll:           models.Poll{ID: uuid.New(), Question: question, TimeLimit: 60},
		Results:        tally,
		TotalResponses: total,
		ClosedAt:       time.Now(),
	}
}

func TestRecordKeepsCloseOrder(t *testing.T) {
	l := NewLog()
	l.Record(entry("first", 1, 2))
	l.Record(entry("second", 0, 3))
	l.Record(entry("third", 2, 2))

	all := l.All()
	if len(all) != 3 {
		t.Fatalf("len(All()) = %d, want 3", len(all))
	}
	for i, want := range []string{"first", "second", "third"} {
		if all[i].Poll.Question != want {
			t.Errorf("entry %d = %q, want %q", i, all[i].Poll.Question, want)
		}
	}
	if l.Len() != 3 {
		t.Errorf("Len() = %d, want 3", l.Len())
	}
}

func TestAllReturnsCopy(t *testing.T) {
	l := NewLog()
	l.Record(entry("only", 1, 1))

	all := l.All()
	all[0].Poll.Question = "mutated"
	all = append(all, entry("extra", 0, 0))
	_ = all

	if got := l.All()[0].Poll.Question; got != "only" {
		t.Errorf("stored entry = %q, want %q", got, "only")
	}
	if l.Len() != 1 {
		t.Errorf("Len() = %d, want 1", l.Len())
	}
}

func TestTallySumMatchesTotal(t *testing.T) {
	e := entry("q", 2, 3, 1)
	if e.Results.Sum() != e.TotalResponses {
		t.Errorf("Sum() = %d, TotalResponses = %d, want equal", e.Results.Sum(), e.TotalResponses)
	}
}
