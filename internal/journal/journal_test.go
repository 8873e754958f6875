package journal

import (
	"context"
	"testing"
)

// openTestJournal opens an in-memory SQLiteJournal for use in tests.
func openTestJournal(t *testing.T) *SQLiteJournal {
	t.Helper()
	j, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open in-memory journal: %v", err)
	}
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func Test_Journal_RecordAndList(t *testing.T) {
	t.Parallel()
	j := openTestJournal(t)
	ctx := context.Background()

	if err := j.Record(ctx, "alpha.pdf", 12); err != nil {
		t.Fatalf("record alpha: %v", err)
	}
	if err := j.Record(ctx, "beta.pdf", 5); err != nil {
		t.Fatalf("record beta: %v", err)
	}

	records, err := j.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("want 2 records, got %d", len(records))
	}
	// Same-second inserts fall back to id ordering: beta was inserted last.
	if records[0].Document != "beta.pdf" || records[0].Passages != 5 {
		t.Errorf("records[0]: got %+v", records[0])
	}
	if records[1].Document != "alpha.pdf" || records[1].Passages != 12 {
		t.Errorf("records[1]: got %+v", records[1])
	}
}

func Test_Journal_ReingestReplacesRecord(t *testing.T) {
	t.Parallel()
	j := openTestJournal(t)
	ctx := context.Background()

	if err := j.Record(ctx, "doc.pdf", 10); err != nil {
		t.Fatalf("first record: %v", err)
	}
	if err := j.Record(ctx, "doc.pdf", 7); err != nil {
		t.Fatalf("second record: %v", err)
	}

	records, err := j.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("re-ingest must not duplicate: got %d records", len(records))
	}
	if records[0].Passages != 7 {
		t.Errorf("want updated passage count 7, got %d", records[0].Passages)
	}
}

func Test_Journal_EmptyListReturnsNil(t *testing.T) {
	t.Parallel()
	j := openTestJournal(t)

	records, err := j.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("want no records, got %d", len(records))
	}
}
