package repository

import "testing"

func TestVoteUpsertClause(t *testing.T) {
	c := voteUpsertClause()

	wantCols := []string{"submission_id", "user_id"}
	if len(c.Columns) != len(wantCols) {
		t.Fatalf("got %d conflict columns, want %d", len(c.Columns), len(wantCols))
	}
	for i, col := range c.Columns {
		if col.Name != wantCols[i] {
			t.Fatalf("conflict column %d = %q, want %q", i, col.Name, wantCols[i])
		}
	}

	// 冲突时只允许改value，分类键和归属绝不能被改写
	if len(c.DoUpdates) != 1 {
		t.Fatalf("got %d update assignments, want 1", len(c.DoUpdates))
	}
	if c.DoUpdates[0].Column.Name != "value" {
		t.Fatalf("update targets %q, want value", c.DoUpdates[0].Column.Name)
	}
	if c.DoNothing {
		t.Fatal("conflict must update in place, not be ignored")
	}
}
