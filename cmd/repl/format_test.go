package main

import (
	"strings"
	"testing"

	"github.com/bawdo/quarry/exec"
	"github.com/bawdo/quarry/internal/testutil"
)

func TestFormatTable(t *testing.T) {
	t.Parallel()
	table, err := exec.NewTable(
		exec.NewColumn("t", "id", []any{int64(1), int64(2)}),
		exec.NewColumn("t", "name", []any{"alice", nil}),
	)
	testutil.AssertNoError(t, err)

	got := formatTable(table, 1000)
	want := strings.Join([]string{
		"+----+-------+",
		"| id | name  |",
		"+----+-------+",
		"| 1  | alice |",
		"| 2  | NULL  |",
		"+----+-------+",
		"(2 rows)",
		"",
	}, "\n")
	testutil.AssertEqual(t, got, want)
}

func TestFormatTableTruncates(t *testing.T) {
	t.Parallel()
	table, err := exec.NewTable(exec.NewColumn("t", "v", []any{int64(1), int64(2), int64(3)}))
	testutil.AssertNoError(t, err)

	got := formatTable(table, 2)
	if !strings.Contains(got, "(truncated at 2 rows)") {
		t.Errorf("expected truncation notice, got:\n%s", got)
	}
	if strings.Contains(got, "| 3 |") {
		t.Errorf("expected third row to be dropped, got:\n%s", got)
	}
}

func TestFormatTableNoColumns(t *testing.T) {
	t.Parallel()
	got := formatTable(exec.NewRowTable(1), 1000)
	testutil.AssertEqual(t, got, "(1 rows, no columns)\n")
}

func TestFormatValue(t *testing.T) {
	t.Parallel()
	testutil.AssertEqual(t, formatValue(nil), "NULL")
	testutil.AssertEqual(t, formatValue(int64(7)), "7")
	testutil.AssertEqual(t, formatValue(1.5), "1.5")
	testutil.AssertEqual(t, formatValue(true), "true")
}
