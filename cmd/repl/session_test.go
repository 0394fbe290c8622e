package main

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/bawdo/quarry"
	"github.com/bawdo/quarry/internal/testutil"
)

func newTestSession(t *testing.T) (*Session, *bytes.Buffer) {
	t.Helper()
	table, err := quarry.NewTable(
		quarry.NewColumn("nums", "v", []any{int64(1), int64(2), int64(3)}),
		quarry.NewColumn("nums", "g", []any{int64(0), int64(1), int64(1)}),
	)
	testutil.AssertNoError(t, err)

	log := logrus.New()
	log.SetOutput(io.Discard)

	ctx := quarry.NewContext(map[string]*quarry.Table{"nums": table})
	sess := NewSession(ctx, log)
	out := &bytes.Buffer{}
	sess.out = out
	return sess, out
}

func TestSessionRunsSQL(t *testing.T) {
	t.Parallel()
	sess, out := newTestSession(t)
	testutil.AssertNoError(t, sess.Execute("SELECT SUM(v) AS s FROM nums"))
	if !strings.Contains(out.String(), "| 6 |") {
		t.Errorf("expected sum in output, got:\n%s", out.String())
	}
}

func TestSessionTables(t *testing.T) {
	t.Parallel()
	sess, out := newTestSession(t)
	testutil.AssertNoError(t, sess.Execute("tables"))
	if !strings.Contains(out.String(), "nums (3 rows): v, g") {
		t.Errorf("unexpected tables output:\n%s", out.String())
	}
}

func TestSessionAST(t *testing.T) {
	t.Parallel()
	sess, out := newTestSession(t)
	testutil.AssertNoError(t, sess.Execute(`\ast select v from nums where v > 1`))
	testutil.AssertEqual(t, strings.TrimSpace(out.String()), "SELECT v FROM nums WHERE (v > 1)")
}

func TestSessionPlan(t *testing.T) {
	t.Parallel()
	sess, out := newTestSession(t)
	testutil.AssertNoError(t, sess.Execute(`\plan SELECT v FROM nums LIMIT 1`))
	got := out.String()
	for _, want := range []string{"Limit(offset=0, count=1)", "Transform(v)", "GetTable(nums)"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in plan output:\n%s", want, got)
		}
	}
}

func TestSessionStatementWithoutResult(t *testing.T) {
	t.Parallel()
	sess, out := newTestSession(t)
	testutil.AssertNoError(t, sess.Execute("CREATE TABLE copy2 AS SELECT v FROM nums"))
	testutil.AssertEqual(t, strings.TrimSpace(out.String()), "OK")
	testutil.AssertNoError(t, sess.Execute("SELECT COUNT(*) AS n FROM copy2"))
}

func TestSessionReportsErrors(t *testing.T) {
	t.Parallel()
	sess, _ := newTestSession(t)
	testutil.AssertError(t, sess.Execute("SELECT * FROM missing"))
	testutil.AssertError(t, sess.Execute(`\load nope dsn table`))
}

func TestCompleterSuggestsTables(t *testing.T) {
	t.Parallel()
	sess, _ := newTestSession(t)
	comp := &replCompleter{sess: sess}

	line := []rune("SELECT v FROM nu")
	suggestions, length := comp.Do(line, len(line))
	testutil.AssertEqual(t, length, 2)
	found := false
	for _, s := range suggestions {
		if string(s) == "ms" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected completion to table nums, got %q", suggestions)
	}
}

func TestFilterPrefix(t *testing.T) {
	t.Parallel()
	got := filterPrefix([]string{"SELECT", "SUM(", "show", "FROM"}, "s")
	testutil.AssertEqual(t, len(got), 3)
	if filterPrefix([]string{"a"}, "") != nil {
		t.Error("expected empty prefix to match nothing")
	}
}
