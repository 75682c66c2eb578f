package sqlbuild_test

import (
	"reflect"
	"strings"
	"testing"

	"lightbnb/internal/storage/sqlbuild"
)

func squash(s string) string { return strings.Join(strings.Fields(s), " ") }

func TestBuild_NumbersByInclusionOrder(t *testing.T) {
	q := sqlbuild.Select(sqlbuild.Postgres, "SELECT * FROM t").
		Where("a LIKE ?", "%x%").
		Where("(b > ? AND b < ?)", 1, 2).
		GroupBy("t.id").
		Having("avg(r) >= ?", 4.0).
		OrderBy("b").
		Limit(10)

	sql, args := q.Build()
	want := "SELECT * FROM t WHERE a LIKE $1 AND (b > $2 AND b < $3) GROUP BY t.id HAVING avg(r) >= $4 ORDER BY b LIMIT $5"
	if squash(sql) != want {
		t.Fatalf("sql:\n got %s\nwant %s", squash(sql), want)
	}
	if !reflect.DeepEqual(args, []any{"%x%", 1, 2, 4.0, 10}) {
		t.Fatalf("args: %#v", args)
	}
}

func TestBuild_SkippedClauseShiftsLaterPlaceholders(t *testing.T) {
	sql, args := sqlbuild.Select(sqlbuild.Postgres, "SELECT * FROM t").
		Where("a LIKE ?", "%x%").
		GroupBy("t.id").
		Having("avg(r) >= ?", 3.5).
		Limit(5).
		Build()

	if !strings.Contains(sql, "avg(r) >= $2") || !strings.Contains(sql, "LIMIT $3") {
		t.Fatalf("unexpected numbering: %s", squash(sql))
	}
	if len(args) != 3 {
		t.Fatalf("args: %#v", args)
	}
}

func TestBuild_MySQLKeepsQuestionMarks(t *testing.T) {
	sql, args := sqlbuild.Select(sqlbuild.MySQL, "SELECT * FROM t").
		Where("a = ?", "x").
		Where("b BETWEEN ? AND ?", 1, 9).
		Limit(3).
		Build()

	want := "SELECT * FROM t WHERE a = ? AND b BETWEEN ? AND ? LIMIT ?"
	if squash(sql) != want {
		t.Fatalf("sql: %s", squash(sql))
	}
	if !reflect.DeepEqual(args, []any{"x", 1, 9, 3}) {
		t.Fatalf("args: %#v", args)
	}
}

func TestBuild_NoOptionalClauses(t *testing.T) {
	sql, args := sqlbuild.Select(sqlbuild.Postgres, "SELECT 1").Build()
	if sql != "SELECT 1" || len(args) != 0 {
		t.Fatalf("got %q %#v", sql, args)
	}
}

func TestBuild_MarkArgMismatchPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	sqlbuild.Select(sqlbuild.Postgres, "SELECT 1").Where("a = ? AND b = ?", 1).Build()
}
