package pgtestutil

import (
	"strings"
	"testing"
)

func TestReplaceDBInDSN(t *testing.T) {
	t.Parallel()

	out, err := ReplaceDBInDSN(BaseDSN, "testdb_foo")
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(out, "/testdb_foo?") {
		t.Fatalf("db not replaced: %s", out)
	}

	if !strings.Contains(out, "sslmode=disable") {
		t.Fatalf("query lost: %s", out)
	}

	_, err = ReplaceDBInDSN("host=localhost dbname=x", "y")
	if err == nil {
		t.Fatal("keyword dsn should be rejected")
	}
}

func TestSanitizeForPgIdent(t *testing.T) {
	t.Parallel()

	got := sanitizeForPgIdent("TestFoo/Sub Case:1")
	if got != "testfoo_sub_case_1" {
		t.Fatalf("got %q", got)
	}

	long := sanitizeForPgIdent(strings.Repeat("a", 40) + strings.Repeat("b", 40))
	if len(long) != 63 {
		t.Fatalf("len = %d", len(long))
	}
}
