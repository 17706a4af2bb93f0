package sqlite

import (
	"strings"
	"testing"
)

func Test_dataSourceNames(t *testing.T) {
	t.Run("File", func(t *testing.T) {
		rw, ro := dataSourceNames("./calicoach.sqlite3")
		if !strings.HasPrefix(rw, "file:./calicoach.sqlite3?") || !strings.HasSuffix(rw, "&mode=rwc") {
			t.Errorf("read-write DSN = %q", rw)
		}
		if !strings.Contains(ro, "_query_only=true") || !strings.HasSuffix(ro, "&mode=ro") {
			t.Errorf("read-only DSN = %q", ro)
		}
	})

	t.Run("Memory databases are isolated", func(t *testing.T) {
		rw1, ro1 := dataSourceNames(":memory:")
		rw2, _ := dataSourceNames(":memory:")
		name := func(dsn string) string { return strings.TrimPrefix(strings.SplitN(dsn, "?", 2)[0], "file:") }
		if name(rw1) != name(ro1) {
			t.Errorf("pools use different databases: %q and %q", rw1, ro1)
		}
		if name(rw1) == name(rw2) {
			t.Errorf("two in-memory databases share the name %q", name(rw1))
		}
		if !strings.Contains(rw1, "cache=shared") {
			t.Errorf("read-write DSN %q lacks a shared cache", rw1)
		}
	})
}
