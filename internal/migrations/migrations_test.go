package migrations

import (
	"testing"
	"testing/fstest"
)

func TestListMigrationsOrdersByVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"V10__later.sql":   {Data: []byte("SELECT 10;")},
		"V2__second.sql":   {Data: []byte("SELECT 2;")},
		"V1__init.sql":     {Data: []byte("SELECT 1;")},
		"README.md":        {Data: []byte("ignored")},
		"nested/V3__x.sql": {Data: []byte("ignored")},
	}
	migs, err := listMigrations(fsys)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(migs) != 3 {
		t.Fatalf("expected 3 migrations, got %d", len(migs))
	}
	if migs[0].Version != 1 || migs[1].Version != 2 || migs[2].Version != 10 {
		t.Fatalf("unexpected order %+v", migs)
	}
	if migs[2].SQL != "SELECT 10;" {
		t.Fatalf("unexpected content %q", migs[2].SQL)
	}
}

func TestListMigrationsRejectsBadNames(t *testing.T) {
	cases := map[string]fstest.MapFS{
		"no prefix":    {"init.sql": {Data: []byte("x")}},
		"no separator": {"V1_init.sql": {Data: []byte("x")}},
		"duplicate": {
			"V1__a.sql": {Data: []byte("x")},
			"V1__b.sql": {Data: []byte("y")},
		},
	}
	for name, fsys := range cases {
		if _, err := listMigrations(fsys); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	migs, err := listMigrations(Files())
	if err != nil {
		t.Fatalf("embedded: %v", err)
	}
	if len(migs) == 0 || migs[0].Name != "V1__init.sql" {
		t.Fatalf("expected V1__init.sql first, got %+v", migs)
	}
}
