package sqlgen_test

import (
	"reflect"
	"testing"

	"github.com/jdtoon/d1q/internal/qast"
	"github.com/jdtoon/d1q/internal/sqlgen"
)

func TestInsert(t *testing.T) {
	t.Run("columns emit in sorted order regardless of map order", func(t *testing.T) {
		sql, args, err := sqlgen.Insert(users, []map[qast.Field]any{
			{f("name"): "Ada", f("age"): 36, f("city"): "London"},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := `INSERT INTO "users" ("age", "city", "name") VALUES (?, ?, ?)`
		if sql != want {
			t.Errorf("SQL mismatch\n got: %s\nwant: %s", sql, want)
		}
		if !reflect.DeepEqual(args, []any{36, "London", "Ada"}) {
			t.Errorf("args mismatch: %#v", args)
		}
	})

	t.Run("multi-row insert", func(t *testing.T) {
		sql, args, err := sqlgen.Insert(users, []map[qast.Field]any{
			{f("name"): "Ada", f("age"): 36},
			{f("name"): "Grace", f("age"): 45},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := `INSERT INTO "users" ("age", "name") VALUES (?, ?), (?, ?)`
		if sql != want {
			t.Errorf("SQL mismatch\n got: %s\nwant: %s", sql, want)
		}
		if !reflect.DeepEqual(args, []any{36, "Ada", 45, "Grace"}) {
			t.Errorf("args mismatch: %#v", args)
		}
	})

	t.Run("rows with different column sets are rejected", func(t *testing.T) {
		_, _, err := sqlgen.Insert(users, []map[qast.Field]any{
			{f("name"): "Ada", f("age"): 36},
			{f("name"): "Grace"},
		})
		if err == nil {
			t.Fatal("expected error for mismatched column sets")
		}
	})

	t.Run("empty insert is rejected", func(t *testing.T) {
		if _, _, err := sqlgen.Insert(users, nil); err == nil {
			t.Fatal("expected error for empty insert")
		}
	})
}

func TestUpdate(t *testing.T) {
	t.Run("sets emit sorted, where binds after", func(t *testing.T) {
		sql, args, err := sqlgen.Update(users,
			map[qast.Field]any{f("name"): "Ada", f("city"): "Oslo"},
			[]qast.ConditionItem{
				qast.Condition{Field: f("id"), Operator: qast.EQ, Value: 7},
			})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := `UPDATE "users" SET "city" = ?, "name" = ? WHERE "id" = ?`
		if sql != want {
			t.Errorf("SQL mismatch\n got: %s\nwant: %s", sql, want)
		}
		if !reflect.DeepEqual(args, []any{"Oslo", "Ada", 7}) {
			t.Errorf("args mismatch: %#v", args)
		}
	})

	t.Run("update without where touches all rows", func(t *testing.T) {
		sql, _, err := sqlgen.Update(users, map[qast.Field]any{f("active"): false}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := `UPDATE "users" SET "active" = ?`
		if sql != want {
			t.Errorf("SQL mismatch\n got: %s\nwant: %s", sql, want)
		}
	})

	t.Run("update without sets is rejected", func(t *testing.T) {
		if _, _, err := sqlgen.Update(users, nil, nil); err == nil {
			t.Fatal("expected error for update without sets")
		}
	})
}

func TestDelete(t *testing.T) {
	t.Run("delete with predicate", func(t *testing.T) {
		sql, args, err := sqlgen.Delete(users, []qast.ConditionItem{
			qast.Condition{Field: f("active"), Operator: qast.EQ, Value: false},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := `DELETE FROM "users" WHERE "active" = ?`
		if sql != want {
			t.Errorf("SQL mismatch\n got: %s\nwant: %s", sql, want)
		}
		if !reflect.DeepEqual(args, []any{false}) {
			t.Errorf("args mismatch: %#v", args)
		}
	})

	t.Run("delete without where", func(t *testing.T) {
		sql, _, err := sqlgen.Delete(users, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if sql != `DELETE FROM "users"` {
			t.Errorf("SQL mismatch: %s", sql)
		}
	})

	t.Run("missing table is rejected", func(t *testing.T) {
		if _, _, err := sqlgen.Delete(qast.Table{}, nil); err == nil {
			t.Fatal("expected error for missing table")
		}
	})
}
