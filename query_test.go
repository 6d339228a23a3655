package d1q_test

import (
	"context"
	"errors"
	"testing"

	"github.com/zoobzio/dbml"

	"github.com/jdtoon/d1q"
)

// fakeExec records the last statement it received and replies with
// canned rows.
type fakeExec struct {
	lastSQL  string
	lastArgs []any
	rows     []d1q.Row
	err      error
}

func (f *fakeExec) Query(_ context.Context, sql string, args ...any) ([]d1q.Row, error) {
	f.lastSQL = sql
	f.lastArgs = args
	return f.rows, f.err
}

func (f *fakeExec) Exec(_ context.Context, sql string, args ...any) (d1q.ExecResult, error) {
	f.lastSQL = sql
	f.lastArgs = args
	return d1q.ExecResult{RowsAffected: int64(len(args))}, f.err
}

func testSchema(t *testing.T) *d1q.Schema {
	t.Helper()
	project := dbml.NewProject("test")

	users := dbml.NewTable("users")
	users.AddColumn(dbml.NewColumn("id", "bigint"))
	users.AddColumn(dbml.NewColumn("name", "varchar"))
	users.AddColumn(dbml.NewColumn("age", "int"))
	users.AddColumn(dbml.NewColumn("city", "varchar"))
	users.AddColumn(dbml.NewColumn("active", "boolean"))
	project.AddTable(users)

	orders := dbml.NewTable("orders")
	orders.AddColumn(dbml.NewColumn("id", "bigint"))
	orders.AddColumn(dbml.NewColumn("user_id", "bigint"))
	orders.AddColumn(dbml.NewColumn("total", "real"))
	orders.AddColumn(dbml.NewColumn("status", "varchar"))
	project.AddTable(orders)

	schema, err := d1q.NewSchema(project)
	if err != nil {
		t.Fatalf("NewSchema: %v", err)
	}
	return schema
}

type user struct {
	ID     int64  `db:"id"`
	Name   string `db:"name"`
	Age    int    `db:"age"`
	City   string `db:"city"`
	Active bool   `db:"active"`
}

func TestQueryCompile(t *testing.T) {
	schema := testSchema(t)
	exec := &fakeExec{}

	t.Run("where, order, pagination", func(t *testing.T) {
		compiled, err := d1q.From[user](exec, schema.T("users")).
			Where(d1q.C(schema.F("age"), d1q.GE, 21)).
			Where(d1q.C(schema.F("active"), d1q.EQ, true)).
			OrderBy(schema.F("city")).
			ThenByDesc(schema.F("age")).
			Take(10).
			Skip(20).
			Compile()
		if err != nil {
			t.Fatalf("Compile: %v", err)
		}
		want := `SELECT * FROM "users" WHERE "age" >= ? AND "active" = ? ORDER BY "city" ASC, "age" DESC LIMIT 10 OFFSET 20`
		if compiled.SQL() != want {
			t.Errorf("SQL mismatch\n got: %s\nwant: %s", compiled.SQL(), want)
		}
		if len(compiled.Args()) != 2 {
			t.Errorf("expected 2 args, got %v", compiled.Args())
		}
		if compiled.Shape() != "d1q_test.user" {
			t.Errorf("unexpected shape %q", compiled.Shape())
		}
	})

	t.Run("OrderBy resets, ThenBy appends", func(t *testing.T) {
		compiled, err := d1q.From[user](exec, schema.T("users")).
			OrderBy(schema.F("age")).
			OrderBy(schema.F("name")).
			ThenBy(schema.F("id")).
			Compile()
		if err != nil {
			t.Fatalf("Compile: %v", err)
		}
		want := `SELECT * FROM "users" ORDER BY "name" ASC, "id" ASC`
		if compiled.SQL() != want {
			t.Errorf("SQL mismatch\n got: %s\nwant: %s", compiled.SQL(), want)
		}
	})

	t.Run("ThenBy without OrderBy is a build error", func(t *testing.T) {
		_, err := d1q.From[user](exec, schema.T("users")).
			ThenBy(schema.F("id")).
			Compile()
		if err == nil {
			t.Fatal("expected error for ThenBy without OrderBy")
		}
	})

	t.Run("build errors stick through later calls", func(t *testing.T) {
		q := d1q.From[user](exec, schema.T("users")).
			ThenBy(schema.F("id")).
			Where(d1q.C(schema.F("age"), d1q.GE, 21)).
			Take(1)
		if q.Err() == nil {
			t.Fatal("expected held error")
		}
		if _, err := q.Compile(); err == nil {
			t.Fatal("expected Compile to surface the held error")
		}
	})

	t.Run("field-to-field comparison binds nothing", func(t *testing.T) {
		compiled, err := d1q.From[user](exec, schema.T("users")).
			Where(d1q.CF(schema.F("age"), d1q.GT, schema.F("id"))).
			Compile()
		if err != nil {
			t.Fatalf("Compile: %v", err)
		}
		want := `SELECT * FROM "users" WHERE "age" > "id"`
		if compiled.SQL() != want {
			t.Errorf("SQL mismatch\n got: %s\nwant: %s", compiled.SQL(), want)
		}
		if len(compiled.Args()) != 0 {
			t.Errorf("expected no args, got %v", compiled.Args())
		}
	})

	t.Run("predicate helpers", func(t *testing.T) {
		compiled, err := d1q.From[user](exec, schema.T("users")).
			Where(d1q.Or(
				d1q.Contains(schema.F("name"), "smith"),
				d1q.And(
					d1q.In(schema.F("city"), "Oslo", "Bergen"),
					d1q.Not(d1q.Null(schema.F("name"))),
				),
			)).
			Compile()
		if err != nil {
			t.Fatalf("Compile: %v", err)
		}
		want := `SELECT * FROM "users" WHERE ("name" LIKE ? OR ("city" IN (?, ?) AND NOT ("name" IS NULL)))`
		if compiled.SQL() != want {
			t.Errorf("SQL mismatch\n got: %s\nwant: %s", compiled.SQL(), want)
		}
	})
}

func TestQueryTerminals(t *testing.T) {
	schema := testSchema(t)
	ctx := context.Background()

	t.Run("All materializes entities", func(t *testing.T) {
		exec := &fakeExec{rows: []d1q.Row{
			{"id": int64(1), "name": "Ada", "age": int64(36), "city": "London", "active": int64(1)},
			{"id": int64(2), "name": "Grace", "age": int64(45), "city": "Arlington", "active": int64(0)},
		}}
		got, err := d1q.From[user](exec, schema.T("users")).All(ctx)
		if err != nil {
			t.Fatalf("All: %v", err)
		}
		if len(got) != 2 || got[0].Name != "Ada" || !got[0].Active || got[1].Age != 45 {
			t.Errorf("unexpected result: %+v", got)
		}
	})

	t.Run("First limits to one row", func(t *testing.T) {
		exec := &fakeExec{rows: []d1q.Row{{"id": int64(1), "name": "Ada"}}}
		got, err := d1q.From[user](exec, schema.T("users")).First(ctx)
		if err != nil {
			t.Fatalf("First: %v", err)
		}
		if got.Name != "Ada" {
			t.Errorf("unexpected entity: %+v", got)
		}
		if exec.lastSQL != `SELECT * FROM "users" LIMIT 1` {
			t.Errorf("unexpected SQL: %s", exec.lastSQL)
		}
	})

	t.Run("First on empty result is ErrNoRows", func(t *testing.T) {
		exec := &fakeExec{}
		_, err := d1q.From[user](exec, schema.T("users")).First(ctx)
		if !errors.Is(err, d1q.ErrNoRows) {
			t.Errorf("expected ErrNoRows, got %v", err)
		}
	})

	t.Run("Single fetches two rows and demands exactly one", func(t *testing.T) {
		exec := &fakeExec{rows: []d1q.Row{{"id": int64(1)}, {"id": int64(2)}}}
		_, err := d1q.From[user](exec, schema.T("users")).Single(ctx)
		if !errors.Is(err, d1q.ErrMultipleRows) {
			t.Errorf("expected ErrMultipleRows, got %v", err)
		}
		if exec.lastSQL != `SELECT * FROM "users" LIMIT 2` {
			t.Errorf("unexpected SQL: %s", exec.lastSQL)
		}

		exec.rows = nil
		_, err = d1q.From[user](exec, schema.T("users")).Single(ctx)
		if !errors.Is(err, d1q.ErrNoRows) {
			t.Errorf("expected ErrNoRows, got %v", err)
		}
	})

	t.Run("Count and Any compile derived SQL", func(t *testing.T) {
		exec := &fakeExec{rows: []d1q.Row{{"COUNT(*)": int64(3)}}}
		n, err := d1q.From[user](exec, schema.T("users")).
			Where(d1q.C(schema.F("active"), d1q.EQ, true)).
			Count(ctx)
		if err != nil {
			t.Fatalf("Count: %v", err)
		}
		if n != 3 {
			t.Errorf("expected 3, got %d", n)
		}
		if exec.lastSQL != `SELECT COUNT(*) FROM "users" WHERE "active" = ?` {
			t.Errorf("unexpected SQL: %s", exec.lastSQL)
		}

		exec.rows = []d1q.Row{{"exists": int64(1)}}
		ok, err := d1q.From[user](exec, schema.T("users")).Any(ctx)
		if err != nil {
			t.Fatalf("Any: %v", err)
		}
		if !ok {
			t.Error("expected true")
		}
	})

	t.Run("Stream yields entities and restarts per call", func(t *testing.T) {
		exec := &fakeExec{rows: []d1q.Row{
			{"id": int64(1), "name": "Ada"},
			{"id": int64(2), "name": "Grace"},
		}}
		q := d1q.From[user](exec, schema.T("users"))
		for round := 0; round < 2; round++ {
			var names []string
			for u, err := range q.Stream(ctx) {
				if err != nil {
					t.Fatalf("Stream: %v", err)
				}
				names = append(names, u.Name)
			}
			if len(names) != 2 || names[0] != "Ada" {
				t.Errorf("round %d: unexpected names %v", round, names)
			}
		}
	})

	t.Run("Stream stops early when the consumer breaks", func(t *testing.T) {
		exec := &fakeExec{rows: []d1q.Row{
			{"id": int64(1)}, {"id": int64(2)}, {"id": int64(3)},
		}}
		var seen int
		for range d1q.From[user](exec, schema.T("users")).Stream(context.Background()) {
			seen++
			if seen == 1 {
				break
			}
		}
		if seen != 1 {
			t.Errorf("expected 1 row, saw %d", seen)
		}
	})
}

func TestRowQuery(t *testing.T) {
	schema := testSchema(t)
	exec := &fakeExec{}

	t.Run("projection with computed column", func(t *testing.T) {
		compiled, err := d1q.From[user](exec, schema.T("users")).
			Where(d1q.C(schema.F("active"), d1q.EQ, true)).
			Select(
				d1q.Col(schema.F("name")),
				d1q.Computed(d1q.Mul(d1q.ColE(schema.F("age")), d1q.Val(2)), "double_age"),
			).
			OrderBy(schema.F("name")).
			Compile()
		if err != nil {
			t.Fatalf("Compile: %v", err)
		}
		want := `SELECT "name" AS "name", ("age" * ?) AS "double_age" FROM "users" WHERE "active" = ? ORDER BY "name" ASC`
		if compiled.SQL() != want {
			t.Errorf("SQL mismatch\n got: %s\nwant: %s", compiled.SQL(), want)
		}
		if compiled.Shape() != "d1q.Row" {
			t.Errorf("unexpected shape %q", compiled.Shape())
		}
	})

	t.Run("ordering with tiebreakers after Select", func(t *testing.T) {
		compiled, err := d1q.From[user](exec, schema.T("users")).
			Select(d1q.Col(schema.F("name")), d1q.Col(schema.F("age"))).
			OrderBy(schema.F("age")).
			ThenByDesc(schema.F("name")).
			Compile()
		if err != nil {
			t.Fatalf("Compile: %v", err)
		}
		want := `SELECT "name" AS "name", "age" AS "age" FROM "users" ORDER BY "age" ASC, "name" DESC`
		if compiled.SQL() != want {
			t.Errorf("SQL mismatch\n got: %s\nwant: %s", compiled.SQL(), want)
		}
	})

	t.Run("ThenBy without OrderBy after Select is a build error", func(t *testing.T) {
		_, err := d1q.From[user](exec, schema.T("users")).
			Select(d1q.Col(schema.F("name"))).
			ThenBy(schema.F("age")).
			Compile()
		if err == nil {
			t.Fatal("expected error for ThenBy without OrderBy")
		}
	})

	t.Run("empty Select is rejected", func(t *testing.T) {
		if _, err := d1q.From[user](exec, schema.T("users")).Select().Compile(); err == nil {
			t.Fatal("expected error for empty Select")
		}
	})
}

func TestJoinQuery(t *testing.T) {
	schema := testSchema(t)
	exec := &fakeExec{}

	t.Run("join requires explicit projection", func(t *testing.T) {
		_, err := d1q.From[user](exec, schema.T("users")).
			Join(schema.T("orders"), schema.F("id"), schema.F("user_id")).
			Compile()
		if err == nil {
			t.Fatal("expected error for join without projection")
		}
	})

	t.Run("qualified columns on both sides", func(t *testing.T) {
		q := d1q.From[user](exec, schema.T("users")).
			Join(schema.T("orders"), schema.F("id"), schema.F("user_id"))
		compiled, err := q.
			Where(d1q.C(q.Inner(schema.F("status")), d1q.EQ, "paid")).
			Select(
				d1q.Col(q.Outer(schema.F("name"))),
				d1q.ColAs(q.Inner(schema.F("total")), "order_total"),
			).
			OrderByDesc(q.Inner(schema.F("total"))).
			Compile()
		if err != nil {
			t.Fatalf("Compile: %v", err)
		}
		want := `SELECT "users"."name" AS "name", "orders"."total" AS "order_total" FROM "users" INNER JOIN "orders" ON "users"."id" = "orders"."user_id" WHERE "orders"."status" = ? ORDER BY "orders"."total" DESC`
		if compiled.SQL() != want {
			t.Errorf("SQL mismatch\n got: %s\nwant: %s", compiled.SQL(), want)
		}
	})

	t.Run("join ordering with descending tiebreaker", func(t *testing.T) {
		q := d1q.From[user](exec, schema.T("users")).
			Join(schema.T("orders"), schema.F("id"), schema.F("user_id"))
		compiled, err := q.
			Select(d1q.Col(q.Outer(schema.F("name")))).
			OrderBy(q.Inner(schema.F("status"))).
			ThenByDesc(q.Inner(schema.F("total"))).
			Compile()
		if err != nil {
			t.Fatalf("Compile: %v", err)
		}
		want := `SELECT "users"."name" AS "name" FROM "users" INNER JOIN "orders" ON "users"."id" = "orders"."user_id" ORDER BY "orders"."status" ASC, "orders"."total" DESC`
		if compiled.SQL() != want {
			t.Errorf("SQL mismatch\n got: %s\nwant: %s", compiled.SQL(), want)
		}
	})

	t.Run("left join keeps unmatched outer rows", func(t *testing.T) {
		q := d1q.From[user](exec, schema.T("users")).
			LeftJoin(schema.T("orders"), schema.F("id"), schema.F("user_id"))
		compiled, err := q.
			Select(d1q.Col(q.Outer(schema.F("name"))), d1q.Col(q.Inner(schema.F("total")))).
			Compile()
		if err != nil {
			t.Fatalf("Compile: %v", err)
		}
		want := `SELECT "users"."name" AS "name", "orders"."total" AS "total" FROM "users" LEFT JOIN "orders" ON "users"."id" = "orders"."user_id"`
		if compiled.SQL() != want {
			t.Errorf("SQL mismatch\n got: %s\nwant: %s", compiled.SQL(), want)
		}
	})
}

func TestGroupQuery(t *testing.T) {
	schema := testSchema(t)
	exec := &fakeExec{}

	t.Run("keys, aggregates, having, ordering by alias", func(t *testing.T) {
		compiled, err := d1q.From[user](exec, schema.T("orders")).
			Where(d1q.C(schema.F("status"), d1q.EQ, "paid")).
			GroupBy(schema.F("user_id")).
			Select(
				d1q.Key(schema.F("user_id")),
				d1q.Agg(d1q.CountAll(), "n"),
				d1q.Agg(d1q.Sum(d1q.ColE(schema.F("total"))), "revenue"),
			).
			Having(d1q.AggC(d1q.CountAll(), d1q.GT, 2)).
			OrderByDesc(d1q.Field{Name: "revenue"}).
			Compile()
		if err != nil {
			t.Fatalf("Compile: %v", err)
		}
		want := `SELECT "user_id" AS "user_id", COUNT(*) AS "n", SUM("total") AS "revenue" FROM "orders" WHERE "status" = ? GROUP BY "user_id" HAVING COUNT(*) > ? ORDER BY "revenue" DESC`
		if compiled.SQL() != want {
			t.Errorf("SQL mismatch\n got: %s\nwant: %s", compiled.SQL(), want)
		}
	})

	t.Run("default selection is the bare keys", func(t *testing.T) {
		compiled, err := d1q.From[user](exec, schema.T("orders")).
			GroupBy(schema.F("user_id")).
			Compile()
		if err != nil {
			t.Fatalf("Compile: %v", err)
		}
		want := `SELECT "user_id" AS "user_id" FROM "orders" GROUP BY "user_id"`
		if compiled.SQL() != want {
			t.Errorf("SQL mismatch\n got: %s\nwant: %s", compiled.SQL(), want)
		}
	})

	t.Run("GroupBy without keys is rejected", func(t *testing.T) {
		if _, err := d1q.From[user](exec, schema.T("orders")).GroupBy().Compile(); err == nil {
			t.Fatal("expected error for GroupBy without keys")
		}
	})
}

func TestSetQuery(t *testing.T) {
	schema := testSchema(t)
	exec := &fakeExec{}

	base := func() *d1q.Query[user] {
		return d1q.From[user](exec, schema.T("users"))
	}

	t.Run("union with trailing clauses", func(t *testing.T) {
		compiled, err := base().Where(d1q.C(schema.F("city"), d1q.EQ, "Oslo")).
			Union(base().Where(d1q.C(schema.F("city"), d1q.EQ, "Bergen"))).
			OrderBy(schema.F("name")).
			Take(10).
			Compile()
		if err != nil {
			t.Fatalf("Compile: %v", err)
		}
		want := `SELECT * FROM "users" WHERE "city" = ? UNION SELECT * FROM "users" WHERE "city" = ? ORDER BY "name" ASC LIMIT 10`
		if compiled.SQL() != want {
			t.Errorf("SQL mismatch\n got: %s\nwant: %s", compiled.SQL(), want)
		}
	})

	t.Run("paginated operand is wrapped", func(t *testing.T) {
		compiled, err := base().OrderByDesc(schema.F("age")).Take(3).
			UnionAll(base().Where(d1q.C(schema.F("active"), d1q.EQ, true))).
			Compile()
		if err != nil {
			t.Fatalf("Compile: %v", err)
		}
		want := `SELECT * FROM (SELECT * FROM "users" ORDER BY "age" DESC LIMIT 3) AS sub UNION ALL SELECT * FROM "users" WHERE "active" = ?`
		if compiled.SQL() != want {
			t.Errorf("SQL mismatch\n got: %s\nwant: %s", compiled.SQL(), want)
		}
	})

	t.Run("operators chain in call order", func(t *testing.T) {
		compiled, err := base().
			Intersect(base().Where(d1q.C(schema.F("active"), d1q.EQ, true))).
			Except(base().Where(d1q.C(schema.F("age"), d1q.LT, 18))).
			Compile()
		if err != nil {
			t.Fatalf("Compile: %v", err)
		}
		want := `SELECT * FROM "users" INTERSECT SELECT * FROM "users" WHERE "active" = ? EXCEPT SELECT * FROM "users" WHERE "age" < ?`
		if compiled.SQL() != want {
			t.Errorf("SQL mismatch\n got: %s\nwant: %s", compiled.SQL(), want)
		}
	})

	t.Run("operand build errors propagate", func(t *testing.T) {
		bad := base().ThenBy(schema.F("id"))
		if _, err := base().Union(bad).Compile(); err == nil {
			t.Fatal("expected operand error to propagate")
		}
	})
}

func TestWriteBuilders(t *testing.T) {
	schema := testSchema(t)
	ctx := context.Background()

	t.Run("insert", func(t *testing.T) {
		exec := &fakeExec{}
		compiled, err := d1q.InsertInto(exec, schema.T("users")).
			Value(schema.F("name"), "Ada").
			Value(schema.F("age"), 36).
			NextRow().
			Value(schema.F("name"), "Grace").
			Value(schema.F("age"), 45).
			Compile()
		if err != nil {
			t.Fatalf("Compile: %v", err)
		}
		want := `INSERT INTO "users" ("age", "name") VALUES (?, ?), (?, ?)`
		if compiled.SQL() != want {
			t.Errorf("SQL mismatch\n got: %s\nwant: %s", compiled.SQL(), want)
		}
	})

	t.Run("duplicate column in one row is a build error", func(t *testing.T) {
		exec := &fakeExec{}
		_, err := d1q.InsertInto(exec, schema.T("users")).
			Value(schema.F("name"), "Ada").
			Value(schema.F("name"), "Grace").
			Compile()
		if err == nil {
			t.Fatal("expected error for duplicate column")
		}
	})

	t.Run("update", func(t *testing.T) {
		exec := &fakeExec{}
		_, err := d1q.UpdateTable(exec, schema.T("users")).
			Set(schema.F("city"), "Oslo").
			Set(schema.F("active"), false).
			Where(d1q.C(schema.F("id"), d1q.EQ, 7)).
			Exec(ctx)
		if err != nil {
			t.Fatalf("Exec: %v", err)
		}
		want := `UPDATE "users" SET "active" = ?, "city" = ? WHERE "id" = ?`
		if exec.lastSQL != want {
			t.Errorf("SQL mismatch\n got: %s\nwant: %s", exec.lastSQL, want)
		}
	})

	t.Run("delete", func(t *testing.T) {
		exec := &fakeExec{}
		_, err := d1q.DeleteFrom(exec, schema.T("users")).
			Where(d1q.C(schema.F("active"), d1q.EQ, false)).
			Exec(ctx)
		if err != nil {
			t.Fatalf("Exec: %v", err)
		}
		want := `DELETE FROM "users" WHERE "active" = ?`
		if exec.lastSQL != want {
			t.Errorf("SQL mismatch\n got: %s\nwant: %s", exec.lastSQL, want)
		}
	})
}

func TestSchemaValidation(t *testing.T) {
	schema := testSchema(t)

	t.Run("unknown table panics through T", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("expected panic for unknown table")
			}
		}()
		schema.T("missing")
	})

	t.Run("unknown column errors through TryF", func(t *testing.T) {
		if _, err := schema.TryF("missing"); err == nil {
			t.Error("expected error for unknown column")
		}
	})

	t.Run("RegisterEntity declares columns from struct fields", func(t *testing.T) {
		type invoice struct {
			ID       int64 `db:"id"`
			Total    float64
			Internal string `db:"-"`
		}
		if err := d1q.RegisterEntity[invoice](schema, "invoices"); err != nil {
			t.Fatalf("RegisterEntity: %v", err)
		}
		if _, err := schema.TryT("invoices"); err != nil {
			t.Errorf("table not registered: %v", err)
		}
		if _, err := schema.TryF("total"); err != nil {
			t.Errorf("column not registered: %v", err)
		}
	})
}
