package d1q

import (
	"context"
	"fmt"
	"reflect"

	"github.com/jdtoon/d1q/internal/qast"
	"github.com/jdtoon/d1q/internal/sqlgen"
)

// InsertBuilder accumulates one or more rows for a single INSERT
// statement. Every row must set the same column set.
type InsertBuilder struct {
	exec  Executor
	table Table
	rows  []map[qast.Field]any
	err   error
}

// InsertInto starts an INSERT into the table.
func InsertInto(exec Executor, t Table) *InsertBuilder {
	return &InsertBuilder{
		exec:  exec,
		table: t,
		rows:  []map[qast.Field]any{{}},
	}
}

// Value sets one column of the current row.
func (b *InsertBuilder) Value(f Field, v any) *InsertBuilder {
	if b.err != nil {
		return b
	}
	row := b.rows[len(b.rows)-1]
	if _, dup := row[f]; dup {
		b.err = fmt.Errorf("column %q set twice in one row", f.Name)
		return b
	}
	row[f] = v
	return b
}

// NextRow finishes the current row and starts another for a
// multi-row INSERT.
func (b *InsertBuilder) NextRow() *InsertBuilder {
	if b.err != nil {
		return b
	}
	if len(b.rows[len(b.rows)-1]) == 0 {
		b.err = fmt.Errorf("NextRow on an empty row")
		return b
	}
	b.rows = append(b.rows, map[qast.Field]any{})
	return b
}

// Compile translates the INSERT without executing it.
func (b *InsertBuilder) Compile() (*CompiledQuery, error) {
	if b.err != nil {
		return nil, b.err
	}
	sql, args, err := sqlgen.Insert(b.table, b.rows)
	if err != nil {
		return nil, err
	}
	return newCompiled(sql, args, rowShape), nil
}

// Exec runs the INSERT and reports affected rows and the last
// inserted row id.
func (b *InsertBuilder) Exec(ctx context.Context) (ExecResult, error) {
	compiled, err := b.Compile()
	if err != nil {
		return ExecResult{}, err
	}
	return compiled.Exec(ctx, b.exec)
}

// InsertOne inserts a single entity, deriving columns from the
// struct's exported fields through the same name mapping Materialize
// reads with. Fields tagged `db:"-"` are skipped.
func InsertOne[T any](ctx context.Context, exec Executor, t Table, entity T) (ExecResult, error) {
	rv := reflect.ValueOf(entity)
	if rv.Kind() != reflect.Struct {
		return ExecResult{}, fmt.Errorf("insert: %T is not a struct", entity)
	}

	row := map[qast.Field]any{}
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		col := columnForStructField(sf)
		if col == "" {
			continue
		}
		row[qast.Field{Name: col}] = rv.Field(i).Interface()
	}

	sql, args, err := sqlgen.Insert(t, []map[qast.Field]any{row})
	if err != nil {
		return ExecResult{}, err
	}
	return exec.Exec(ctx, sql, args...)
}

// UpdateBuilder accumulates column assignments and predicates for an
// UPDATE statement.
type UpdateBuilder struct {
	exec  Executor
	table Table
	sets  map[qast.Field]any
	where []qast.ConditionItem
	err   error
}

// UpdateTable starts an UPDATE of the table.
func UpdateTable(exec Executor, t Table) *UpdateBuilder {
	return &UpdateBuilder{
		exec:  exec,
		table: t,
		sets:  map[qast.Field]any{},
	}
}

// Set assigns one column. Assignments are emitted in column-name
// order regardless of call order.
func (b *UpdateBuilder) Set(f Field, v any) *UpdateBuilder {
	if b.err != nil {
		return b
	}
	if _, dup := b.sets[f]; dup {
		b.err = fmt.Errorf("column %q assigned twice", f.Name)
		return b
	}
	b.sets[f] = v
	return b
}

// Where adds a predicate. Multiple calls conjoin with AND. An UPDATE
// without Where touches every row.
func (b *UpdateBuilder) Where(cond ConditionItem) *UpdateBuilder {
	if b.err != nil {
		return b
	}
	b.where = append(b.where, cond)
	return b
}

// Compile translates the UPDATE without executing it.
func (b *UpdateBuilder) Compile() (*CompiledQuery, error) {
	if b.err != nil {
		return nil, b.err
	}
	sql, args, err := sqlgen.Update(b.table, b.sets, b.where)
	if err != nil {
		return nil, err
	}
	return newCompiled(sql, args, rowShape), nil
}

// Exec runs the UPDATE and reports affected rows.
func (b *UpdateBuilder) Exec(ctx context.Context) (ExecResult, error) {
	compiled, err := b.Compile()
	if err != nil {
		return ExecResult{}, err
	}
	return compiled.Exec(ctx, b.exec)
}

// DeleteBuilder accumulates predicates for a DELETE statement.
type DeleteBuilder struct {
	exec  Executor
	table Table
	where []qast.ConditionItem
	err   error
}

// DeleteFrom starts a DELETE from the table.
func DeleteFrom(exec Executor, t Table) *DeleteBuilder {
	return &DeleteBuilder{exec: exec, table: t}
}

// Where adds a predicate. Multiple calls conjoin with AND. A DELETE
// without Where removes every row.
func (b *DeleteBuilder) Where(cond ConditionItem) *DeleteBuilder {
	if b.err != nil {
		return b
	}
	b.where = append(b.where, cond)
	return b
}

// Compile translates the DELETE without executing it.
func (b *DeleteBuilder) Compile() (*CompiledQuery, error) {
	if b.err != nil {
		return nil, b.err
	}
	sql, args, err := sqlgen.Delete(b.table, b.where)
	if err != nil {
		return nil, err
	}
	return newCompiled(sql, args, rowShape), nil
}

// Exec runs the DELETE and reports affected rows.
func (b *DeleteBuilder) Exec(ctx context.Context) (ExecResult, error) {
	compiled, err := b.Compile()
	if err != nil {
		return ExecResult{}, err
	}
	return compiled.Exec(ctx, b.exec)
}
