package sqlgen

import (
	"sort"

	"github.com/jdtoon/d1q/internal/qast"
)

// Insert compiles an INSERT of one or more rows. Columns are emitted
// in sorted order for deterministic output; every row set must cover
// the same columns.
func Insert(table qast.Table, rows []map[qast.Field]any) (string, []any, error) {
	if table.Name == "" {
		return "", nil, NewTranslationError("INSERT", "target table is required")
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return "", nil, NewTranslationError("INSERT", "at least one value is required")
	}

	fields := make([]qast.Field, 0, len(rows[0]))
	for f := range rows[0] {
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool {
		return fields[i].Name < fields[j].Name
	})

	w := &writer{}
	w.str("INSERT INTO ")
	w.str(renderTable(table))
	w.str(" (")
	for i, f := range fields {
		if i > 0 {
			w.str(", ")
		}
		w.str(quoteIdentifier(f.Name))
	}
	w.str(") VALUES ")

	for i, row := range rows {
		if len(row) != len(fields) {
			return "", nil, NewTranslationError("INSERT", "value sets cover different columns")
		}
		if i > 0 {
			w.str(", ")
		}
		w.str("(")
		for j, f := range fields {
			v, ok := row[f]
			if !ok {
				return "", nil, NewTranslationError("INSERT", "value sets cover different columns")
			}
			if j > 0 {
				w.str(", ")
			}
			w.param(v)
		}
		w.str(")")
	}

	sql, args := w.result()
	return sql, args, nil
}

// Update compiles an UPDATE with sorted SET columns and an optional
// AND-joined WHERE.
func Update(table qast.Table, sets map[qast.Field]any, where []qast.ConditionItem) (string, []any, error) {
	if table.Name == "" {
		return "", nil, NewTranslationError("UPDATE", "target table is required")
	}
	if len(sets) == 0 {
		return "", nil, NewTranslationError("UPDATE", "at least one SET column is required")
	}

	fields := make([]qast.Field, 0, len(sets))
	for f := range sets {
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool {
		return fields[i].Name < fields[j].Name
	})

	w := &writer{}
	w.str("UPDATE ")
	w.str(renderTable(table))
	w.str(" SET ")
	for i, f := range fields {
		if i > 0 {
			w.str(", ")
		}
		w.str(quoteIdentifier(f.Name) + " = ")
		w.param(sets[f])
	}
	if err := renderWhere(where, w); err != nil {
		return "", nil, err
	}

	sql, args := w.result()
	return sql, args, nil
}

// Delete compiles a DELETE with an optional AND-joined WHERE.
func Delete(table qast.Table, where []qast.ConditionItem) (string, []any, error) {
	if table.Name == "" {
		return "", nil, NewTranslationError("DELETE", "target table is required")
	}

	w := &writer{}
	w.str("DELETE FROM ")
	w.str(renderTable(table))
	if err := renderWhere(where, w); err != nil {
		return "", nil, err
	}

	sql, args := w.result()
	return sql, args, nil
}
