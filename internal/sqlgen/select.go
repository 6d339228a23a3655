// Package sqlgen translates query plans into SQLite SQL text plus an
// ordered positional argument list. Translation is pure and
// deterministic: identical plans with identical literal values always
// produce byte-identical SQL and arguments.
package sqlgen

import (
	"strconv"

	"github.com/jdtoon/d1q/internal/qast"
)

// Select compiles a plan to a full SELECT statement.
func Select(p *qast.Plan) (string, []any, error) {
	if err := p.Validate(); err != nil {
		return "", nil, NewTranslationError("plan", err.Error())
	}
	w := &writer{}
	if err := renderSelect(p, w); err != nil {
		return "", nil, err
	}
	sql, args := w.result()
	return sql, args, nil
}

// Count compiles the plan's derived COUNT form. A grouped plan counts
// groups, not rows: the grouped SELECT is wrapped as a subquery and
// its rows counted. Distinct, Take and Skip are not consulted; the
// count covers the unpaginated row set.
func Count(p *qast.Plan) (string, []any, error) {
	if err := p.Validate(); err != nil {
		return "", nil, NewTranslationError("plan", err.Error())
	}
	w := &writer{}
	if len(p.GroupBy) > 0 {
		w.str("SELECT COUNT(*) FROM (")
		if err := renderSelect(p, w); err != nil {
			return "", nil, err
		}
		w.str(") AS sub")
		sql, args := w.result()
		return sql, args, nil
	}

	w.str("SELECT COUNT(*) FROM ")
	w.str(renderTable(p.Table))
	if err := renderJoin(p, w); err != nil {
		return "", nil, err
	}
	if err := renderWhere(p.Where, w); err != nil {
		return "", nil, err
	}
	sql, args := w.result()
	return sql, args, nil
}

// Exists compiles the plan's derived EXISTS form. A grouped plan asks
// whether any group survives HAVING, so the full grouped SELECT is
// wrapped as a subquery the same way Count wraps it. Distinct, Take
// and Skip are not consulted; existence covers the unpaginated row
// set.
func Exists(p *qast.Plan) (string, []any, error) {
	if err := p.Validate(); err != nil {
		return "", nil, NewTranslationError("plan", err.Error())
	}
	w := &writer{}
	if len(p.GroupBy) > 0 {
		w.str("SELECT EXISTS(SELECT 1 FROM (")
		if err := renderSelect(p, w); err != nil {
			return "", nil, err
		}
		w.str(") AS sub)")
		sql, args := w.result()
		return sql, args, nil
	}

	w.str("SELECT EXISTS(SELECT 1 FROM ")
	w.str(renderTable(p.Table))
	if err := renderJoin(p, w); err != nil {
		return "", nil, err
	}
	if err := renderWhere(p.Where, w); err != nil {
		return "", nil, err
	}
	w.str(")")
	sql, args := w.result()
	return sql, args, nil
}

// First compiles the plan with a forced LIMIT of limit rows, used by
// the First/Single terminals instead of post-filtering in memory.
func First(p *qast.Plan, limit int) (string, []any, error) {
	clone := *p
	clone.Take = &limit
	clone.Skip = p.Skip
	return Select(&clone)
}

func renderSelect(p *qast.Plan, w *writer) error {
	if p.Join != nil && len(p.Projections) == 0 && len(p.GroupSels) == 0 {
		return NewTranslationError("join", "joined queries require an explicit projection")
	}

	w.str("SELECT ")
	if p.Distinct {
		w.str("DISTINCT ")
	}

	switch {
	case len(p.GroupSels) > 0:
		for i, sel := range p.GroupSels {
			if i > 0 {
				w.str(", ")
			}
			if err := renderGroupSelection(sel, w); err != nil {
				return err
			}
		}
	default:
		if err := renderSelectList(p.Projections, w); err != nil {
			return err
		}
	}

	w.str(" FROM ")
	w.str(renderTable(p.Table))

	if err := renderJoin(p, w); err != nil {
		return err
	}
	if err := renderWhere(p.Where, w); err != nil {
		return err
	}
	if err := renderGroupBy(p, w); err != nil {
		return err
	}
	if err := renderHaving(p.Having, w); err != nil {
		return err
	}
	renderOrdering(p.Ordering, w)
	renderPagination(p.Take, p.Skip, w)
	return nil
}

func renderJoin(p *qast.Plan, w *writer) error {
	if p.Join == nil {
		return nil
	}
	j := p.Join
	w.str(" " + string(j.Kind) + " ")
	w.str(renderTable(j.Table))
	w.str(" ON ")
	w.str(renderField(j.OuterKey.Qualified(p.Table.Name)))
	w.str(" = ")
	w.str(renderField(j.InnerKey.Qualified(j.Table.Name)))
	return nil
}

func renderGroupBy(p *qast.Plan, w *writer) error {
	if len(p.GroupBy) == 0 {
		return nil
	}
	w.str(" GROUP BY ")
	for i, f := range p.GroupBy {
		if i > 0 {
			w.str(", ")
		}
		w.str(renderField(f))
	}
	return nil
}

func renderOrdering(ordering []qast.OrderBy, w *writer) {
	if len(ordering) == 0 {
		return
	}
	w.str(" ORDER BY ")
	for i, o := range ordering {
		if i > 0 {
			w.str(", ")
		}
		w.str(renderField(o.Field) + " " + string(o.Direction))
	}
}

// renderPagination emits LIMIT/OFFSET. OFFSET without LIMIT still
// needs a LIMIT clause in this dialect; -1 is SQLite's unlimited
// marker.
func renderPagination(take, skip *int, w *writer) {
	switch {
	case take != nil:
		w.str(" LIMIT " + strconv.Itoa(*take))
	case skip != nil:
		w.str(" LIMIT -1")
	}
	if skip != nil {
		w.str(" OFFSET " + strconv.Itoa(*skip))
	}
}
