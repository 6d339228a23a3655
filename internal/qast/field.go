package qast

// Field is a resolved column reference: an optional owning-table
// qualifier plus a column name. Fields are created by the schema layer
// after name resolution, so a Field in a plan always names a real column.
// This is exported from the internal package so the base package can use
// it, but external users cannot construct unresolved references.
type Field struct {
	Name  string // column name (required)
	Table string // optional owning-table qualifier
}

// GetName returns the column name.
func (f Field) GetName() string {
	return f.Name
}

// GetTable returns the owning-table qualifier.
func (f Field) GetTable() string {
	return f.Table
}

// Qualified returns a copy of the field prefixed with the given table.
func (f Field) Qualified(table string) Field {
	f.Table = table
	return f
}

// Table is a validated source-table reference.
type Table struct {
	Name string
}

// GetName returns the table name.
func (t Table) GetName() string {
	return t.Name
}
