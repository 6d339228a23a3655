package d1q

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/zoobzio/dbml"
)

// Schema is a query-builder instance bound to a declared entity shape.
// Every property access in a predicate or projection must resolve
// through it; unresolved names are a build-time failure, not a runtime
// one.
type Schema struct {
	project *dbml.Project
	// Internal indexes for fast resolution
	tables map[string]*dbml.Table
	fields map[string]map[string]*dbml.Column // table -> column -> decl
}

// NewSchema creates a Schema from a DBML project.
func NewSchema(project *dbml.Project) (*Schema, error) {
	if project == nil {
		return nil, fmt.Errorf("project cannot be nil")
	}

	s := &Schema{
		project: project,
		tables:  make(map[string]*dbml.Table),
		fields:  make(map[string]map[string]*dbml.Column),
	}

	for _, table := range project.Tables {
		s.tables[table.Name] = table
		s.fields[table.Name] = make(map[string]*dbml.Column)
		for _, col := range table.Columns {
			s.fields[table.Name][col.Name] = col
		}
	}

	return s, nil
}

// RegisterEntity declares a table derived from a struct type: each
// exported field becomes a column named by its `db` tag, or by the
// default property-to-column mapping when the tag is absent. Fields
// tagged `db:"-"` are skipped.
func RegisterEntity[T any](s *Schema, tableName string) error {
	rt := reflect.TypeOf((*T)(nil)).Elem()
	if rt.Kind() != reflect.Struct {
		return fmt.Errorf("entity type %s is not a struct", rt)
	}

	table := dbml.NewTable(tableName)
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		col := columnForStructField(sf)
		if col == "" {
			continue
		}
		table.AddColumn(dbml.NewColumn(col, strings.ToLower(sf.Type.Name())))
	}
	if len(table.Columns) == 0 {
		return fmt.Errorf("entity type %s declares no columns", rt)
	}

	s.project.AddTable(table)
	s.tables[tableName] = table
	s.fields[tableName] = make(map[string]*dbml.Column)
	for _, col := range table.Columns {
		s.fields[tableName][col.Name] = col
	}
	return nil
}

// validateTable checks if a table exists in the schema.
func (s *Schema) validateTable(name string) error {
	if _, ok := s.tables[name]; !ok {
		return fmt.Errorf("table '%s' not found in schema", name)
	}
	return nil
}

// validateField checks if a column exists in any table in the schema.
func (s *Schema) validateField(name string) error {
	for _, tableFields := range s.fields {
		if _, ok := tableFields[name]; ok {
			return nil
		}
	}
	return fmt.Errorf("column '%s' not found in schema", name)
}

// TryT creates a validated table reference, returning an error if the
// table is not declared.
func (s *Schema) TryT(name string) (Table, error) {
	if err := s.validateTable(name); err != nil {
		return Table{}, fmt.Errorf("invalid table: %w", err)
	}
	return Table{Name: name}, nil
}

// T creates a validated table reference.
func (s *Schema) T(name string) Table {
	t, err := s.TryT(name)
	if err != nil {
		panic(err)
	}
	return t
}

// TryF creates a validated column reference, returning an error if no
// declared table carries the column.
func (s *Schema) TryF(name string) (Field, error) {
	if err := s.validateField(name); err != nil {
		return Field{}, fmt.Errorf("invalid column: %w", err)
	}
	return Field{Name: name}, nil
}

// F creates a validated column reference.
func (s *Schema) F(name string) Field {
	f, err := s.TryF(name)
	if err != nil {
		panic(err)
	}
	return f
}

// TryFP resolves an entity property name (e.g. FirstName) to its
// column reference through the default name mapping.
func (s *Schema) TryFP(property string) (Field, error) {
	return s.TryF(ColumnFor(property))
}

// FP resolves an entity property name to its column reference.
func (s *Schema) FP(property string) Field {
	f, err := s.TryFP(property)
	if err != nil {
		panic(err)
	}
	return f
}
