package orarec

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/samber/lo"
)

// RecordType is the descriptor of a PL/SQL RECORD declared in a package
// spec, obtained from the data dictionary and used as a type tag when
// binding record parameters
type RecordType struct {
	// Name qualified as PKG.REC or OWNER.PKG.REC, always upper case
	Name   string
	Fields []RecordField
}

// RecordField one attribute of a RECORD, ordered by Position
type RecordField struct {
	Name     string
	TypeName string
	Length   int
	Position int
}

// Record an instance of a RecordType, field values keyed by upper case
// field name
type Record struct {
	typ    *RecordType
	values map[string]any
}

// attribute row scanned from ALL_PLSQL_TYPE_ATTRS
type typeAttrRow struct {
	AttrName     string        `db:"ATTR_NAME"`
	AttrTypeName string        `db:"ATTR_TYPE_NAME"`
	AttrNo       int           `db:"ATTR_NO"`
	Length       sql.NullInt64 `db:"LENGTH"`
}

const describeQuery = `select attr_name, attr_type_name, attr_no, length
  from all_plsql_type_attrs
 where package_name = :1 and type_name = :2
 order by attr_no`

const describeQueryWithOwner = `select attr_name, attr_type_name, attr_no, length
  from all_plsql_type_attrs
 where owner = :1 and package_name = :2 and type_name = :3
 order by attr_no`

// DescribeRecordType resolves a qualified PL/SQL record type name to its
// descriptor, results are cached per connection
// Parameters:
// @qualifiedName: PKG.REC or OWNER.PKG.REC, case-insensitive
func (c *Connection) DescribeRecordType(qualifiedName string) (*RecordType, error) {
	owner, pkg, typ, err := parseQualifiedName(qualifiedName)
	if err != nil {
		return nil, err
	}
	key := qualifiedKey(owner, pkg, typ)

	c.lock.Lock()
	if cached, ok := c.types[key]; ok {
		c.lock.Unlock()
		return cached, nil
	}
	c.lock.Unlock()

	c.log.Info().Msgf("+++ Describing record type [%v]", key)

	var rows []typeAttrRow
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout())
	defer cancel()
	if owner == "" {
		err = c.run.SelectContext(ctx, &rows, describeQuery, pkg, typ)
	} else {
		err = c.run.SelectContext(ctx, &rows, describeQueryWithOwner, owner, pkg, typ)
	}
	if err != nil {
		c.log.Err(err).Msgf("Error describing record type [%v]", key)
		return nil, err
	}
	if len(rows) == 0 {
		return nil, TypeNotFoundErr(key)
	}

	rt := &RecordType{
		Name: key,
		Fields: lo.Map(rows, func(r typeAttrRow, _ int) RecordField {
			return RecordField{
				Name:     strings.ToUpper(r.AttrName),
				TypeName: r.AttrTypeName,
				Length:   int(r.Length.Int64),
				Position: r.AttrNo,
			}
		}),
	}

	c.lock.Lock()
	c.types[key] = rt
	c.lock.Unlock()
	return rt, nil
}

// NewRecord creates an empty instance of the record type
func (t *RecordType) NewRecord() *Record {
	return &Record{
		typ:    t,
		values: make(map[string]any, len(t.Fields)),
	}
}

// field looks up a field descriptor by upper case name
func (t *RecordType) field(name string) (RecordField, bool) {
	return lo.Find(t.Fields, func(f RecordField) bool { return f.Name == name })
}

// Type returns the descriptor the record was built from
func (r *Record) Type() *RecordType {
	return r.typ
}

// Set assigns a field value, the field must exist on the record type
func (r *Record) Set(field string, value any) error {
	name := strings.ToUpper(strings.TrimSpace(field))
	if _, ok := r.typ.field(name); !ok {
		return UnknownFieldErr(r.typ.Name, name)
	}
	r.values[name] = value
	return nil
}

// Get returns a field value and whether it was set
func (r *Record) Get(field string) (any, bool) {
	v, ok := r.values[strings.ToUpper(strings.TrimSpace(field))]
	return v, ok
}

// String prints the record in declaration order as {NAME: v, POS: v}
func (r *Record) String() string {
	parts := lo.Map(r.typ.Fields, func(f RecordField, _ int) string {
		return fmt.Sprintf("%s: %v", f.Name, r.values[f.Name])
	})
	return "{" + strings.Join(parts, ", ") + "}"
}

// Parser generic function to convert a Record to a structure
// Parameters:
// @source: Record that contains the data
func Parser[T any](source *Record) (T, error) {
	var empty T
	var data T
	err := mapstructure.Decode(source.values, &data)
	if err != nil {
		return empty, err
	}
	return data, nil
}

// parseQualifiedName splits PKG.REC or OWNER.PKG.REC, upper casing every part
func parseQualifiedName(qualified string) (owner, pkg, typ string, err error) {
	parts := strings.Split(strings.ToUpper(strings.TrimSpace(qualified)), ".")
	switch len(parts) {
	case 2:
		return "", parts[0], parts[1], nil
	case 3:
		return parts[0], parts[1], parts[2], nil
	default:
		return "", "", "", BadQualifiedNameErr(qualified)
	}
}

func qualifiedKey(owner, pkg, typ string) string {
	if owner == "" {
		return pkg + "." + typ
	}
	return owner + "." + pkg + "." + typ
}
