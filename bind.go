package orarec

import (
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	goOra "github.com/sijms/go-ora/v2"
)

// ParameterDirection defines the direction of the parameter
type ParameterDirection int

const (
	Input ParameterDirection = iota
	Output
	InOut
)

func (p ParameterDirection) String() string {
	return [...]string{"Input", "Output", "InputOutput"}[p]
}

// Param used to Exec a statement with scalar binds
type Param struct {
	Name      string
	Value     any
	Size      int
	Direction ParameterDirection
	// Dest receives the driver-written value for Output and InOut params
	Dest any
}

// RecordParam binds a PL/SQL record argument of a remote procedure, the
// type is carried either as a resolved descriptor or as a qualified name
// resolved at call time
type RecordParam struct {
	Name      string
	Type      *RecordType
	TypeName  string
	Value     any
	Direction ParameterDirection
}

// In binds an input record from a typed *Record instance or a plain
// field-name to value mapping, together with its descriptor
func In(name string, t *RecordType, value any) *RecordParam {
	return &RecordParam{
		Name:      name,
		Type:      t,
		Value:     value,
		Direction: Input,
	}
}

// InNamed binds an input record mapping together with the qualified name
// of its type instead of the descriptor object
func InNamed(name string, typeName string, value any) *RecordParam {
	return &RecordParam{
		Name:      name,
		TypeName:  typeName,
		Value:     value,
		Direction: Input,
	}
}

// Out defines an output binding that receives a new record instance
// populated by the remote procedure
func Out(name string, t *RecordType) *RecordParam {
	return &RecordParam{
		Name:      name,
		Type:      t,
		Direction: Output,
	}
}

// OutNamed is Out with the type carried by qualified name
func OutNamed(name string, typeName string) *RecordParam {
	return &RecordParam{
		Name:      name,
		TypeName:  typeName,
		Direction: Output,
	}
}

// outBinding ties an output RecordParam to the scalar destinations the
// driver writes, dests is parallel to the type's field list
type outBinding struct {
	param *RecordParam
	dests []any
}

// record assembles the populated output record from the destinations
func (b *outBinding) record() *Record {
	rec := b.param.Type.NewRecord()
	for i, f := range b.param.Type.Fields {
		rec.values[f.Name] = destValue(b.dests[i])
	}
	return rec
}

// buildParamsList takes a list of @Param and convert to the argument
// list recognized by go-ora, output params are wrapped in goOra.Out
// Parameters:
// @parameters List of parameters to convert
func buildParamsList(parameters []*Param) []any {
	values := make([]any, 0, len(parameters))
	for _, p := range parameters {
		switch p.Direction {
		case Output:
			values = append(values, goOra.Out{Dest: p.Dest, Size: p.Size})
		case InOut:
			values = append(values, goOra.Out{Dest: p.Dest, Size: p.Size, In: true})
		default:
			values = append(values, p.Value)
		}
	}
	return values
}

// buildRecordBlock compiles a procedure call with record arguments into an
// anonymous PL/SQL block over scalar binds: record locals are declared,
// input fields assigned from placeholders, the procedure invoked, output
// fields copied back into placeholder destinations. Every RecordParam must
// carry a resolved Type.
// Parameters:
// @proc Qualified procedure name, invoked with the records positionally
// @params Record arguments in procedure-declaration order
func buildRecordBlock(proc string, params []*RecordParam) (string, []*Param, []*outBinding, error) {
	var decl strings.Builder
	var body strings.Builder
	var binds []*Param
	var outs []*outBinding
	ph := 0

	locals := lo.Map(params, func(_ *RecordParam, i int) string { return fmt.Sprintf("r%d", i+1) })

	for i, p := range params {
		decl.WriteString(fmt.Sprintf("  %s %s;\n", locals[i], p.Type.Name))
		if p.Direction != Input {
			continue
		}
		values, err := recordValues(p)
		if err != nil {
			return "", nil, nil, err
		}
		for _, f := range p.Type.Fields {
			ph++
			body.WriteString(fmt.Sprintf("  %s.%s := :p%d;\n", locals[i], f.Name, ph))
			binds = append(binds, &Param{
				Name:      fmt.Sprintf("p%d", ph),
				Value:     values[f.Name],
				Direction: Input,
			})
		}
	}

	body.WriteString(fmt.Sprintf("  %s(%s);\n", proc, strings.Join(locals, ", ")))

	for i, p := range params {
		if p.Direction != Output {
			continue
		}
		b := &outBinding{param: p}
		for _, f := range p.Type.Fields {
			ph++
			body.WriteString(fmt.Sprintf("  :p%d := %s.%s;\n", ph, locals[i], f.Name))
			dest := newFieldDest(f)
			b.dests = append(b.dests, dest)
			binds = append(binds, &Param{
				Name:      fmt.Sprintf("p%d", ph),
				Size:      outFieldSize(f),
				Direction: Output,
				Dest:      dest,
			})
		}
		outs = append(outs, b)
	}

	block := "declare\n" + decl.String() + "begin\n" + body.String() + "end;"
	return block, binds, outs, nil
}

// recordValues extracts the field-name to value mapping of an input
// record param, mapping keys are upper-case normalized and must exist on
// the record type, missing fields bind NULL
func recordValues(p *RecordParam) (map[string]any, error) {
	switch v := p.Value.(type) {
	case *Record:
		if v.typ.Name != p.Type.Name {
			return nil, BadRecordValueErr(p.Name, fmt.Sprintf("*Record of type %s", v.typ.Name))
		}
		return v.values, nil
	case map[string]any:
		values := make(map[string]any, len(v))
		for k, val := range v {
			name := strings.ToUpper(strings.TrimSpace(k))
			if _, ok := p.Type.field(name); !ok {
				return nil, UnknownFieldErr(p.Type.Name, name)
			}
			values[name] = val
		}
		return values, nil
	case nil:
		return map[string]any{}, nil
	default:
		return nil, BadRecordValueErr(p.Name, p.Value)
	}
}

type fieldCategory int

const (
	categoryText fieldCategory = iota
	categoryNumber
	categoryTime
)

// categorize maps a dictionary ATTR_TYPE_NAME to the scalar kind the
// output destination must hold
func categorize(typeName string) fieldCategory {
	t := strings.ToUpper(strings.TrimSpace(typeName))
	switch {
	case strings.HasPrefix(t, "TIMESTAMP") || t == "DATE":
		return categoryTime
	case t == "NUMBER" || t == "FLOAT" || t == "INTEGER" || t == "DECIMAL" ||
		t == "BINARY_FLOAT" || t == "BINARY_DOUBLE" ||
		t == "PLS_INTEGER" || t == "BINARY_INTEGER":
		return categoryNumber
	default:
		return categoryText
	}
}

func newFieldDest(f RecordField) any {
	switch categorize(f.TypeName) {
	case categoryNumber:
		return new(float64)
	case categoryTime:
		return new(time.Time)
	default:
		return new(string)
	}
}

func outFieldSize(f RecordField) int {
	if f.Length > 0 {
		return f.Length
	}
	return 4000
}

func destValue(dest any) any {
	switch v := dest.(type) {
	case *string:
		return *v
	case *float64:
		return *v
	case *time.Time:
		return *v
	}
	return dest
}
