package main

import (
	"errors"
	"testing"

	"github.com/ramzyrsr/orarec"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeConnector applies the demo procedure's transformation, NAME is
// echoed and POS doubled
type fakeConnector struct {
	typ         *orarec.RecordType
	ddl         []string
	ddlErrs     []error
	describeErr error
	callErr     error
	calls       []string
	batchIns    []any
	closed      int
}

func newFakeConnector() *fakeConnector {
	return &fakeConnector{
		typ: &orarec.RecordType{
			Name: recTypeName,
			Fields: []orarec.RecordField{
				{Name: "NAME", TypeName: "VARCHAR2", Length: 40, Position: 1},
				{Name: "POS", TypeName: "NUMBER", Position: 2},
			},
		},
	}
}

func (f *fakeConnector) ExecuteDDL(stmt string) orarec.Result {
	i := len(f.ddl)
	f.ddl = append(f.ddl, stmt)
	if i < len(f.ddlErrs) && f.ddlErrs[i] != nil {
		return orarec.Result{Error: f.ddlErrs[i]}
	}
	return orarec.Result{}
}

func (f *fakeConnector) DescribeRecordType(name string) (*orarec.RecordType, error) {
	if f.describeErr != nil {
		return nil, f.describeErr
	}
	return f.typ, nil
}

func (f *fakeConnector) CallRecord(proc string, params ...*orarec.RecordParam) orarec.RecordResult {
	f.calls = append(f.calls, proc)
	if f.callErr != nil {
		return orarec.RecordResult{Error: f.callErr}
	}
	return orarec.RecordResult{Outs: map[string]*orarec.Record{
		params[1].Name: f.transform(params[0].Value),
	}}
}

func (f *fakeConnector) CallRecordMany(proc string, in *orarec.RecordParam, rows []any, out *orarec.RecordParam) orarec.BatchResult {
	f.batchIns = append(f.batchIns, rows...)
	if f.callErr != nil {
		return orarec.BatchResult{Error: f.callErr}
	}
	res := orarec.BatchResult{}
	for _, row := range rows {
		res.Outs = append(res.Outs, f.transform(row))
	}
	return res
}

func (f *fakeConnector) Ping() error { return nil }

func (f *fakeConnector) Close() { f.closed++ }

func (f *fakeConnector) transform(value any) *orarec.Record {
	var name, pos any
	switch v := value.(type) {
	case *orarec.Record:
		name, _ = v.Get("NAME")
		pos, _ = v.Get("POS")
	case map[string]any:
		name = v["NAME"]
		pos = v["POS"]
	}
	rec := f.typ.NewRecord()
	_ = rec.Set("NAME", name)
	_ = rec.Set("POS", double(pos))
	return rec
}

func double(v any) float64 {
	switch n := v.(type) {
	case int:
		return float64(n) * 2
	case float64:
		return n * 2
	}
	return 0
}

func nopLogger() *zerolog.Logger {
	log := zerolog.Nop()
	return &log
}

func TestDemoRunsAllBindingStyles(t *testing.T) {
	f := newFakeConnector()

	err := demo(f, nopLogger())
	require.NoError(t, err)

	assert.Len(t, f.ddl, 2)
	assert.Equal(t, []string{procName, procName, procName}, f.calls)
	assert.Len(t, f.batchIns, 2)
	// demo itself never closes, that belongs to runDemo
	assert.Zero(t, f.closed)
}

func TestDemoContinuesAfterFirstDDLFailure(t *testing.T) {
	f := newFakeConnector()
	f.ddlErrs = []error{errors.New("ORA-00955: name is already used")}

	err := demo(f, nopLogger())
	require.NoError(t, err)

	// the second setup statement was still attempted
	assert.Len(t, f.ddl, 2)
	assert.Len(t, f.calls, 3)
}

func TestRunDemoConnectFailureSkipsEverything(t *testing.T) {
	f := newFakeConnector()
	connects := 0

	runDemo(func() (orarec.Connector, error) {
		connects++
		return nil, errors.New("ORA-12541: no listener")
	}, nopLogger())

	assert.Equal(t, 1, connects)
	assert.Empty(t, f.ddl)
	assert.Empty(t, f.calls)
	assert.Zero(t, f.closed)
}

func TestRunDemoClosesOnceOnCallError(t *testing.T) {
	f := newFakeConnector()
	f.callErr = errors.New("ORA-06550: wrong number of arguments")

	runDemo(func() (orarec.Connector, error) { return f, nil }, nopLogger())

	// first call sequence failed, the remaining ones were not attempted
	assert.Len(t, f.calls, 1)
	assert.Empty(t, f.batchIns)
	assert.Equal(t, 1, f.closed)
}

func TestRunDemoClosesOnceOnSuccess(t *testing.T) {
	f := newFakeConnector()

	runDemo(func() (orarec.Connector, error) { return f, nil }, nopLogger())

	assert.Equal(t, 1, f.closed)
}

func TestRunDemoClosesOnDescribeFailure(t *testing.T) {
	f := newFakeConnector()
	f.describeErr = errors.New("ORA-00942: table or view does not exist")

	runDemo(func() (orarec.Connector, error) { return f, nil }, nopLogger())

	assert.Len(t, f.ddl, 2)
	assert.Empty(t, f.calls)
	assert.Equal(t, 1, f.closed)
}
