package orarec

// CallRecord invokes a stored procedure whose arguments are PL/SQL
// records, each RecordParam describes one argument in declaration order.
// Output params receive a new record instance populated by the procedure,
// returned keyed by param name.
// Parameters:
// @proc Qualified procedure name
// @params Record arguments, type carried as descriptor or qualified name
func (c *Connection) CallRecord(proc string, params ...*RecordParam) RecordResult {
	c.log.Info().Msgf("+++ Hit CallRecord for [%v]", proc)

	if err := c.resolveTypes(params); err != nil {
		return RecordResult{Error: err}
	}

	block, binds, outs, err := buildRecordBlock(proc, params)
	if err != nil {
		return RecordResult{Error: err}
	}

	if res := c.Exec(block, binds); res.Error != nil {
		return RecordResult{Error: res.Error}
	}

	result := RecordResult{Outs: make(map[string]*Record, len(outs))}
	for _, b := range outs {
		result.Outs[b.param.Name] = b.record()
	}
	return result
}

// CallRecordMany invokes the procedure once per input row with a shared
// input definition and a shared output-binding definition, outputs are
// order preserving: Outs[i] corresponds to rows[i]. The first failing row
// aborts the batch.
// Parameters:
// @proc Qualified procedure name
// @in Input definition, its Value is ignored, rows supply the values
// @rows One *Record or mapping per execution
// @out Shared output-binding definition
func (c *Connection) CallRecordMany(proc string, in *RecordParam, rows []any, out *RecordParam) BatchResult {
	c.log.Info().Msgf("+++ Hit CallRecordMany for [%v] with [%v] rows", proc, len(rows))

	defs := []*RecordParam{in, out}
	if err := c.resolveTypes(defs); err != nil {
		return BatchResult{Error: err}
	}

	result := BatchResult{Outs: make([]*Record, 0, len(rows))}
	for i, row := range rows {
		params := []*RecordParam{
			{Name: in.Name, Type: in.Type, Value: row, Direction: Input},
			{Name: out.Name, Type: out.Type, Direction: Output},
		}
		block, binds, outs, err := buildRecordBlock(proc, params)
		if err != nil {
			result.Error = err
			return result
		}
		if res := c.Exec(block, binds); res.Error != nil {
			c.log.Err(res.Error).Msgf("Batch row [%v] failed", i)
			result.Error = res.Error
			return result
		}
		result.Outs = append(result.Outs, outs[0].record())
	}
	return result
}

// resolveTypes fills the descriptor of every name-only record param
// through the per-connection descriptor cache
func (c *Connection) resolveTypes(params []*RecordParam) error {
	for _, p := range params {
		if p.Type != nil {
			continue
		}
		if p.TypeName == "" {
			return UnboundTypeErr(p.Name)
		}
		t, err := c.DescribeRecordType(p.TypeName)
		if err != nil {
			return err
		}
		p.Type = t
	}
	return nil
}
