package main

import (
	"fmt"

	"github.com/ramzyrsr/orarec"
	"github.com/rs/zerolog"
)

const (
	recTypeName = "REC_DEMO.SHAPE_REC"
	procName    = "rec_demo.double_pos"
)

var setupStatements = []string{
	`create or replace package rec_demo as
  type shape_rec is record (name varchar2(40), pos number);
  procedure double_pos(p_in in shape_rec, p_out out shape_rec);
end rec_demo;`,
	`create or replace package body rec_demo as
  procedure double_pos(p_in in shape_rec, p_out out shape_rec) is
  begin
    p_out.name := p_in.name;
    p_out.pos := p_in.pos * 2;
  end double_pos;
end rec_demo;`,
}

// runDemo acquires the connection, runs the record-binding walkthrough and
// guarantees the connection is released exactly once on every path that
// acquired one, errors are logged and never change the process outcome
func runDemo(connect func() (orarec.Connector, error), log *zerolog.Logger) {
	c, err := connect()
	if err != nil {
		log.Err(err).Msg("connection could not be established")
		return
	}
	defer c.Close()

	if err := demo(c, log); err != nil {
		log.Err(err).Msg("demo aborted")
	}
}

type shape struct {
	Name string  `mapstructure:"NAME"`
	Pos  float64 `mapstructure:"POS"`
}

// demo exercises the four record binding styles against rec_demo.double_pos
// and prints every returned record
func demo(c orarec.Connector, log *zerolog.Logger) error {
	// setup is best effort, one failing statement must not block the other
	for _, stmt := range setupStatements {
		if res := c.ExecuteDDL(stmt); res.Error != nil {
			log.Err(res.Error).Msg("setup statement failed, continuing")
		}
	}

	typ, err := c.DescribeRecordType(recTypeName)
	if err != nil {
		return err
	}

	// 1. explicit typed instance bound as input
	rec := typ.NewRecord()
	if err := rec.Set("NAME", "Car"); err != nil {
		return err
	}
	if err := rec.Set("POS", 56); err != nil {
		return err
	}
	res := c.CallRecord(procName, orarec.In("p_in", typ, rec), orarec.Out("p_out", typ))
	if res.Error != nil {
		return res.Error
	}
	fmt.Println("typed instance:", res.Outs["p_out"])

	parsed, err := orarec.Parser[shape](res.Outs["p_out"])
	if err != nil {
		return err
	}
	fmt.Printf("decoded struct: %s at %v\n", parsed.Name, parsed.Pos)

	// 2. plain mapping bound together with the descriptor
	res = c.CallRecord(procName,
		orarec.In("p_in", typ, map[string]any{"NAME": "Sofa", "POS": 12}),
		orarec.Out("p_out", typ))
	if res.Error != nil {
		return res.Error
	}
	fmt.Println("mapping with descriptor:", res.Outs["p_out"])

	// 3. plain mapping bound with the qualified type name
	res = c.CallRecord(procName,
		orarec.InNamed("p_in", recTypeName, map[string]any{"NAME": "Lamp", "POS": 7}),
		orarec.OutNamed("p_out", recTypeName))
	if res.Error != nil {
		return res.Error
	}
	fmt.Println("mapping with type name:", res.Outs["p_out"])

	// 4. batched execution with a shared output-binding definition
	batch := c.CallRecordMany(procName,
		orarec.InNamed("p_in", recTypeName, nil),
		[]any{
			map[string]any{"NAME": "Train", "POS": 78},
			map[string]any{"NAME": "Bike", "POS": 83},
		},
		orarec.OutNamed("p_out", recTypeName))
	if batch.Error != nil {
		return batch.Error
	}
	for i, out := range batch.Outs {
		fmt.Printf("batch row %d: %v\n", i, out)
	}
	return nil
}
