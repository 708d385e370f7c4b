package orarec

// Result unique returning type for plain statement execution
type Result struct {
	Error           error
	RecordsAffected int64
}

// RecordResult returned by CallRecord, output records keyed by
// the name of the RecordParam that produced them
type RecordResult struct {
	Outs  map[string]*Record
	Error error
}

// BatchResult returned by CallRecordMany, Outs[i] corresponds to
// the i-th input row
type BatchResult struct {
	Outs  []*Record
	Error error
}
