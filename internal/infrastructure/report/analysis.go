package report

import (
	"fmt"

	"github.com/MadeByDW91/gokartpartpicker.com/internal/domain"
)

// Confidence buckets for extraction results
const (
	HighConfidenceFloor   = 0.9
	MediumConfidenceFloor = 0.7
)

// FieldCount is how many records had a field extracted
type FieldCount struct {
	Field string `json:"field"`
	Count int    `json:"count"`
}

// ValueCount is how often one value occurred
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// FieldValues are the most frequent values of one field
type FieldValues struct {
	Field  string       `json:"field"`
	Values []ValueCount `json:"values"`
}

// Analysis aggregates extraction results over a batch
type Analysis struct {
	HighConfidence   int           `json:"high_confidence"`
	MediumConfidence int           `json:"medium_confidence"`
	LowConfidence    int           `json:"low_confidence"`
	Fields           []FieldCount  `json:"fields"`
	EngineFamilies   []ValueCount  `json:"engine_families"`
	TopValues        []FieldValues `json:"top_values"`
}

// Analyze counts extraction confidence, field frequency, engine families and
// the top five values of each field. Counts sort descending; ties keep the
// order in which they were first seen.
func Analyze(batch *domain.BatchReport) Analysis {
	var a Analysis
	fields := newCounter()
	families := newCounter()
	values := make(map[string]*counter)

	for _, r := range batch.Records {
		specs := r.ExtractedSpecs
		if specs == nil {
			continue
		}

		for _, k := range specs.Metadata.Keys() {
			fields.inc(k)
			if values[k] == nil {
				values[k] = newCounter()
			}
			v, _ := specs.Metadata.Get(k)
			values[k].inc(fmt.Sprint(v))
		}

		if specs.EngineFamily != "" {
			families.inc(specs.EngineFamily)
		}

		for _, e := range specs.Extractions {
			switch {
			case e.Confidence >= HighConfidenceFloor:
				a.HighConfidence++
			case e.Confidence >= MediumConfidenceFloor:
				a.MediumConfidence++
			default:
				a.LowConfidence++
			}
		}
	}

	a.Fields = []FieldCount{}
	for _, c := range fields.sorted() {
		a.Fields = append(a.Fields, FieldCount{Field: c.key, Count: c.count})
	}

	a.EngineFamilies = []ValueCount{}
	for _, c := range families.sorted() {
		a.EngineFamilies = append(a.EngineFamilies, ValueCount{Value: c.key, Count: c.count})
	}

	a.TopValues = []FieldValues{}
	for _, field := range fields.order {
		top := values[field].sorted()
		if len(top) > topValuesPerField {
			top = top[:topValuesPerField]
		}
		fv := FieldValues{Field: field, Values: make([]ValueCount, len(top))}
		for i, c := range top {
			fv.Values[i] = ValueCount{Value: c.key, Count: c.count}
		}
		a.TopValues = append(a.TopValues, fv)
	}
	return a
}
