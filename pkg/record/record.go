package record

import (
	"sort"
	"time"
)

// Well-known fact names produced by extraction adapters. Bundles refer to
// facts by name, so these are conventions rather than a closed set.
const (
	FactDiagnoses          = "diagnoses"           // ICD-10 codes
	FactMedications        = "medications"         // medication list
	FactLabs               = "labs"                // lab values (e.g. A1C)
	FactEncounters         = "encounters"          // face-to-face encounter dates
	FactInsulinTherapy     = "insulin_therapy"     // intensive insulin regimen
	FactHypoglycemiaEvents = "hypoglycemia_events" // problematic hypoglycemia history
	FactWrittenOrder       = "written_order"       // detailed written order on file
	FactNecessityStatement = "necessity_statement" // medical necessity statement
	FactTraining           = "training"            // patient training/education
	FactA1C                = "a1c"                 // most recent A1C value
	FactDemographics       = "demographics"        // patient demographics
)

// ValueKind discriminates the typed value carried by a fact.
type ValueKind string

const (
	ValueBool     ValueKind = "bool"
	ValueNumber   ValueKind = "number"
	ValueText     ValueKind = "text"
	ValueDates    ValueKind = "dates"
	ValueCodes    ValueKind = "codes"
	ValueJudgment ValueKind = "judgment"
)

// Judgment is a caller-supplied verdict embedded in the record for
// free-text criteria (e.g. "training documented"). The extraction
// adapter, not the engine, decides the judgment; the engine only applies
// the confidence floor before passing it through.
type Judgment string

const (
	JudgmentMet          Judgment = "met"
	JudgmentNotMet       Judgment = "not_met"
	JudgmentInsufficient Judgment = "insufficient_evidence"
	JudgmentPartial      Judgment = "partial"
)

// Value is the typed value of an extracted fact. Kind selects which
// field is meaningful; the rest are zero. Negative marks an explicit
// negative finding (e.g. "denies hypoglycemia"), which is distinct from
// the fact being absent from the record.
type Value struct {
	Kind ValueKind `json:"kind"`

	Bool     bool        `json:"bool,omitempty"`
	Number   float64     `json:"number,omitempty"`
	Text     string      `json:"text,omitempty"`
	Dates    []time.Time `json:"dates,omitempty"`
	Codes    []string    `json:"codes,omitempty"`
	Judgment Judgment    `json:"judgment,omitempty"`

	// Estimated flags a numeric value the source records as an estimate
	// or uncertain range rather than a precise reading.
	Estimated bool `json:"estimated,omitempty"`

	// Negative marks an explicit negative finding.
	Negative bool `json:"negative,omitempty"`
}

// BoolValue returns an affirmative or negative boolean value.
// An explicit false is recorded as a negative finding.
func BoolValue(b bool) Value {
	return Value{Kind: ValueBool, Bool: b, Negative: !b}
}

// NumberValue returns a precise numeric value.
func NumberValue(n float64) Value {
	return Value{Kind: ValueNumber, Number: n}
}

// EstimateValue returns a numeric value flagged as an estimate.
func EstimateValue(n float64) Value {
	return Value{Kind: ValueNumber, Number: n, Estimated: true}
}

// TextValue returns a free-text value.
func TextValue(s string) Value {
	return Value{Kind: ValueText, Text: s}
}

// DatesValue returns a value holding qualifying dates.
func DatesValue(dates ...time.Time) Value {
	return Value{Kind: ValueDates, Dates: dates}
}

// CodesValue returns a value holding extracted codes.
func CodesValue(codes ...string) Value {
	return Value{Kind: ValueCodes, Codes: codes}
}

// JudgmentValue returns a caller-supplied judgment value.
func JudgmentValue(j Judgment) Value {
	return Value{Kind: ValueJudgment, Judgment: j}
}

// NegativeFinding marks the value as an explicit negative finding.
func NegativeFinding(v Value) Value {
	v.Negative = true
	return v
}

// Affirmative reports whether the value is truthy/non-empty for its kind
// and does not carry a negative finding.
func (v Value) Affirmative() bool {
	if v.Negative {
		return false
	}
	switch v.Kind {
	case ValueBool:
		return v.Bool
	case ValueNumber:
		return true
	case ValueText:
		return v.Text != ""
	case ValueDates:
		return len(v.Dates) > 0
	case ValueCodes:
		return len(v.Codes) > 0
	case ValueJudgment:
		return v.Judgment == JudgmentMet
	default:
		return false
	}
}

// MostRecentDate returns the latest date in a dates value.
// The second return is false if the value holds no dates.
func (v Value) MostRecentDate() (time.Time, bool) {
	if v.Kind != ValueDates || len(v.Dates) == 0 {
		return time.Time{}, false
	}
	latest := v.Dates[0]
	for _, d := range v.Dates[1:] {
		if d.After(latest) {
			latest = d
		}
	}
	return latest, true
}

// Evidence backs a single extracted fact: the quoted source text, the
// pages it came from, and the adapter's extraction confidence.
type Evidence struct {
	// Quotes is the ordered sequence of source text excerpts.
	Quotes []string `json:"quotes,omitempty"`

	// PageRefs is the set of page numbers the quotes came from.
	PageRefs []int `json:"page_refs,omitempty"`

	// Confidence is the extraction confidence in [0, 1].
	Confidence float64 `json:"confidence"`
}

// Fact is one extracted fact: a typed value plus its evidence.
type Fact struct {
	Name     string   `json:"name"`
	Value    Value    `json:"value"`
	Evidence Evidence `json:"evidence"`
}

// ExtractedRecord is the complete set of facts the extraction adapter
// determined from a source document. A fresh record is created per
// evaluation request; the engine never mutates it.
type ExtractedRecord struct {
	// Facts maps fact name to the extracted fact.
	Facts map[string]*Fact `json:"facts"`

	// SourceID identifies the source document the record was extracted from.
	SourceID string `json:"source_id,omitempty"`

	// ExtractedAt is when extraction completed.
	ExtractedAt time.Time `json:"extracted_at,omitempty"`

	// Extractor names the adapter that produced the record
	// (e.g. "vision-model", "manual-entry").
	Extractor string `json:"extractor,omitempty"`
}

// NewExtractedRecord creates an empty record.
func NewExtractedRecord() *ExtractedRecord {
	return &ExtractedRecord{
		Facts: make(map[string]*Fact),
	}
}

// AddFact adds a fact to the record, replacing any fact of the same name.
func (r *ExtractedRecord) AddFact(name string, value Value, evidence Evidence) *ExtractedRecord {
	if r.Facts == nil {
		r.Facts = make(map[string]*Fact)
	}
	r.Facts[name] = &Fact{Name: name, Value: value, Evidence: evidence}
	return r
}

// Fact returns the named fact. The second return is false if the fact
// was not extracted.
func (r *ExtractedRecord) Fact(name string) (*Fact, bool) {
	f, ok := r.Facts[name]
	return f, ok
}

// Has reports whether the named fact was extracted.
func (r *ExtractedRecord) Has(name string) bool {
	_, ok := r.Facts[name]
	return ok
}

// FactNames returns the sorted names of all extracted facts.
func (r *ExtractedRecord) FactNames() []string {
	names := make([]string, 0, len(r.Facts))
	for name := range r.Facts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
