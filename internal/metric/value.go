package metric

// Kind discriminates the shapes a Value can take.
type Kind int

// Value shapes. Absent is the zero value: a requested metric that could
// not be obtained (or is legitimately missing on this host) is Absent,
// never an omitted map entry.
const (
	KindAbsent Kind = iota
	KindScalar
	KindSeries
	KindFields
	KindTriple
	KindPairs
)

// Pair holds a sent/received byte count for one network interface.
type Pair struct {
	Sent float64 `json:"sent"`
	Recv float64 `json:"recv"`
}

// Value is a tagged union over the shapes produced by providers.
// Exactly the field selected by Kind is meaningful; the rest are zero.
type Value struct {
	Kind   Kind               `json:"kind"`
	Scalar float64            `json:"scalar,omitempty"`
	Series []float64          `json:"series,omitempty"`
	Fields map[string]float64 `json:"fields,omitempty"`
	Triple [3]float64         `json:"triple,omitempty"`
	Pairs  map[string]Pair    `json:"pairs,omitempty"`
}

// Absent returns the absent value.
func Absent() Value { return Value{Kind: KindAbsent} }

// NewScalar wraps a single float.
func NewScalar(v float64) Value { return Value{Kind: KindScalar, Scalar: v} }

// NewSeries wraps an ordered float sequence (e.g. per-core percentages).
func NewSeries(v []float64) Value { return Value{Kind: KindSeries, Series: v} }

// NewFields wraps a string→float mapping (e.g. memory statistics).
func NewFields(v map[string]float64) Value { return Value{Kind: KindFields, Fields: v} }

// NewTriple wraps a three-float tuple (e.g. load averages).
func NewTriple(a, b, c float64) Value { return Value{Kind: KindTriple, Triple: [3]float64{a, b, c}} }

// NewPairs wraps a per-interface sent/recv mapping.
func NewPairs(v map[string]Pair) Value { return Value{Kind: KindPairs, Pairs: v} }

// IsAbsent reports whether the value carries no data.
func (v Value) IsAbsent() bool { return v.Kind == KindAbsent }

// Result maps metric name to its collected value. A batch result is total
// over the requested names: failed metrics appear as Absent entries so
// callers can tell "not requested" from "requested but failed".
type Result map[string]Value
