// Package stats turns item data into a label-keyed stat map.
//
// Two sources feed the map: the numeric "stats" object Data Dragon ships with
// each item, and the free-text description, scanned with per-language
// patterns. Structured values always win over text-derived ones.
package stats

import (
	"bytes"
	"math"
	"strconv"

	json "github.com/goccy/go-json"
)

// Value is a stat amount. Percent amounts render as strings like "12%".
type Value struct {
	num     float64
	percent bool
}

// Number returns a plain numeric value.
func Number(v float64) Value {
	return Value{num: v}
}

// Percent returns a value rendered with a trailing percent sign.
func Percent(v float64) Value {
	return Value{num: v, percent: true}
}

// Float returns the numeric part of the value.
func (v Value) Float() float64 {
	return v.num
}

func (v Value) String() string {
	s := strconv.FormatFloat(v.num, 'f', -1, 64)
	if v.percent {
		return s + "%"
	}
	return s
}

// MarshalJSON writes a number, or a string for percent values.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.percent {
		return json.Marshal(v.String())
	}
	if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(v.num, 'f', -1, 64)), nil
}

// Stat is one entry of an item's stat map.
type Stat struct {
	Value   Value  `json:"value"`
	Icon    string `json:"icon"`
	Percent bool   `json:"percent"`
}

// Map is an insertion-ordered label -> Stat map. The first write per label wins.
type Map struct {
	labels  []string
	entries map[string]Stat
}

// NewMap returns an empty map.
func NewMap() *Map {
	return &Map{entries: make(map[string]Stat)}
}

// Add stores s under label unless the label is already present.
// It reports whether the entry was stored.
func (m *Map) Add(label string, s Stat) bool {
	if m.entries == nil {
		m.entries = make(map[string]Stat)
	}
	if _, ok := m.entries[label]; ok {
		return false
	}
	m.labels = append(m.labels, label)
	m.entries[label] = s
	return true
}

// Has reports whether label is populated.
func (m *Map) Has(label string) bool {
	_, ok := m.entries[label]
	return ok
}

// Get returns the stat stored under label.
func (m *Map) Get(label string) (Stat, bool) {
	s, ok := m.entries[label]
	return s, ok
}

// Len returns the number of labels.
func (m *Map) Len() int {
	return len(m.labels)
}

// Labels returns the labels in insertion order.
func (m *Map) Labels() []string {
	return append([]string(nil), m.labels...)
}

// Merge returns a new map holding every entry of primary, then the entries of
// secondary whose label primary does not have.
func Merge(primary, secondary *Map) *Map {
	out := NewMap()
	for _, src := range []*Map{primary, secondary} {
		if src == nil {
			continue
		}
		for _, label := range src.labels {
			out.Add(label, src.entries[label])
		}
	}
	return out
}

// MarshalJSON writes the entries as a JSON object in insertion order.
// Labels like "Heal & Shield" are written without HTML escaping.
func (m *Map) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	buf.WriteByte('{')
	for i, label := range m.labels {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := enc.Encode(label); err != nil {
			return nil, err
		}
		trimNewline(&buf)
		buf.WriteByte(':')
		if err := enc.Encode(m.entries[label]); err != nil {
			return nil, err
		}
		trimNewline(&buf)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func trimNewline(buf *bytes.Buffer) {
	if n := buf.Len(); n > 0 && buf.Bytes()[n-1] == '\n' {
		buf.Truncate(n - 1)
	}
}
