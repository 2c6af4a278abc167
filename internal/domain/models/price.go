package models

import "time"

// PriceRecord is one daily OHLCV bar of a symbol.
type PriceRecord struct {
	Symbol string    `json:"symbol"`
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// Panel is a set of price records ordered by symbol, then date.
type Panel []PriceRecord

// Segment is the half-open index range [Start, End) of one symbol in a Panel.
type Segment struct {
	Symbol string
	Start  int
	End    int
}

// Len returns the number of records in the segment.
func (s Segment) Len() int { return s.End - s.Start }

// Segments splits the panel into contiguous per-symbol ranges.
func (p Panel) Segments() []Segment {
	var out []Segment
	for i := 0; i < len(p); {
		j := i + 1
		for j < len(p) && p[j].Symbol == p[i].Symbol {
			j++
		}
		out = append(out, Segment{Symbol: p[i].Symbol, Start: i, End: j})
		i = j
	}
	return out
}

// Symbols returns the distinct symbols in panel order.
func (p Panel) Symbols() []string {
	segs := p.Segments()
	out := make([]string, 0, len(segs))
	for _, s := range segs {
		out = append(out, s.Symbol)
	}
	return out
}
