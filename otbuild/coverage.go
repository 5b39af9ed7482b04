package otbuild

import (
	"sort"

	"github.com/npillmayer/otl/ot"
)

// RangeRecord is one glyph range of a format-2 Coverage table. Coverage
// indices of the range's glyphs start at StartCoverageIndex and run
// consecutively.
type RangeRecord struct {
	First              ot.GlyphIndex
	Last               ot.GlyphIndex
	StartCoverageIndex uint16
}

// CoverageTable is a finished Coverage table value, either a format-1
// glyph array or a format-2 list of ranges. Build one with
// CoverageBuilder; read one back with ot.ParseCoverage.
type CoverageTable struct {
	format uint16
	glyphs []ot.GlyphIndex // format 1
	ranges []RangeRecord   // format 2
}

// Format returns the coverage format number, 1 or 2.
func (t CoverageTable) Format() uint16 {
	return t.format
}

// GlyphCount returns the number of covered glyphs.
func (t CoverageTable) GlyphCount() int {
	if t.format == 2 {
		n := 0
		for _, r := range t.ranges {
			n += int(r.Last-r.First) + 1
		}
		return n
	}
	return len(t.glyphs)
}

// Index returns the coverage index for a glyph, and true if covered.
func (t CoverageTable) Index(g ot.GlyphIndex) (int, bool) {
	if t.format == 2 {
		for _, r := range t.ranges {
			if g >= r.First && g <= r.Last {
				return int(r.StartCoverageIndex) + int(g-r.First), true
			}
		}
		return 0, false
	}
	i := sort.Search(len(t.glyphs), func(i int) bool { return t.glyphs[i] >= g })
	if i < len(t.glyphs) && t.glyphs[i] == g {
		return i, true
	}
	return 0, false
}

// Encode returns the binary form of the coverage table.
func (t CoverageTable) Encode() []byte {
	if t.format == 2 {
		b := make([]byte, 0, 4+6*len(t.ranges))
		b = appendU16(b, 2)
		b = appendU16(b, uint16(len(t.ranges)))
		for _, r := range t.ranges {
			b = appendU16(b, uint16(r.First))
			b = appendU16(b, uint16(r.Last))
			b = appendU16(b, r.StartCoverageIndex)
		}
		return b
	}
	b := make([]byte, 0, 4+2*len(t.glyphs))
	b = appendU16(b, 1)
	b = appendU16(b, uint16(len(t.glyphs)))
	for _, g := range t.glyphs {
		b = appendU16(b, uint16(g))
	}
	return b
}

// CoverageBuilder accumulates a glyph set for a Coverage table.
// The glyph sequence is kept sorted and deduplicated at all times.
// Build consumes the builder; adding glyphs afterwards panics.
type CoverageBuilder struct {
	glyphs   []ot.GlyphIndex
	consumed bool
}

// CoverageFromGlyphs creates a builder from glyphs in any order.
func CoverageFromGlyphs(glyphs []ot.GlyphIndex) *CoverageBuilder {
	sorted := make([]ot.GlyphIndex, len(glyphs))
	copy(sorted, glyphs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	deduped := sorted[:0]
	for i, g := range sorted {
		if i == 0 || deduped[len(deduped)-1] != g {
			deduped = append(deduped, g)
		}
	}
	return &CoverageBuilder{glyphs: deduped}
}

// Add inserts a glyph and returns its coverage index in the current
// sorted order. Adding an existing glyph returns its current index.
//
// Indices are not stable across later inserts of smaller glyph ids;
// capture them only after all insertions are complete.
func (cb *CoverageBuilder) Add(g ot.GlyphIndex) int {
	if cb.consumed {
		panic("otbuild: CoverageBuilder used after Build")
	}
	i := sort.Search(len(cb.glyphs), func(i int) bool { return cb.glyphs[i] >= g })
	if i < len(cb.glyphs) && cb.glyphs[i] == g {
		return i
	}
	cb.glyphs = append(cb.glyphs, 0)
	copy(cb.glyphs[i+1:], cb.glyphs[i:])
	cb.glyphs[i] = g
	return i
}

// Glyphs returns the current glyph sequence, sorted ascending.
func (cb *CoverageBuilder) Glyphs() []ot.GlyphIndex {
	out := make([]ot.GlyphIndex, len(cb.glyphs))
	copy(out, cb.glyphs)
	return out
}

// Build converts the builder into the smaller of the two CoverageTable
// variants. Format 2 is chosen only if its encoding is strictly smaller.
// The glyph sequence moves into the table; the builder is consumed and
// panics on further use.
func (cb *CoverageBuilder) Build() CoverageTable {
	if cb.consumed {
		panic("otbuild: CoverageBuilder used after Build")
	}
	cb.consumed = true
	ranges := coverageRanges(cb.glyphs)
	format2Len := 4 + 6*len(ranges)
	format1Len := 4 + 2*len(cb.glyphs)
	if format2Len < format1Len {
		tracer().Debugf("coverage of %d glyphs encodes as %d ranges (format 2)",
			len(cb.glyphs), len(ranges))
		return CoverageTable{format: 2, ranges: ranges}
	}
	return CoverageTable{format: 1, glyphs: cb.glyphs}
}

// coverageRanges folds a sorted glyph sequence into maximal runs of
// consecutive glyph ids.
func coverageRanges(glyphs []ot.GlyphIndex) []RangeRecord {
	var ranges []RangeRecord
	for i, g := range glyphs {
		if n := len(ranges); n > 0 && ranges[n-1].Last+1 == g {
			ranges[n-1].Last = g
			continue
		}
		ranges = append(ranges, RangeRecord{
			First:              g,
			Last:               g,
			StartCoverageIndex: uint16(i),
		})
	}
	return ranges
}
