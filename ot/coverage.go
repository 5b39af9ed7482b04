package ot

// Coverage denotes an indexed set of glyphs.
// Each lookup subtable references a Coverage table, which specifies all
// the glyphs affected by a substitution or positioning operation described
// in the subtable. If a glyph does not appear in a Coverage table, the
// client can skip that subtable and move immediately to the next one.
//
// Two formats are defined: format 1 lists glyph IDs directly, format 2
// lists ranges of consecutive glyph IDs. Both orders are ascending, which
// allows binary search.
type Coverage struct {
	format uint16
	count  int        // glyph count (format 1) or range count (format 2)
	data   binarySegm // record array, starting after the 4-byte header
}

// ParseCoverage interprets data as a Coverage table.
func ParseCoverage(data []byte) (Coverage, error) {
	b := binarySegm(data)
	if len(b) < 4 {
		return Coverage{}, errMalformedOffset(0, "Coverage", 0, "coverage table too short")
	}
	format := b.U16(0)
	count := int(b.U16(2))
	var recsize int
	switch format {
	case 1:
		recsize = 2
	case 2:
		recsize = 6
	default:
		return Coverage{}, errMalformedOffset(0, "Coverage", 0, "unsupported coverage format")
	}
	if 4+count*recsize > len(b) {
		return Coverage{}, errMalformedOffset(0, "Coverage", 0,
			"coverage record array exceeds table bounds")
	}
	return Coverage{format: format, count: count, data: b[4:]}, nil
}

// Format returns the coverage format number, 1 or 2.
func (c Coverage) Format() uint16 {
	return c.format
}

// Match returns the coverage index for a glyph, and true if present.
func (c Coverage) Match(g GlyphIndex) (int, bool) {
	switch c.format {
	case 1:
		lo, hi := 0, c.count-1
		for lo <= hi {
			mid := (lo + hi) / 2
			entry := GlyphIndex(c.data.U16(mid * 2))
			switch {
			case entry == g:
				return mid, true
			case entry < g:
				lo = mid + 1
			default:
				hi = mid - 1
			}
		}
	case 2:
		lo, hi := 0, c.count-1
		for lo <= hi {
			mid := (lo + hi) / 2
			start := GlyphIndex(c.data.U16(mid * 6))
			end := GlyphIndex(c.data.U16(mid*6 + 2))
			switch {
			case g < start:
				hi = mid - 1
			case g > end:
				lo = mid + 1
			default:
				first := int(c.data.U16(mid*6 + 4))
				return first + int(g-start), true
			}
		}
	}
	return 0, false
}

// Contains reports whether a glyph is present in the coverage.
func (c Coverage) Contains(g GlyphIndex) bool {
	_, ok := c.Match(g)
	return ok
}

// GlyphCount returns the number of covered glyphs.
func (c Coverage) GlyphCount() int {
	if c.format == 1 {
		return c.count
	}
	n := 0
	for i := 0; i < c.count; i++ {
		start := int(c.data.U16(i * 6))
		end := int(c.data.U16(i*6 + 2))
		if end >= start {
			n += end - start + 1
		}
	}
	return n
}

// Glyphs returns all covered glyphs, ordered by coverage index.
func (c Coverage) Glyphs() []GlyphIndex {
	var glyphs []GlyphIndex
	switch c.format {
	case 1:
		glyphs = make([]GlyphIndex, c.count)
		for i := range glyphs {
			glyphs[i] = GlyphIndex(c.data.U16(i * 2))
		}
	case 2:
		for i := 0; i < c.count; i++ {
			start := GlyphIndex(c.data.U16(i * 6))
			end := GlyphIndex(c.data.U16(i*6 + 2))
			for g := start; g <= end; g++ {
				glyphs = append(glyphs, g)
				if g == 0xFFFF {
					break
				}
			}
		}
	}
	return glyphs
}
