package ot

// ClassDefinitions groups glyphs into classes, denoted as integer values.
//
// From the spec:
// For efficiency and ease of representation, a font developer can group glyph indices
// to form glyph classes. Class assignments vary in meaning from one lookup subtable
// to another. For example, in the GSUB and GPOS tables, classes are used to describe
// glyph contexts. GDEF tables also use the idea of glyph classes.
// (see https://docs.microsoft.com/en-us/typography/opentype/spec/chapter2#class-definition-table)
//
// Glyphs not assigned by the table belong to class 0.
type ClassDefinitions struct {
	format  uint16          // format version 1 or 2
	records classDefVariant // either format 1 or 2
}

// ParseClassDef interprets data as a ClassDef table.
func ParseClassDef(data []byte) (*ClassDefinitions, error) {
	b := binarySegm(data)
	if len(b) < 4 {
		return nil, errMalformedOffset(0, "ClassDef", 0, "class definition table too short")
	}
	cdef := &ClassDefinitions{format: b.U16(0)}
	switch cdef.format {
	case 1:
		if len(b) < 6 {
			return nil, errMalformedOffset(0, "ClassDef", 0, "class definition table too short")
		}
		count := int(b.U16(4))
		if 6+count*2 > len(b) {
			return nil, errMalformedOffset(0, "ClassDef", 0,
				"class value array exceeds table bounds")
		}
		cdef.records = &classDefinitionsFormat1{
			count:  count,
			start:  GlyphIndex(b.U16(2)),
			values: b[6:],
		}
	case 2:
		count := int(b.U16(2))
		if 4+count*6 > len(b) {
			return nil, errMalformedOffset(0, "ClassDef", 0,
				"class range array exceeds table bounds")
		}
		cdef.records = &classDefinitionsFormat2{
			count:       count,
			classRanges: b[4:],
		}
	default:
		return nil, errMalformedOffset(0, "ClassDef", 0, "unsupported class definition format")
	}
	return cdef, nil
}

// Format returns the class definition format number, 1 or 2.
func (cdef *ClassDefinitions) Format() uint16 {
	return cdef.format
}

// Lookup returns the class defined for a glyph, or 0 (= default class).
func (cdef *ClassDefinitions) Lookup(glyph GlyphIndex) int {
	if cdef == nil || cdef.records == nil {
		return 0
	}
	return cdef.records.Lookup(glyph)
}

// Class returns the class defined for a glyph, or 0 (= default class).
func (cdef *ClassDefinitions) Class(glyph GlyphIndex) int {
	return cdef.Lookup(glyph)
}

type classDefVariant interface {
	Lookup(GlyphIndex) int
}

type classDefinitionsFormat1 struct {
	count  int        // number of entries
	start  GlyphIndex // glyph ID of the first entry in a format-1 table
	values binarySegm // array of class values, one per glyph ID
}

func (cdf *classDefinitionsFormat1) Lookup(glyph GlyphIndex) int {
	if glyph < cdf.start || int(glyph) >= int(cdf.start)+cdf.count {
		return 0
	}
	return int(cdf.values.U16(int(glyph-cdf.start) * 2))
}

type classDefinitionsFormat2 struct {
	count       int        // number of records
	classRanges binarySegm // array of ClassRangeRecords, ordered by start glyph ID
}

func (cdf *classDefinitionsFormat2) Lookup(glyph GlyphIndex) int {
	lo, hi := 0, cdf.count-1
	for lo <= hi {
		mid := (lo + hi) / 2
		start := GlyphIndex(cdf.classRanges.U16(mid * 6))
		end := GlyphIndex(cdf.classRanges.U16(mid*6 + 2))
		switch {
		case glyph < start:
			hi = mid - 1
		case glyph > end:
			lo = mid + 1
		default:
			return int(cdf.classRanges.U16(mid*6 + 4))
		}
	}
	return 0
}
