package otbuild

import (
	"sort"

	"github.com/emirpasic/gods/v2/maps/treemap"
	"github.com/npillmayer/otl/ot"
)

// ClassRangeRecord is one glyph range of a format-2 ClassDef table. All
// glyphs of the range belong to Class.
type ClassRangeRecord struct {
	First ot.GlyphIndex
	Last  ot.GlyphIndex
	Class uint16
}

// ClassDef is a finished class definition table value, either a format-1
// start-glyph-plus-array or a format-2 list of class ranges. Build one
// with ClassDefEncoder or ClassDefBuilder; read one back with
// ot.ParseClassDef. Glyphs without an entry belong to class 0.
type ClassDef struct {
	format      uint16
	startGlyph  ot.GlyphIndex      // format 1
	classValues []uint16           // format 1
	ranges      []ClassRangeRecord // format 2
}

// Format returns the class definition format number, 1 or 2.
func (cd ClassDef) Format() uint16 {
	return cd.format
}

// Class returns the class of a glyph, or 0 (= no class).
func (cd ClassDef) Class(g ot.GlyphIndex) uint16 {
	if cd.format == 1 {
		if g < cd.startGlyph || int(g-cd.startGlyph) >= len(cd.classValues) {
			return 0
		}
		return cd.classValues[g-cd.startGlyph]
	}
	for _, r := range cd.ranges {
		if g >= r.First && g <= r.Last {
			return r.Class
		}
	}
	return 0
}

// Encode returns the binary form of the class definition table.
func (cd ClassDef) Encode() []byte {
	if cd.format == 1 {
		b := make([]byte, 0, 6+2*len(cd.classValues))
		b = appendU16(b, 1)
		b = appendU16(b, uint16(cd.startGlyph))
		b = appendU16(b, uint16(len(cd.classValues)))
		for _, c := range cd.classValues {
			b = appendU16(b, c)
		}
		return b
	}
	b := make([]byte, 0, 4+6*len(cd.ranges))
	b = appendU16(b, 2)
	b = appendU16(b, uint16(len(cd.ranges)))
	for _, r := range cd.ranges {
		b = appendU16(b, uint16(r.First))
		b = appendU16(b, uint16(r.Last))
		b = appendU16(b, r.Class)
	}
	return b
}

// --- ClassDefEncoder ----------------------------------------------------------

// ClassDefEncoder holds an ordered glyph → class mapping and emits the
// smaller of the two ClassDef formats. Class-0 entries are elided, since
// class 0 is what a reader reports for absent glyphs anyway.
type ClassDefEncoder struct {
	items *treemap.Map[ot.GlyphIndex, uint16]
}

// NewClassDefEncoder creates an empty encoder.
func NewClassDefEncoder() *ClassDefEncoder {
	return &ClassDefEncoder{
		items: treemap.NewWith[ot.GlyphIndex, uint16](func(x, y ot.GlyphIndex) int {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
			return 0
		}),
	}
}

// Set assigns a class to a glyph. Assigning class 0 removes the entry.
func (e *ClassDefEncoder) Set(g ot.GlyphIndex, class uint16) {
	if class == 0 {
		e.items.Remove(g)
		return
	}
	e.items.Put(g, class)
}

// Len returns the number of explicit glyph entries.
func (e *ClassDefEncoder) Len() int {
	return e.items.Size()
}

// preferFormat1 compares the exact encoded sizes of both formats.
// An empty mapping is most efficiently represented as format 2.
func (e *ClassDefEncoder) preferFormat1() bool {
	if e.items.Empty() {
		return false
	}
	keys := e.items.Keys()
	first, last := keys[0], keys[len(keys)-1]
	format1Len := 6 + 2*(int(last-first)+1)
	format2Len := 4 + 6*len(e.classRanges())
	return format1Len < format2Len
}

// classRanges folds the ordered mapping into maximal runs of consecutive
// glyph ids sharing a class.
func (e *ClassDefEncoder) classRanges() []ClassRangeRecord {
	var ranges []ClassRangeRecord
	for _, g := range e.items.Keys() {
		class, _ := e.items.Get(g)
		if n := len(ranges); n > 0 && ranges[n-1].Last+1 == g && ranges[n-1].Class == class {
			ranges[n-1].Last = g
			continue
		}
		ranges = append(ranges, ClassRangeRecord{First: g, Last: g, Class: class})
	}
	return ranges
}

// Build emits the smaller of the two ClassDef formats.
func (e *ClassDefEncoder) Build() ClassDef {
	if !e.preferFormat1() {
		return ClassDef{format: 2, ranges: e.classRanges()}
	}
	keys := e.items.Keys()
	first, last := keys[0], keys[len(keys)-1]
	values := make([]uint16, int(last-first)+1)
	for _, g := range keys {
		values[g-first], _ = e.items.Get(g)
	}
	return ClassDef{format: 1, startGlyph: first, classValues: values}
}

// --- ClassDefBuilder ----------------------------------------------------------

// GlyphClass is a set of glyph ids forming one class.
type GlyphClass = ot.IntSet[ot.GlyphIndex]

// ClassDefBuilder partitions glyphs into disjoint classes and assigns
// class ids deterministically: larger classes get lower ids, ties break
// on the smallest member glyph. No glyph is ever a member of two
// committed classes.
//
// Class ids start at 1. A builder created with
// NewClassDefBuilderUsingClass0 starts at 0 instead, which is valid only
// when an accompanying Coverage table already gates which glyphs are
// checked, so that class 0 need not be reserved for "no class".
//
// Build consumes the builder; adding classes afterwards panics.
type ClassDefBuilder struct {
	classes   map[string]*GlyphClass // keyed by canonical member encoding
	allGlyphs *GlyphClass
	useClass0 bool
	consumed  bool
}

// NewClassDefBuilder creates a builder assigning class ids from 1.
func NewClassDefBuilder() *ClassDefBuilder {
	return &ClassDefBuilder{
		classes:   make(map[string]*GlyphClass),
		allGlyphs: ot.NewIntSet[ot.GlyphIndex](),
	}
}

// NewClassDefBuilderUsingClass0 creates a builder assigning class ids
// from 0.
func NewClassDefBuilderUsingClass0() *ClassDefBuilder {
	b := NewClassDefBuilder()
	b.useClass0 = true
	return b
}

// classKey is the canonical byte encoding of a class's members, used to
// recognize identical classes.
func classKey(cls *GlyphClass) string {
	b := make([]byte, 0, 2*cls.Len())
	for g := range cls.Range() {
		b = appendU16(b, uint16(g))
	}
	return string(b)
}

// CanAdd reports whether a class can be committed: either an identical
// class was committed before, or the class is disjoint from all committed
// glyphs.
func (b *ClassDefBuilder) CanAdd(cls *GlyphClass) bool {
	if b.consumed {
		panic("otbuild: ClassDefBuilder used after Build")
	}
	if _, ok := b.classes[classKey(cls)]; ok {
		return true
	}
	for g := range cls.Range() {
		if b.allGlyphs.Contains(g) {
			return false
		}
	}
	return true
}

// CheckedAdd commits a class if CanAdd allows it and reports whether the
// class was added. On rejection the builder is unchanged.
func (b *ClassDefBuilder) CheckedAdd(cls *GlyphClass) bool {
	if !b.CanAdd(cls) {
		return false
	}
	b.allGlyphs.AddAll(cls)
	b.classes[classKey(cls)] = cls
	return true
}

// ClassMapping maps committed glyph classes to their final class ids.
type ClassMapping struct {
	ids map[string]uint16
}

// Get returns the class id assigned to a committed class.
func (m ClassMapping) Get(cls *GlyphClass) (uint16, bool) {
	id, ok := m.ids[classKey(cls)]
	return id, ok
}

// Len returns the number of mapped classes.
func (m ClassMapping) Len() int {
	return len(m.ids)
}

// BuildWithMapping compiles the committed classes into a ClassDef and
// returns the class → id mapping alongside. Classes are sorted by size
// descending, ties by ascending minimum glyph id; the sort order is
// load-bearing for binary compatibility with reference encoders.
// The builder is consumed.
func (b *ClassDefBuilder) BuildWithMapping() (ClassDef, ClassMapping) {
	if b.consumed {
		panic("otbuild: ClassDefBuilder used after Build")
	}
	b.consumed = true
	classes := make([]*GlyphClass, 0, len(b.classes))
	for _, cls := range b.classes {
		classes = append(classes, cls)
	}
	sort.SliceStable(classes, func(i, j int) bool {
		if classes[i].Len() != classes[j].Len() {
			return classes[i].Len() > classes[j].Len()
		}
		return minGlyph(classes[i]) < minGlyph(classes[j])
	})
	firstID := uint16(1)
	if b.useClass0 {
		firstID = 0
	}
	mapping := ClassMapping{ids: make(map[string]uint16, len(classes))}
	encoder := NewClassDefEncoder()
	for i, cls := range classes {
		id := firstID + uint16(i)
		mapping.ids[classKey(cls)] = id
		for g := range cls.Range() {
			encoder.Set(g, id)
		}
	}
	return encoder.Build(), mapping
}

// Build compiles the committed classes, discarding the mapping.
func (b *ClassDefBuilder) Build() ClassDef {
	cd, _ := b.BuildWithMapping()
	return cd
}

func minGlyph(cls *GlyphClass) ot.GlyphIndex {
	values := cls.Values()
	if len(values) == 0 {
		return 0
	}
	return values[0]
}
