package ot

/*
From https://docs.microsoft.com/en-us/typography/opentype/spec/chapter2:

OpenType Layout consists of five tables: the Glyph Substitution table (GSUB),
the Glyph Positioning table (GPOS), the Baseline table (BASE),
the Justification table (JSTF), and the Glyph Definition table (GDEF).
These tables use some of the same data formats.

This file implements read-access views for the parts shared by GSUB and
GPOS: the header, the ScriptList and the FeatureList. Views are lazy and
zero-copy. Every view remembers its byte position within the enclosing
layout table (see method Head), so that two links arriving at the same
physical table can be recognized as aliases.
*/

import "iter"

// --- Layout tables ---------------------------------------------------------

// LayoutTable is a read-only view over a GSUB or GPOS table.
// OpenType specifies two such tables–GPOS and GSUB–which share some of their
// structure.
type LayoutTable struct {
	name   Tag
	data   binarySegm
	header LayoutHeader
}

// LayoutHeader represents header information common to the layout tables.
type LayoutHeader struct {
	versionHeader
	offsets layoutHeader11
}

// Version returns major and minor version numbers for this layout table.
func (h LayoutHeader) Version() (int, int) {
	return int(h.Major), int(h.Minor)
}

// versionHeader is the beginning of the on-disk format of layout tables.
// See https://www.microsoft.com/typography/otspec/GPOS.htm
// See https://www.microsoft.com/typography/otspec/GSUB.htm
type versionHeader struct {
	Major uint16
	Minor uint16
}

// layoutHeader10 is the on-disk format of GPOS/GSUB version header when major=1 and minor=0.
type layoutHeader10 struct {
	ScriptListOffset  uint16 // offset to ScriptList table, from beginning of GPOS/GSUB table.
	FeatureListOffset uint16 // offset to FeatureList table, from beginning of GPOS/GSUB table.
	LookupListOffset  uint16 // offset to LookupList table, from beginning of GPOS/GSUB table.
}

// layoutHeader11 is the on-disk format of GPOS/GSUB version header when major=1 and minor=1.
type layoutHeader11 struct {
	layoutHeader10
	FeatureVariationsOffset uint32 // offset to FeatureVariations table, may be NULL.
}

// ParseLayoutTable interprets data as a GSUB or GPOS table and returns a
// view over it. tag names the table for error reporting, usually "GSUB" or
// "GPOS". The header and the positions of the ScriptList and FeatureList
// are validated eagerly; scripts, language systems and features are
// resolved lazily by the accessors.
//
// Only malformed offsets and counts are reported as errors. Unusual but
// navigable structures parse without complaint.
func ParseLayoutTable(tag Tag, data []byte) (*LayoutTable, error) {
	b := binarySegm(data)
	if len(b) < 10 {
		return nil, errMalformedOffset(tag, "Header", 0, "layout table too short for header")
	}
	t := &LayoutTable{name: tag, data: b}
	t.header.Major = b.U16(0)
	t.header.Minor = b.U16(2)
	if t.header.Major != 1 {
		return nil, errMalformedOffset(tag, "Header", 0, "unsupported layout table major version")
	}
	t.header.offsets.ScriptListOffset = b.U16(4)
	t.header.offsets.FeatureListOffset = b.U16(6)
	t.header.offsets.LookupListOffset = b.U16(8)
	if t.header.Minor >= 1 {
		if v, err := b.u32(10); err == nil {
			t.header.offsets.FeatureVariationsOffset = v
		} else {
			return nil, errMalformedOffset(tag, "Header", 10, "header version 1.1 too short")
		}
	}
	if _, err := t.scriptListSegm(); err != nil {
		return nil, err
	}
	if _, err := t.featureListSegm(); err != nil {
		return nil, err
	}
	return t, nil
}

// Name returns the tag the table was parsed under, usually "GSUB" or "GPOS".
func (t *LayoutTable) Name() Tag {
	return t.name
}

// Header returns the layout table header.
func (t *LayoutTable) Header() LayoutHeader {
	return t.header
}

func (t *LayoutTable) scriptListSegm() (binarySegm, error) {
	off := int(t.header.offsets.ScriptListOffset)
	if off == 0 || off+2 > len(t.data) {
		return nil, errMalformedOffset(t.name, "ScriptList", uint32(off),
			"ScriptList offset outside of table")
	}
	return t.data[off:], nil
}

func (t *LayoutTable) featureListSegm() (binarySegm, error) {
	off := int(t.header.offsets.FeatureListOffset)
	if off == 0 || off+2 > len(t.data) {
		return nil, errMalformedOffset(t.name, "FeatureList", uint32(off),
			"FeatureList offset outside of table")
	}
	return t.data[off:], nil
}

// ScriptList returns a view over the table's ScriptList.
func (t *LayoutTable) ScriptList() (*ScriptList, error) {
	segm, err := t.scriptListSegm()
	if err != nil {
		return nil, err
	}
	base := uint32(t.header.offsets.ScriptListOffset)
	count := int(segm.U16(0))
	if 2+count*6 > len(segm) {
		return nil, errMalformedOffset(t.name, "ScriptList", base,
			"script record array exceeds table bounds")
	}
	return &ScriptList{table: t.name, raw: segm, head: base, count: count}, nil
}

// FeatureList returns a view over the table's FeatureList.
func (t *LayoutTable) FeatureList() (*FeatureList, error) {
	segm, err := t.featureListSegm()
	if err != nil {
		return nil, err
	}
	base := uint32(t.header.offsets.FeatureListOffset)
	count := int(segm.U16(0))
	if 2+count*6 > len(segm) {
		return nil, errMalformedOffset(t.name, "FeatureList", base,
			"feature record array exceeds table bounds")
	}
	return &FeatureList{table: t.name, raw: segm, head: base, count: count}, nil
}

// --- ScriptList --------------------------------------------------------------

// ScriptList is a view over the ScriptList of a GSUB/GPOS table.
// Script records are accessed lazily, in declaration order, without
// assuming that the list is sorted by tag.
type ScriptList struct {
	table Tag
	raw   binarySegm // segment starting at the ScriptList
	head  uint32     // byte offset of the ScriptList from the table origin
	count int
}

// Len returns the number of script records.
func (sl *ScriptList) Len() int {
	if sl == nil {
		return 0
	}
	return sl.count
}

// TagAt returns the script tag of record i.
func (sl *ScriptList) TagAt(i int) Tag {
	if sl == nil || i < 0 || i >= sl.count {
		return 0
	}
	start := 2 + i*6
	return Tag(u32(sl.raw[start : start+4]))
}

// ScriptAt resolves script record i.
func (sl *ScriptList) ScriptAt(i int) (*Script, error) {
	if sl == nil || i < 0 || i >= sl.count {
		return nil, errMalformedOffset(sl.table, "ScriptList", sl.head,
			"script record index out of range")
	}
	start := 2 + i*6
	off := u16(sl.raw[start+4 : start+6])
	return viewScript(sl.table, sl.raw, sl.head, off)
}

// Script resolves a script by tag. The second return value is false if no
// record carries the tag.
func (sl *ScriptList) Script(tag Tag) (*Script, bool, error) {
	if sl == nil {
		return nil, false, nil
	}
	for i := 0; i < sl.count; i++ {
		if sl.TagAt(i) != tag {
			continue
		}
		s, err := sl.ScriptAt(i)
		if err != nil {
			return nil, false, err
		}
		return s, true, nil
	}
	return nil, false, nil
}

// Range iterates script records in declaration order. Records whose
// offsets are malformed are skipped.
func (sl *ScriptList) Range() iter.Seq2[Tag, *Script] {
	return func(yield func(Tag, *Script) bool) {
		if sl == nil {
			return
		}
		for i := 0; i < sl.count; i++ {
			s, err := sl.ScriptAt(i)
			if err != nil {
				continue
			}
			if !yield(sl.TagAt(i), s) {
				return
			}
		}
	}
}

// Script is a view over one OpenType Script table.
type Script struct {
	table        Tag
	raw          binarySegm // segment starting at the Script table
	head         uint32     // byte offset of the Script table from the table origin
	defaultLS    uint16     // offset of the default LangSys, 0 if absent
	langSysCount int
}

func viewScript(table Tag, list binarySegm, listHead uint32, off uint16) (*Script, error) {
	if off == 0 || int(off)+4 > len(list) {
		return nil, errMalformedOffset(table, "Script", listHead+uint32(off),
			"script offset outside of ScriptList")
	}
	raw := list[off:]
	s := &Script{
		table:        table,
		raw:          raw,
		head:         listHead + uint32(off),
		defaultLS:    raw.U16(0),
		langSysCount: int(raw.U16(2)),
	}
	if 4+s.langSysCount*6 > len(raw) {
		return nil, errMalformedOffset(table, "Script", s.head,
			"LangSys record array exceeds table bounds")
	}
	return s, nil
}

// Head returns the byte offset of this Script table from the origin of the
// enclosing layout table. Two scripts with equal Head refer to the same
// physical table.
func (s *Script) Head() uint32 {
	if s == nil {
		return 0
	}
	return s.head
}

// DefaultLangSys resolves the default language system. The second return
// value is false if the script declares none.
func (s *Script) DefaultLangSys() (*LangSys, bool, error) {
	if s == nil || s.defaultLS == 0 {
		return nil, false, nil
	}
	ls, err := viewLangSys(s.table, s.raw, s.head, s.defaultLS)
	if err != nil {
		return nil, false, err
	}
	return ls, true, nil
}

// LangSysCount returns the number of (non-default) LangSys records.
func (s *Script) LangSysCount() int {
	if s == nil {
		return 0
	}
	return s.langSysCount
}

// LangSysTagAt returns the language-system tag of record i.
func (s *Script) LangSysTagAt(i int) Tag {
	if s == nil || i < 0 || i >= s.langSysCount {
		return 0
	}
	start := 4 + i*6
	return Tag(u32(s.raw[start : start+4]))
}

// LangSysAt resolves LangSys record i.
func (s *Script) LangSysAt(i int) (*LangSys, error) {
	if s == nil || i < 0 || i >= s.langSysCount {
		return nil, errMalformedOffset(s.table, "Script", s.head,
			"LangSys record index out of range")
	}
	start := 4 + i*6
	off := u16(s.raw[start+4 : start+6])
	return viewLangSys(s.table, s.raw, s.head, off)
}

// LangSys resolves a language system by tag. The second return value is
// false if no record carries the tag.
func (s *Script) LangSys(tag Tag) (*LangSys, bool, error) {
	if s == nil {
		return nil, false, nil
	}
	for i := 0; i < s.langSysCount; i++ {
		if s.LangSysTagAt(i) != tag {
			continue
		}
		ls, err := s.LangSysAt(i)
		if err != nil {
			return nil, false, err
		}
		return ls, true, nil
	}
	return nil, false, nil
}

// Range iterates LangSys records in declaration order, not including the
// default language system. Records whose offsets are malformed are skipped.
func (s *Script) Range() iter.Seq2[Tag, *LangSys] {
	return func(yield func(Tag, *LangSys) bool) {
		if s == nil {
			return
		}
		for i := 0; i < s.langSysCount; i++ {
			ls, err := s.LangSysAt(i)
			if err != nil {
				continue
			}
			if !yield(s.LangSysTagAt(i), ls) {
				return
			}
		}
	}
}

// --- LangSys -----------------------------------------------------------------

// NoRequiredFeature is the sentinel a LangSys table carries in place of a
// required-feature index when no feature is required.
const NoRequiredFeature uint16 = 0xFFFF

// LangSys is a view over one OpenType LangSys table.
type LangSys struct {
	table         Tag
	raw           binarySegm // segment starting at the LangSys table
	head          uint32     // byte offset of the LangSys table from the table origin
	requiredIndex uint16
	featureCount  int
}

// viewLangSys resolves a LangSys offset relative to its Script table.
// Offset 0 is not a valid LangSys position; "no default LangSys" is
// handled by the caller before resolving.
func viewLangSys(table Tag, script binarySegm, scriptHead uint32, off uint16) (*LangSys, error) {
	if off == 0 {
		return nil, errMalformedOffset(table, "LangSys", scriptHead,
			"NULL offset in LangSys record")
	}
	if int(off)+6 > len(script) {
		return nil, errMalformedOffset(table, "LangSys", scriptHead+uint32(off),
			"LangSys offset outside of Script table")
	}
	raw := script[off:]
	ls := &LangSys{
		table:         table,
		raw:           raw,
		head:          scriptHead + uint32(off),
		requiredIndex: raw.U16(2),
		featureCount:  int(raw.U16(4)),
	}
	if 6+ls.featureCount*2 > len(raw) {
		return nil, errMalformedOffset(table, "LangSys", ls.head,
			"feature index array exceeds table bounds")
	}
	return ls, nil
}

// Head returns the byte offset of this LangSys table from the origin of
// the enclosing layout table. Two language systems with equal Head refer
// to the same physical table.
func (ls *LangSys) Head() uint32 {
	if ls == nil {
		return 0
	}
	return ls.head
}

// RequiredFeatureIndex returns the required-feature index and whether it
// is set. An on-disk value of 0xFFFF means no required feature.
func (ls *LangSys) RequiredFeatureIndex() (uint16, bool) {
	if ls == nil || ls.requiredIndex == NoRequiredFeature {
		return 0, false
	}
	return ls.requiredIndex, true
}

// FeatureIndexCount returns the number of feature indices listed by this
// language system, not counting the required feature.
func (ls *LangSys) FeatureIndexCount() int {
	if ls == nil {
		return 0
	}
	return ls.featureCount
}

// FeatureIndexAt returns feature index i of this language system.
func (ls *LangSys) FeatureIndexAt(i int) (uint16, bool) {
	if ls == nil || i < 0 || i >= ls.featureCount {
		return 0, false
	}
	return ls.raw.U16(6 + i*2), true
}

// FeatureIndices returns all listed feature indices in declaration order.
func (ls *LangSys) FeatureIndices() []uint16 {
	if ls == nil || ls.featureCount == 0 {
		return nil
	}
	indices := make([]uint16, ls.featureCount)
	for i := range indices {
		indices[i] = ls.raw.U16(6 + i*2)
	}
	return indices
}

// --- FeatureList -------------------------------------------------------------

// FeatureList is a view over the FeatureList of a GSUB/GPOS table.
// Duplicate feature tags are legal and preserved.
type FeatureList struct {
	table Tag
	raw   binarySegm // segment starting at the FeatureList
	head  uint32     // byte offset of the FeatureList from the table origin
	count int
}

// Len returns the number of feature records.
func (fl *FeatureList) Len() int {
	if fl == nil {
		return 0
	}
	return fl.count
}

// TagAt returns the feature tag of record i.
func (fl *FeatureList) TagAt(i int) Tag {
	if fl == nil || i < 0 || i >= fl.count {
		return 0
	}
	start := 2 + i*6
	return Tag(u32(fl.raw[start : start+4]))
}

// FeatureAt resolves feature record i.
func (fl *FeatureList) FeatureAt(i int) (*Feature, error) {
	if fl == nil || i < 0 || i >= fl.count {
		return nil, errMalformedOffset(fl.table, "FeatureList", fl.head,
			"feature record index out of range")
	}
	start := 2 + i*6
	off := u16(fl.raw[start+4 : start+6])
	if off == 0 || int(off)+4 > len(fl.raw) {
		return nil, errMalformedOffset(fl.table, "Feature", fl.head+uint32(off),
			"feature offset outside of FeatureList")
	}
	raw := fl.raw[off:]
	f := &Feature{
		table:        fl.table,
		raw:          raw,
		head:         fl.head + uint32(off),
		paramsOffset: raw.U16(0),
		lookupCount:  int(raw.U16(2)),
	}
	if 4+f.lookupCount*2 > len(raw) {
		return nil, errMalformedOffset(fl.table, "Feature", f.head,
			"lookup index array exceeds table bounds")
	}
	return f, nil
}

// Indices returns the indices of all feature records carrying the given
// tag, in declaration order.
func (fl *FeatureList) Indices(tag Tag) []int {
	if fl == nil {
		return nil
	}
	var indices []int
	for i := 0; i < fl.count; i++ {
		if fl.TagAt(i) == tag {
			indices = append(indices, i)
		}
	}
	return indices
}

// Range iterates feature records in declaration order and preserves
// duplicate tags. Records whose offsets are malformed are skipped.
func (fl *FeatureList) Range() iter.Seq2[Tag, *Feature] {
	return func(yield func(Tag, *Feature) bool) {
		if fl == nil {
			return
		}
		for i := 0; i < fl.count; i++ {
			f, err := fl.FeatureAt(i)
			if err != nil {
				continue
			}
			if !yield(fl.TagAt(i), f) {
				return
			}
		}
	}
}

// Feature is a view over one OpenType Feature table.
type Feature struct {
	table        Tag
	raw          binarySegm
	head         uint32
	paramsOffset uint16
	lookupCount  int
}

// Head returns the byte offset of this Feature table from the origin of
// the enclosing layout table.
func (f *Feature) Head() uint32 {
	if f == nil {
		return 0
	}
	return f.head
}

// LookupCount returns the number of linked lookups.
func (f *Feature) LookupCount() int {
	if f == nil {
		return 0
	}
	return f.lookupCount
}

// LookupIndexAt returns lookup-list index i of this feature.
func (f *Feature) LookupIndexAt(i int) (uint16, bool) {
	if f == nil || i < 0 || i >= f.lookupCount {
		return 0, false
	}
	return f.raw.U16(4 + i*2), true
}

// LookupIndices returns all linked lookup-list indices in declaration order.
func (f *Feature) LookupIndices() []uint16 {
	if f == nil || f.lookupCount == 0 {
		return nil
	}
	indices := make([]uint16, f.lookupCount)
	for i := range indices {
		indices[i] = f.raw.U16(4 + i*2)
	}
	return indices
}
