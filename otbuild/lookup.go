package otbuild

import (
	"github.com/npillmayer/otl/ot"
)

// FilterSetID identifies a mark glyph set in GDEF, used by lookups with
// the USE_MARK_FILTERING_SET flag.
type FilterSetID = uint16

// SubtableBuilder builds one kind of lookup subtable. Build finalizes the
// builder against the shared variation store; a single builder may
// legally yield several physical subtables.
//
// The variation store is only meaningful for GPOS subtables, but it is
// passed everywhere so that lookup assembly is identical for GSUB and
// GPOS; GSUB builders simply ignore it.
type SubtableBuilder[S any] interface {
	Build(varStore *VariationStoreBuilder) []S
}

// Lookup is a finished lookup: flags, optional mark-filtering-set id and
// the flattened subtables, in builder order. Serialization of the
// surrounding offset graph is up to the caller.
type Lookup[S any] struct {
	Flags            ot.LayoutTableLookupFlag
	MarkFilteringSet *FilterSetID
	Subtables        []S
}

// LookupBuilder aggregates ordered subtable builders under shared lookup
// flags. It always holds at least one subtable builder, even if that
// builder is still empty.
type LookupBuilder[S any] struct {
	flags     ot.LayoutTableLookupFlag
	markSet   *FilterSetID
	subtables []SubtableBuilder[S]
	fresh     func() SubtableBuilder[S]
	consumed  bool
}

// NewLookupBuilder creates a builder holding one fresh subtable builder.
// fresh produces an empty subtable builder; it is also used by
// ForceSubtableBreak.
func NewLookupBuilder[S any](flags ot.LayoutTableLookupFlag, fresh func() SubtableBuilder[S]) *LookupBuilder[S] {
	return &LookupBuilder[S]{
		flags:     flags,
		fresh:     fresh,
		subtables: []SubtableBuilder[S]{fresh()},
	}
}

// NewLookupBuilderWithSubtables creates a builder over pre-existing
// subtable builders. An empty slice is replaced by one fresh builder to
// keep the at-least-one invariant.
func NewLookupBuilderWithSubtables[S any](flags ot.LayoutTableLookupFlag,
	fresh func() SubtableBuilder[S], subtables []SubtableBuilder[S]) *LookupBuilder[S] {
	//
	lb := &LookupBuilder[S]{flags: flags, fresh: fresh, subtables: subtables}
	if len(lb.subtables) == 0 {
		lb.subtables = []SubtableBuilder[S]{fresh()}
	}
	return lb
}

// SetMarkFilteringSet attaches a mark glyph set id to the lookup.
func (lb *LookupBuilder[S]) SetMarkFilteringSet(id FilterSetID) {
	lb.markSet = &id
}

// Flags returns the lookup-wide flags.
func (lb *LookupBuilder[S]) Flags() ot.LayoutTableLookupFlag {
	return lb.flags
}

// Last returns the most recent subtable builder. By invariant there
// always is one.
func (lb *LookupBuilder[S]) Last() SubtableBuilder[S] {
	return lb.subtables[len(lb.subtables)-1]
}

// ForceSubtableBreak ends the current subtable and appends a fresh one.
func (lb *LookupBuilder[S]) ForceSubtableBreak() {
	lb.subtables = append(lb.subtables, lb.fresh())
}

// SubtableCount returns the number of subtable builders.
func (lb *LookupBuilder[S]) SubtableCount() int {
	return len(lb.subtables)
}

// Build finalizes every subtable builder in order, flattens their outputs
// into one subtable list and stamps the lookup-wide flags and
// mark-filtering-set id. The builder is consumed; calling Build twice
// panics.
func (lb *LookupBuilder[S]) Build(varStore *VariationStoreBuilder) Lookup[S] {
	if lb.consumed {
		panic("otbuild: LookupBuilder used after Build")
	}
	lb.consumed = true
	var subtables []S
	for _, sb := range lb.subtables {
		subtables = append(subtables, sb.Build(varStore)...)
	}
	tracer().Debugf("lookup built with %d subtables from %d builders",
		len(subtables), len(lb.subtables))
	return Lookup[S]{
		Flags:            lb.flags,
		MarkFilteringSet: lb.markSet,
		Subtables:        subtables,
	}
}
