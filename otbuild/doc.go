/*
Package otbuild constructs binary-compatible OpenType layout sub-tables
from higher-level descriptions: Coverage tables, class definitions,
lookups and variation-bearing values.

The encoders are byte-exact. Where OpenType offers two binary formats for
the same data (Coverage, ClassDef), the encoder compares the exact encoded
sizes and picks the smaller one, never a heuristic.

Values which may vary across a variable font's design space follow a
two-phase protocol. During authoring, a value carries either a literal, a
device table, or a list of per-region deltas. Building registers delta
lists with a shared VariationStoreBuilder and leaves a pending placeholder
behind. After every contributor has registered, the store is finalized
once and a remap pass rewrites each placeholder to its final
(outer, inner) variation index. Serializing a placeholder before the
remap pass is a caller error.

Lookups are assembled by LookupBuilder, which keeps an ordered list of
subtable builders under shared lookup flags and flattens their outputs in
order. Subtable builders implement SubtableBuilder; a single builder may
produce several physical subtables.

The finished values are structured, not serialized: an external
offset-graph linearizer performs the final byte packing of whole lookups.
Coverage and ClassDef values additionally offer Encode, since their
binary forms are self-contained.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package otbuild

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces to a global core-tracer with key 'font.otl'.
func tracer() tracing.Trace {
	return tracing.Select("font.otl")
}
