/*
Package ot provides the shared data model for OpenType layout tables
(GSUB and GPOS), together with a zero-copy read-side view over their
Script → LangSys → Feature hierarchy.

Intended audience for this package are:

▪︎ layout-closure engines, which need to walk the script/language/feature
graph of a font (see sister package otlayout)

▪︎ table compilers, which build ClassDef-, Coverage- and Lookup-shaped
sub-tables and need read-back accessors for verification (see sister
package otbuild)

Package `ot` will not load font files and will not interpret tables
beyond the layout hierarchy. Callers hand it the raw bytes of a GSUB or
GPOS table (obtained from whatever font parser they use) and receive
navigable views. The views are projections onto the original bytes; no
table data is copied out. From this point of view, `ot` is a low-level
package.

Fonts are adversarial input: offsets may point anywhere, counts may lie.
Every view constructor bounds-checks counts and offsets against the
enclosing segment and reports malformed structures as TableError values.
Views additionally remember their byte offset from the layout-table
origin (see Script.Head and LangSys.Head), so that clients can detect
distinct records aliasing the same sub-table bytes.

# Status

Work in progress. Handling fonts is fiddly and fonts have become complex
software applications in their own right.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package ot

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'font.otl'
func tracer() tracing.Trace {
	return tracing.Select("font.otl")
}
