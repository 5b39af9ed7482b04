/*
Package otlayout provides access to feature information of OpenType layout
tables (GSUB and GPOS).

The central operation is the feature closure: given a layout table and an
optional selection of scripts, languages and features, collect the set of
feature indices reachable through the table's Script, LangSys and Feature
hierarchy. The traversal is hardened against adversarial font files. Tables
which branch excessively or link to themselves are cut off by traversal
quotas and alias detection, without failing the whole query. Only malformed
offsets and counts, which make the binary data un-navigable, surface as
errors.

# Status

This package provides the read-side feature traversal. Building binary
layout structures (coverage, class definitions, lookups) lives in package
otbuild.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package otlayout

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces to a global core-tracer with key 'font.otl'.
func tracer() tracing.Trace {
	return tracing.Select("font.otl")
}
