package otlayout

import (
	"strings"

	"github.com/npillmayer/otl/ot"
	"golang.org/x/text/language"
)

// Conversion of BCP-47 script and language identifiers to OpenType layout
// tags, for use in FeatureQuery. Complete tag registries at:
// https://docs.microsoft.com/en-us/typography/opentype/spec/scripttags
// https://docs.microsoft.com/en-us/typography/opentype/spec/languagetags

// dfltLanguage is the OpenType language tag `dflt`. Not a valid language
// tag, but some fonts mistakenly use it.
var dfltLanguage = ot.T("dflt")

// newStyleScriptTags maps ISO 15924 script codes to the revised ("v2")
// OpenType script tags introduced for Indic shaping.
var newStyleScriptTags = map[string]ot.Tag{
	"Beng": ot.T("bng2"),
	"Deva": ot.T("dev2"),
	"Gujr": ot.T("gjr2"),
	"Guru": ot.T("gur2"),
	"Knda": ot.T("knd2"),
	"Mlym": ot.T("mlm2"),
	"Orya": ot.T("ory2"),
	"Taml": ot.T("tml2"),
	"Telu": ot.T("tel2"),
	"Mymr": ot.T("mym2"),
}

// oldStyleScriptTags maps ISO 15924 script codes whose OpenType tag is not
// simply the lowercased code. Most scripts just lowercase; these are the
// exceptions, accurate per the OpenType script tag registry.
var oldStyleScriptTags = map[string]ot.Tag{
	"Zmth": ot.T("math"),
	"Hira": ot.T("kana"), // KATAKANA and HIRAGANA both map to 'kana'
	"Kana": ot.T("kana"),
	"Laoo": ot.T("lao "), // spaces at the end are preserved, unlike ISO 15924
	"Yiii": ot.T("yi  "),
	"Nkoo": ot.T("nko "),
	"Vaii": ot.T("vai "),
}

// ScriptTags returns candidate OpenType script tags for a BCP-47 language
// tag, most specific first. Scripts with a revised OpenType shaping model
// yield two candidates, e.g. "bn" yields 'bng2' before 'beng'. An
// unparsable input yields the default script DFLT.
func ScriptTags(bcp47 string) []ot.Tag {
	parsed, err := language.Parse(bcp47)
	if err != nil {
		return []ot.Tag{ot.DFLT}
	}
	script, _ := parsed.Script()
	iso := script.String()
	var tags []ot.Tag
	if t, ok := newStyleScriptTags[iso]; ok {
		tags = append(tags, t)
	}
	if t, ok := oldStyleScriptTags[iso]; ok {
		return append(tags, t)
	}
	if len(iso) != 4 || iso == "Zzzz" {
		return append(tags, ot.DFLT)
	}
	return append(tags, ot.T(strings.ToLower(iso)))
}

// LanguageTag returns the OpenType language-system tag for a BCP-47
// language tag. OpenType language tags are the upper-cased ISO 639-3 code,
// padded with spaces. The second return value is false if the input cannot
// be parsed or names no specific language ("", "dflt"); the caller should
// then fall back to the default language system.
func LanguageTag(bcp47 string) (ot.Tag, bool) {
	if bcp47 == "" || strings.EqualFold(bcp47, "dflt") {
		return dfltLanguage, false
	}
	parsed, err := language.Parse(bcp47)
	if err != nil {
		return dfltLanguage, false
	}
	base, _ := parsed.Base()
	iso3 := base.ISO3()
	if len(iso3) != 3 {
		return dfltLanguage, false
	}
	return ot.T(strings.ToUpper(iso3) + " "), true
}
