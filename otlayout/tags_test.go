package otlayout

import (
	"testing"

	"github.com/npillmayer/otl/ot"
	"github.com/stretchr/testify/assert"
)

func TestScriptTagsPlain(t *testing.T) {
	assert.Equal(t, []ot.Tag{ot.T("latn")}, ScriptTags("en"))
	assert.Equal(t, []ot.Tag{ot.T("cyrl")}, ScriptTags("sr-Cyrl"))
	assert.Equal(t, []ot.Tag{ot.T("arab")}, ScriptTags("ar"))
}

func TestScriptTagsExceptions(t *testing.T) {
	// Indic scripts carry a revised shaping model and yield two candidates
	assert.Equal(t, []ot.Tag{ot.T("bng2"), ot.T("beng")}, ScriptTags("bn"))
	assert.Equal(t, []ot.Tag{ot.T("tml2"), ot.T("taml")}, ScriptTags("ta"))
	// Hiragana and Katakana both map to 'kana'
	assert.Equal(t, []ot.Tag{ot.T("kana")}, ScriptTags("ja-Hira"))
	assert.Equal(t, []ot.Tag{ot.T("kana")}, ScriptTags("ja-Kana"))
	// spaces at the end are preserved
	assert.Equal(t, []ot.Tag{ot.T("lao ")}, ScriptTags("lo"))
}

func TestScriptTagsFallback(t *testing.T) {
	assert.Equal(t, []ot.Tag{ot.DFLT}, ScriptTags("!!not-bcp47!!"))
}

func TestLanguageTag(t *testing.T) {
	for bcp47, want := range map[string]string{
		"de":    "DEU ",
		"tr":    "TUR ",
		"en-US": "ENG ",
		"nb":    "NOB ",
	} {
		tag, ok := LanguageTag(bcp47)
		assert.True(t, ok, "expected %s to resolve", bcp47)
		assert.Equal(t, ot.T(want), tag, "language %s", bcp47)
	}
	_, ok := LanguageTag("!!not-bcp47!!")
	assert.False(t, ok)
	_, ok = LanguageTag("dflt")
	assert.False(t, ok)
}
