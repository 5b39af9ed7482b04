package otlayout

import (
	"errors"
	"fmt"
	"testing"

	"github.com/npillmayer/otl/ot"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

// --- Synthetic layout-table fixtures -----------------------------------------

type langSysSpec struct {
	required uint16 // 0xFFFF = none
	features []uint16
}

type taggedLangSys struct {
	tag string
	ls  langSysSpec
}

type scriptSpec struct {
	tag   string
	dflt  *langSysSpec
	langs []taggedLangSys
}

type featureSpec struct {
	tag     string
	lookups []uint16
}

func appendU16(b []byte, v uint16) []byte {
	return append(b, byte(v>>8), byte(v))
}

func appendTag(b []byte, tag string) []byte {
	return append(b, []byte((tag + "    ")[:4])...)
}

func langSysBytes(ls langSysSpec) []byte {
	b := appendU16(nil, 0) // lookupOrderOffset, reserved
	b = appendU16(b, ls.required)
	b = appendU16(b, uint16(len(ls.features)))
	for _, fi := range ls.features {
		b = appendU16(b, fi)
	}
	return b
}

func scriptBytes(s scriptSpec) []byte {
	headerSize := 4 + 6*len(s.langs)
	var tables []byte
	dfltOff := 0
	if s.dflt != nil {
		dfltOff = headerSize
		tables = append(tables, langSysBytes(*s.dflt)...)
	}
	langOffsets := make([]int, len(s.langs))
	for i, l := range s.langs {
		langOffsets[i] = headerSize + len(tables)
		tables = append(tables, langSysBytes(l.ls)...)
	}
	b := appendU16(nil, uint16(dfltOff))
	b = appendU16(b, uint16(len(s.langs)))
	for i, l := range s.langs {
		b = appendTag(b, l.tag)
		b = appendU16(b, uint16(langOffsets[i]))
	}
	return append(b, tables...)
}

// buildLayout assembles a GSUB/GPOS binary with the given scripts and
// features and an empty lookup list. All offsets are 16-bit, so fixtures
// must stay below 64 KB.
func buildLayout(scripts []scriptSpec, features []featureSpec) []byte {
	slHeader := 2 + 6*len(scripts)
	var scriptTables []byte
	scriptOffsets := make([]int, len(scripts))
	for i, s := range scripts {
		scriptOffsets[i] = slHeader + len(scriptTables)
		scriptTables = append(scriptTables, scriptBytes(s)...)
	}
	sl := appendU16(nil, uint16(len(scripts)))
	for i, s := range scripts {
		sl = appendTag(sl, s.tag)
		sl = appendU16(sl, uint16(scriptOffsets[i]))
	}
	sl = append(sl, scriptTables...)

	flHeader := 2 + 6*len(features)
	var featureTables []byte
	featureOffsets := make([]int, len(features))
	for i, f := range features {
		featureOffsets[i] = flHeader + len(featureTables)
		ft := appendU16(nil, 0) // featureParamsOffset
		ft = appendU16(ft, uint16(len(f.lookups)))
		for _, li := range f.lookups {
			ft = appendU16(ft, li)
		}
		featureTables = append(featureTables, ft...)
	}
	fl := appendU16(nil, uint16(len(features)))
	for i, f := range features {
		fl = appendTag(fl, f.tag)
		fl = appendU16(fl, uint16(featureOffsets[i]))
	}
	fl = append(fl, featureTables...)

	slOff := 10
	flOff := slOff + len(sl)
	llOff := flOff + len(fl)
	b := appendU16(nil, 1)
	b = appendU16(b, 0)
	b = appendU16(b, uint16(slOff))
	b = appendU16(b, uint16(flOff))
	b = appendU16(b, uint16(llOff))
	b = append(b, sl...)
	b = append(b, fl...)
	b = appendU16(b, 0) // empty LookupList
	return b
}

func testLayoutTable(t *testing.T, scripts []scriptSpec, features []featureSpec) *ot.LayoutTable {
	t.Helper()
	lt, err := ot.ParseLayoutTable(ot.T("GSUB"), buildLayout(scripts, features))
	if err != nil {
		t.Fatal(err)
	}
	return lt
}

// testHierarchy builds the fixture used by most collection tests:
//
//	DFLT             default LangSys: features {0}
//	latn             default LangSys: required 2, features {3, 5, 7}
//	latn / TRK       features {1, 4}
func testHierarchy(t *testing.T) *ot.LayoutTable {
	return testLayoutTable(t,
		[]scriptSpec{
			{tag: "DFLT", dflt: &langSysSpec{required: 0xFFFF, features: []uint16{0}}},
			{tag: "latn",
				dflt: &langSysSpec{required: 2, features: []uint16{3, 5, 7}},
				langs: []taggedLangSys{
					{tag: "TRK ", ls: langSysSpec{required: 0xFFFF, features: []uint16{1, 4}}},
				}},
		},
		[]featureSpec{
			{tag: "kern", lookups: []uint16{0}},
			{tag: "liga", lookups: []uint16{1}},
			{tag: "mark", lookups: []uint16{2}},
			{tag: "liga", lookups: []uint16{3}},
			{tag: "smcp", lookups: []uint16{4}},
			{tag: "calt", lookups: []uint16{5}},
			{tag: "dlig", lookups: []uint16{6}},
			{tag: "frac", lookups: []uint16{7}},
		},
	)
}

func assertIndices(t *testing.T, got *ot.IntSet[uint16], want ...uint16) {
	t.Helper()
	if !got.Equal(ot.NewIntSet[uint16](want...)) {
		t.Errorf("expected feature indices %v, got %v", want, got.Values())
	}
}

// --- Collection tests ----------------------------------------------------------

func TestCollectAllFeatures(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.otl")
	defer teardown()
	//
	lt := testHierarchy(t)
	indices, err := CollectFeatures(lt, FeatureQuery{})
	if err != nil {
		t.Fatal(err)
	}
	assertIndices(t, indices, 0, 1, 2, 3, 4, 5, 7)
}

func TestCollectScriptFiltered(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.otl")
	defer teardown()
	//
	lt := testHierarchy(t)
	indices, err := CollectFeatures(lt, FeatureQuery{Scripts: []ot.Tag{ot.T("latn")}})
	if err != nil {
		t.Fatal(err)
	}
	assertIndices(t, indices, 1, 2, 3, 4, 5, 7)
}

func TestCollectLanguageFiltered(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.otl")
	defer teardown()
	//
	lt := testHierarchy(t)
	// An explicit language selection does not visit default language systems.
	indices, err := CollectFeatures(lt, FeatureQuery{
		Scripts:   []ot.Tag{ot.T("latn")},
		Languages: []ot.Tag{ot.T("TRK ")},
	})
	if err != nil {
		t.Fatal(err)
	}
	assertIndices(t, indices, 1, 4)
}

func TestCollectFeatureFiltered(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.otl")
	defer teardown()
	//
	lt := testHierarchy(t)
	// 'liga' occurs twice in the FeatureList, at indices 1 and 3. Only
	// reachable indices are collected; the required feature 2 ('mark')
	// does not pass the filter.
	indices, err := CollectFeatures(lt, FeatureQuery{Features: []ot.Tag{ot.T("liga")}})
	if err != nil {
		t.Fatal(err)
	}
	assertIndices(t, indices, 1, 3)
}

func TestCollectEmptySelections(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.otl")
	defer teardown()
	//
	lt := testHierarchy(t)
	// nil means all, an empty non-nil slice selects nothing
	indices, err := CollectFeatures(lt, FeatureQuery{Scripts: []ot.Tag{}})
	if err != nil {
		t.Fatal(err)
	}
	if !indices.IsEmpty() {
		t.Errorf("expected no features for empty script selection, got %v", indices.Values())
	}
	indices, err = CollectFeatures(lt, FeatureQuery{Features: []ot.Tag{}})
	if err != nil {
		t.Fatal(err)
	}
	if !indices.IsEmpty() {
		t.Errorf("expected no features for empty feature selection, got %v", indices.Values())
	}
}

func TestCollectUnknownTagsSkipped(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.otl")
	defer teardown()
	//
	lt := testHierarchy(t)
	indices, err := CollectFeatures(lt, FeatureQuery{Scripts: []ot.Tag{ot.T("cyrl")}})
	if err != nil {
		t.Fatal(err)
	}
	if !indices.IsEmpty() {
		t.Errorf("expected no features for unknown script, got %v", indices.Values())
	}
	indices, err = CollectFeatures(lt, FeatureQuery{
		Scripts:   []ot.Tag{ot.T("latn"), ot.T("cyrl")},
		Languages: []ot.Tag{ot.T("AZE ")},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !indices.IsEmpty() {
		t.Errorf("expected no features for unknown language, got %v", indices.Values())
	}
}

func TestCollectFeatureTags(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.otl")
	defer teardown()
	//
	lt := testHierarchy(t)
	tags, err := CollectFeatureTags(lt, FeatureQuery{Scripts: []ot.Tag{ot.T("latn")}})
	if err != nil {
		t.Fatal(err)
	}
	want := ot.NewIntSet[ot.Tag](
		ot.T("liga"), ot.T("mark"), ot.T("smcp"), ot.T("calt"), ot.T("frac"))
	if !ot.NewIntSet[ot.Tag](tags...).Equal(want) {
		t.Errorf("unexpected feature tags %v", tags)
	}
}

// --- Adversarial input ---------------------------------------------------------

func TestCollectAliasedScriptsOnce(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.otl")
	defer teardown()
	//
	data := buildLayout(
		[]scriptSpec{
			{tag: "grek", dflt: &langSysSpec{required: 0xFFFF, features: []uint16{1, 2}}},
			{tag: "latn", dflt: &langSysSpec{required: 0xFFFF, features: []uint16{1, 2}}},
		},
		[]featureSpec{
			{tag: "kern", lookups: []uint16{0}},
			{tag: "liga", lookups: []uint16{1}},
			{tag: "mark", lookups: []uint16{2}},
		},
	)
	// Redirect the second script record at the first script's table, so two
	// tags alias the same physical script.
	slOff := 10
	copy(data[slOff+2+6+4:slOff+2+6+6], data[slOff+2+4:slOff+2+6])
	lt, err := ot.ParseLayoutTable(ot.T("GSUB"), data)
	if err != nil {
		t.Fatal(err)
	}
	indices, err := CollectFeatures(lt, FeatureQuery{})
	if err != nil {
		t.Fatal(err)
	}
	assertIndices(t, indices, 1, 2)
}

func TestCollectFeatureIndexBlockQuota(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.otl")
	defer teardown()
	//
	// One LangSys listing more indices than the traversal quota admits:
	// the whole block is rejected, only the required feature survives.
	overlong := make([]uint16, 1501)
	for i := range overlong {
		overlong[i] = uint16(i % 7)
	}
	lt := testLayoutTable(t,
		[]scriptSpec{
			{tag: "latn", dflt: &langSysSpec{required: 0, features: overlong}},
		},
		[]featureSpec{{tag: "kern", lookups: []uint16{0}}},
	)
	indices, err := CollectFeatures(lt, FeatureQuery{})
	if err != nil {
		t.Fatal(err)
	}
	assertIndices(t, indices, 0)
}

func TestCollectFeatureIndexQuotaAcrossLangSys(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.otl")
	defer teardown()
	//
	// 1600 language systems, each listing one distinct feature index.
	// The index quota admits only the first 1500 of them.
	langs := make([]taggedLangSys, 1600)
	for i := range langs {
		langs[i] = taggedLangSys{
			tag: fmt.Sprintf("L%03d", i),
			ls:  langSysSpec{required: 0xFFFF, features: []uint16{uint16(i)}},
		}
	}
	lt := testLayoutTable(t,
		[]scriptSpec{{tag: "latn", langs: langs}},
		[]featureSpec{{tag: "kern", lookups: []uint16{0}}},
	)
	indices, err := CollectFeatures(lt, FeatureQuery{})
	if err != nil {
		t.Fatal(err)
	}
	if indices.Len() != 1500 {
		t.Errorf("expected quota to admit 1500 indices, got %d", indices.Len())
	}
	if !indices.Contains(0) || !indices.Contains(1499) || indices.Contains(1550) {
		t.Error("expected exactly the first 1500 indices to be admitted")
	}
}

func TestCollectMalformedOffsetIsFatal(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.otl")
	defer teardown()
	//
	data := buildLayout(
		[]scriptSpec{{tag: "latn", dflt: &langSysSpec{required: 0xFFFF, features: []uint16{0}}}},
		[]featureSpec{{tag: "kern", lookups: []uint16{0}}},
	)
	slOff := 10
	data[slOff+2+4] = 0xFF // script offset far outside the table
	data[slOff+2+5] = 0xFF
	lt, err := ot.ParseLayoutTable(ot.T("GSUB"), data)
	if err != nil {
		t.Fatal(err)
	}
	_, err = CollectFeatures(lt, FeatureQuery{})
	if err == nil {
		t.Fatal("expected error for malformed script offset")
	}
	var terr ot.TableError
	if !errors.As(err, &terr) || terr.Severity != ot.SeverityCritical {
		t.Errorf("expected critical TableError, got %v", err)
	}
}

func TestCollectRequiredIndexAlsoListed(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.otl")
	defer teardown()
	//
	// a required feature index repeated in the listed indices must show
	// up exactly once
	lt := testLayoutTable(t,
		[]scriptSpec{
			{tag: "latn", dflt: &langSysSpec{required: 3, features: []uint16{3, 5, 7}}},
		},
		[]featureSpec{
			{tag: "kern", lookups: []uint16{0}},
			{tag: "liga", lookups: []uint16{1}},
			{tag: "mark", lookups: []uint16{2}},
			{tag: "liga", lookups: []uint16{3}},
			{tag: "smcp", lookups: []uint16{4}},
			{tag: "calt", lookups: []uint16{5}},
			{tag: "dlig", lookups: []uint16{6}},
			{tag: "frac", lookups: []uint16{7}},
		},
	)
	indices, err := CollectFeatures(lt, FeatureQuery{})
	if err != nil {
		t.Fatal(err)
	}
	assertIndices(t, indices, 3, 5, 7)
}

func TestCollectAliasedLangSysOnce(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.otl")
	defer teardown()
	//
	// Two language-system records redirected at the same physical LangSys.
	// Its index block must be charged against the quota only once: charged
	// twice, the remaining quota could no longer admit the third LangSys.
	first := make([]uint16, 800)
	for i := range first {
		first[i] = uint16(i)
	}
	third := make([]uint16, 700)
	for i := range third {
		third[i] = uint16(800 + i)
	}
	data := buildLayout(
		[]scriptSpec{
			{tag: "latn", langs: []taggedLangSys{
				{tag: "AAA ", ls: langSysSpec{required: 0xFFFF, features: first}},
				{tag: "BBB ", ls: langSysSpec{required: 0xFFFF, features: first}},
				{tag: "CCC ", ls: langSysSpec{required: 0xFFFF, features: third}},
			}},
		},
		[]featureSpec{{tag: "kern", lookups: []uint16{0}}},
	)
	// redirect the second LangSys record at the first's table
	scriptStart := 10 + 2 + 6 // ScriptList at 10, one 6-byte script record
	copy(data[scriptStart+4+6+4:scriptStart+4+6+6], data[scriptStart+4+4:scriptStart+4+6])
	lt, err := ot.ParseLayoutTable(ot.T("GSUB"), data)
	if err != nil {
		t.Fatal(err)
	}
	indices, err := CollectFeatures(lt, FeatureQuery{})
	if err != nil {
		t.Fatal(err)
	}
	if indices.Len() != 1500 {
		t.Errorf("expected 1500 indices with the alias visited once, got %d", indices.Len())
	}
	if !indices.Contains(799) || !indices.Contains(1499) {
		t.Error("expected both distinct LangSys tables to contribute")
	}
}

func TestCollectScriptCeiling(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.otl")
	defer teardown()
	//
	// 600 scripts, each funneling one distinct feature index. The script
	// quota admits 501 of them before cutting off.
	scripts := make([]scriptSpec, 600)
	for i := range scripts {
		scripts[i] = scriptSpec{
			tag:  fmt.Sprintf("S%03d", i),
			dflt: &langSysSpec{required: 0xFFFF, features: []uint16{uint16(i)}},
		}
	}
	lt := testLayoutTable(t, scripts,
		[]featureSpec{{tag: "kern", lookups: []uint16{0}}})
	indices, err := CollectFeatures(lt, FeatureQuery{})
	if err != nil {
		t.Fatal(err)
	}
	if indices.Len() != 501 {
		t.Errorf("expected 501 indices under the script quota, got %d", indices.Len())
	}
	if !indices.Contains(500) || indices.Contains(501) {
		t.Error("expected the cut to fall after script 501")
	}
}

func TestCollectLangSysCeiling(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.otl")
	defer teardown()
	//
	// 2100 language systems in one script; only a few carry features, as
	// markers on both sides of the quota boundary. The LangSys quota
	// admits 2001 records before cutting off.
	langs := make([]taggedLangSys, 2100)
	for i := range langs {
		langs[i] = taggedLangSys{
			tag: fmt.Sprintf("%04d", i),
			ls:  langSysSpec{required: 0xFFFF},
		}
	}
	langs[0].ls.features = []uint16{0}    // record 1, visited
	langs[2000].ls.features = []uint16{2} // record 2001, last one visited
	langs[2001].ls.features = []uint16{3} // record 2002, beyond the quota
	langs[2099].ls.features = []uint16{1}
	lt := testLayoutTable(t,
		[]scriptSpec{{tag: "latn", langs: langs}},
		[]featureSpec{{tag: "kern", lookups: []uint16{0}}},
	)
	indices, err := CollectFeatures(lt, FeatureQuery{})
	if err != nil {
		t.Fatal(err)
	}
	assertIndices(t, indices, 0, 2)
}
