package otlayout

import (
	"github.com/npillmayer/otl/ot"
)

// Traversal quotas. Fonts are adversarial input and may declare script
// lists or LangSys fan-outs far beyond anything a real typeface needs.
// Once a quota is exhausted the traversal stops admitting items of that
// kind and returns what it has collected so far.
const (
	maxScripts        = ot.MaxScriptCount
	maxLangSys        = ot.MaxLangSysCount
	maxFeatureIndices = ot.MaxFeatureCount
)

// FeatureQuery selects the part of the layout hierarchy a feature
// collection should traverse. A nil slice means "all"; an empty non-nil
// slice selects nothing. Tags without a matching record are skipped
// silently.
type FeatureQuery struct {
	Scripts   []ot.Tag // script tags to visit, nil = all scripts
	Languages []ot.Tag // language-system tags to visit, nil = all language systems
	Features  []ot.Tag // feature tags to admit, nil = all features
}

// CollectFeatures walks the Script → LangSys hierarchy of a layout table
// and returns the set of feature indices reachable under the given query.
// Feature indices are positions in the table's FeatureList.
//
// Indices are admitted as the font lists them, except that the 0xFFFF
// no-required-feature sentinel never enters the result through the
// required-feature path. The traversal caps the number of admitted
// indices, visited scripts and visited language systems. Distinct script
// or language-system records pointing at the same physical sub-table are
// visited once.
//
// An error is returned only for malformed offsets or counts; quota cut-offs
// degrade the result silently.
func CollectFeatures(layout *ot.LayoutTable, q FeatureQuery) (*ot.IntSet[uint16], error) {
	scriptList, err := layout.ScriptList()
	if err != nil {
		return ot.NewIntSet[uint16](), err
	}
	featureList, err := layout.FeatureList()
	if err != nil {
		return ot.NewIntSet[uint16](), err
	}
	c := newCollectContext(featureList, q)
	if q.Scripts == nil {
		for i := 0; i < scriptList.Len(); i++ {
			script, err := scriptList.ScriptAt(i)
			if err != nil {
				return c.featureIndices, err
			}
			if err := c.collectFromScript(script, q.Languages); err != nil {
				return c.featureIndices, err
			}
		}
	} else {
		for _, tag := range q.Scripts {
			script, ok, err := scriptList.Script(tag)
			if err != nil {
				return c.featureIndices, err
			}
			if !ok {
				tracer().Debugf("script %s not present in %s", tag, layout.Name())
				continue
			}
			if err := c.collectFromScript(script, q.Languages); err != nil {
				return c.featureIndices, err
			}
		}
	}
	return c.featureIndices, nil
}

// CollectFeatureTags resolves the indices collected by CollectFeatures
// against the table's FeatureList and returns the distinct feature tags,
// in ascending tag order.
func CollectFeatureTags(layout *ot.LayoutTable, q FeatureQuery) ([]ot.Tag, error) {
	indices, err := CollectFeatures(layout, q)
	if err != nil {
		return nil, err
	}
	featureList, err := layout.FeatureList()
	if err != nil {
		return nil, err
	}
	tags := ot.NewIntSet[ot.Tag]()
	for idx := range indices.Range() {
		if int(idx) >= featureList.Len() {
			continue // index points outside the FeatureList, nothing to resolve
		}
		tags.Add(featureList.TagAt(int(idx)))
	}
	return tags.Values(), nil
}

// collectContext carries the bookkeeping of one feature collection:
// quota counters, alias detection and the optional feature-index filter.
type collectContext struct {
	scriptCount       uint16
	langSysCount      uint16
	featureIndexCount uint16

	visitedScripts *ot.IntSet[uint32] // byte offsets of visited Script tables
	visitedLangSys *ot.IntSet[uint32] // byte offsets of visited LangSys tables

	featureIndices *ot.IntSet[uint16]
	filter         *ot.IntSet[uint16] // nil when the query admits all features
}

func newCollectContext(featureList *ot.FeatureList, q FeatureQuery) *collectContext {
	c := &collectContext{
		visitedScripts: ot.NewIntSet[uint32](),
		visitedLangSys: ot.NewIntSet[uint32](),
		featureIndices: ot.NewIntSet[uint16](),
	}
	if q.Features != nil {
		// Translate feature tags to FeatureList indices. Duplicate tags
		// contribute all their indices.
		c.filter = ot.NewIntSet[uint16]()
		wanted := ot.NewIntSet[ot.Tag](q.Features...)
		for i := 0; i < featureList.Len(); i++ {
			if wanted.Contains(featureList.TagAt(i)) {
				c.filter.Add(uint16(i))
			}
		}
	}
	return c
}

// scriptVisited charges the script quota and reports whether the script
// has been seen before or the quota is exhausted.
func (c *collectContext) scriptVisited(s *ot.Script) bool {
	if c.scriptCount > maxScripts {
		return true
	}
	c.scriptCount++
	head := s.Head()
	if c.visitedScripts.Contains(head) {
		return true
	}
	c.visitedScripts.Add(head)
	return false
}

// langSysVisited charges the LangSys quota and reports whether the
// language system has been seen before or the quota is exhausted.
func (c *collectContext) langSysVisited(ls *ot.LangSys) bool {
	if c.langSysCount > maxLangSys {
		return true
	}
	c.langSysCount++
	head := ls.Head()
	if c.visitedLangSys.Contains(head) {
		return true
	}
	c.visitedLangSys.Add(head)
	return false
}

// featureIndicesLimitExceeded charges count feature indices against the
// quota and reports whether the quota is exhausted. The counter saturates
// instead of wrapping when a font claims near-maximal counts.
func (c *collectContext) featureIndicesLimitExceeded(count uint16) bool {
	newCount := c.featureIndexCount + count
	if newCount < c.featureIndexCount { // uint16 overflow
		c.featureIndexCount = maxFeatureIndices
		return true
	}
	c.featureIndexCount = newCount
	return newCount > maxFeatureIndices
}

func (c *collectContext) collectFromScript(s *ot.Script, languages []ot.Tag) error {
	if c.scriptVisited(s) {
		return nil
	}
	if languages == nil {
		dflt, ok, err := s.DefaultLangSys()
		if err != nil {
			return err
		}
		if ok {
			c.collectFromLangSys(dflt)
		}
		for i := 0; i < s.LangSysCount(); i++ {
			ls, err := s.LangSysAt(i)
			if err != nil {
				return err
			}
			c.collectFromLangSys(ls)
		}
		return nil
	}
	// With an explicit language selection only the listed language systems
	// are visited; the default LangSys is not.
	for _, tag := range languages {
		ls, ok, err := s.LangSys(tag)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		c.collectFromLangSys(ls)
	}
	return nil
}

func (c *collectContext) collectFromLangSys(ls *ot.LangSys) {
	if c.langSysVisited(ls) {
		return
	}
	if c.filter == nil {
		// All features. The required feature is charged individually, the
		// listed indices as one block: either the whole list fits into the
		// remaining quota or none of it is admitted.
		if required, ok := ls.RequiredFeatureIndex(); ok && !c.featureIndicesLimitExceeded(1) {
			c.featureIndices.Add(required)
		}
		count := uint16(ls.FeatureIndexCount())
		if !c.featureIndicesLimitExceeded(count) {
			c.featureIndices.Add(ls.FeatureIndices()...)
		}
		return
	}
	if c.filter.IsEmpty() {
		return
	}
	if required, ok := ls.RequiredFeatureIndex(); ok && c.filter.Contains(required) &&
		!c.featureIndicesLimitExceeded(1) {
		c.featureIndices.Add(required)
	}
	for i := 0; i < ls.FeatureIndexCount(); i++ {
		idx, _ := ls.FeatureIndexAt(i)
		if !c.filter.Contains(idx) {
			continue
		}
		if c.featureIndicesLimitExceeded(1) {
			break
		}
		c.featureIndices.Add(idx)
	}
}
