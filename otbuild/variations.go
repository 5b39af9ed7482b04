package otbuild

import (
	"fmt"
	"math"
	"sort"
)

// --- Design-space regions -------------------------------------------------------

// F2Dot14 is a signed 2.14 fixed-point number, the coordinate scalar of
// normalized design-space positions. Values range from -2.0 to
// 1.99993896484375.
type F2Dot14 int16

// F2Dot14FromFloat converts a float to 2.14 fixed point, rounding to the
// nearest representable value.
func F2Dot14FromFloat(f float64) F2Dot14 {
	return F2Dot14(math.Round(f * 16384))
}

// Float converts back to a float64.
func (f F2Dot14) Float() float64 {
	return float64(f) / 16384
}

// RegionAxisCoordinates describes one axis of a variation region: the
// region's influence starts at Start, peaks at Peak and ends at End, all
// in normalized design-space coordinates.
type RegionAxisCoordinates struct {
	Start F2Dot14
	Peak  F2Dot14
	End   F2Dot14
}

// VariationRegion is a region of the design space, one entry per axis.
type VariationRegion []RegionAxisCoordinates

// regionKey is the canonical byte encoding of a region, used for
// deduplication.
func (vr VariationRegion) regionKey() string {
	b := make([]byte, 0, 6*len(vr))
	for _, axis := range vr {
		b = appendU16(b, uint16(axis.Start))
		b = appendU16(b, uint16(axis.Peak))
		b = appendU16(b, uint16(axis.End))
	}
	return string(b)
}

// RegionDelta is one (region, delta) contribution of a delta set.
type RegionDelta struct {
	Region VariationRegion
	Delta  int16
}

// --- Variation store builder ----------------------------------------------------

// TemporaryDeltaSetID is the opaque handle returned when a delta set is
// registered with a VariationStoreBuilder. Final (outer, inner) indices
// are unobservable until the builder is finalized; use
// VariationIndexRemapping to resolve handles afterwards.
type TemporaryDeltaSetID uint32

// VariationStoreBuilder accumulates per-region delta sets and finalizes
// them into a compact ItemVariationStore. Identical submissions share a
// handle; identical rows within a bucket share a final index.
//
// The builder is finalized exactly once, globally, after every deferred
// value in the whole table tree has registered: bucketing and dedup of
// delta sets cannot be decided before all contributors are known.
type VariationStoreBuilder struct {
	sets     []deltaSet
	byKey    map[string]TemporaryDeltaSetID
	consumed bool
}

type deltaSet struct {
	deltas []RegionDelta
	key    string
}

// NewVariationStoreBuilder creates an empty builder.
func NewVariationStoreBuilder() *VariationStoreBuilder {
	return &VariationStoreBuilder{byKey: make(map[string]TemporaryDeltaSetID)}
}

// AddDeltas registers a delta set and returns an opaque handle for it.
// Submitting an identical delta list returns the same handle.
func (vb *VariationStoreBuilder) AddDeltas(deltas []RegionDelta) TemporaryDeltaSetID {
	if vb.consumed {
		panic("otbuild: VariationStoreBuilder used after Build")
	}
	// canonical order: sort by region key, so permuted submissions dedup
	sorted := make([]RegionDelta, len(deltas))
	copy(sorted, deltas)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Region.regionKey() < sorted[j].Region.regionKey()
	})
	key := ""
	for _, rd := range sorted {
		key += rd.Region.regionKey()
		key += string([]byte{byte(uint16(rd.Delta) >> 8), byte(rd.Delta)})
	}
	if id, ok := vb.byKey[key]; ok {
		return id
	}
	id := TemporaryDeltaSetID(len(vb.sets))
	vb.sets = append(vb.sets, deltaSet{deltas: sorted, key: key})
	vb.byKey[key] = id
	return id
}

// ItemVariationData is one sub-table of an ItemVariationStore: a group of
// delta-set rows sharing the same region list. Row i holds one delta per
// entry of RegionIndexes.
type ItemVariationData struct {
	RegionIndexes []uint16
	DeltaSets     [][]int16
}

// ItemVariationStore is the finished store: the region list plus the
// item-variation-data sub-tables. A VariationIndex (outer, inner) selects
// sub-table outer, row inner.
type ItemVariationStore struct {
	Regions []VariationRegion
	Data    []ItemVariationData
}

// VariationIndex is a final (outer, inner) reference into an
// ItemVariationStore.
type VariationIndex struct {
	Outer uint16
	Inner uint16
}

// VariationIndexRemapping resolves temporary delta-set handles to final
// variation indices after the store has been built.
type VariationIndexRemapping struct {
	indices map[TemporaryDeltaSetID]VariationIndex
}

// Get resolves a handle to its final variation index.
func (r VariationIndexRemapping) Get(id TemporaryDeltaSetID) (VariationIndex, bool) {
	vi, ok := r.indices[id]
	return vi, ok
}

// Len returns the number of mapped handles.
func (r VariationIndexRemapping) Len() int {
	return len(r.indices)
}

// Build finalizes the store: delta sets are bucketed by their region
// tuple, duplicate rows within a bucket collapse onto one inner index,
// and every handle is mapped to its final (outer, inner) pair. The
// builder is consumed; registering further deltas afterwards panics.
func (vb *VariationStoreBuilder) Build() (ItemVariationStore, VariationIndexRemapping) {
	if vb.consumed {
		panic("otbuild: VariationStoreBuilder used after Build")
	}
	vb.consumed = true
	store := ItemVariationStore{}
	remap := VariationIndexRemapping{
		indices: make(map[TemporaryDeltaSetID]VariationIndex, len(vb.sets)),
	}
	regionIndex := make(map[string]uint16)
	regionOf := func(vr VariationRegion) uint16 {
		key := vr.regionKey()
		if i, ok := regionIndex[key]; ok {
			return i
		}
		i := uint16(len(store.Regions))
		store.Regions = append(store.Regions, vr)
		regionIndex[key] = i
		return i
	}
	// buckets keyed by region-index tuple, in order of first appearance
	bucketIndex := make(map[string]uint16)
	rowIndex := make(map[string]uint16) // bucketKey + row bytes → inner
	for setID, set := range vb.sets {
		indexes := make([]uint16, len(set.deltas))
		row := make([]int16, len(set.deltas))
		bucketKey := ""
		for i, rd := range set.deltas {
			indexes[i] = regionOf(rd.Region)
			row[i] = rd.Delta
			bucketKey += string([]byte{byte(indexes[i] >> 8), byte(indexes[i])})
		}
		outer, ok := bucketIndex[bucketKey]
		if !ok {
			outer = uint16(len(store.Data))
			store.Data = append(store.Data, ItemVariationData{RegionIndexes: indexes})
			bucketIndex[bucketKey] = outer
		}
		rowKey := bucketKey + "|" + set.key
		inner, ok := rowIndex[rowKey]
		if !ok {
			data := &store.Data[outer]
			inner = uint16(len(data.DeltaSets))
			data.DeltaSets = append(data.DeltaSets, row)
			rowIndex[rowKey] = inner
		}
		remap.indices[TemporaryDeltaSetID(setID)] = VariationIndex{Outer: outer, Inner: inner}
	}
	tracer().Debugf("variation store built: %d regions, %d sub-tables, %d delta sets",
		len(store.Regions), len(store.Data), len(vb.sets))
	return store, remap
}

// --- Device tables and deferred values --------------------------------------------

// DeltaFormat describes how a Device table packs its per-size deltas.
type DeltaFormat uint16

// Device table delta formats.
const (
	Local2BitDeltas DeltaFormat = 1 // signed 2-bit deltas
	Local4BitDeltas DeltaFormat = 2 // signed 4-bit deltas
	Local8BitDeltas DeltaFormat = 3 // signed 8-bit deltas
)

// Device is a classic (non-variable) device table: per-ppem-size
// adjustments for one value. It passes through the deferred-value
// protocol unchanged.
type Device struct {
	StartSize uint16
	EndSize   uint16
	Format    DeltaFormat
	Values    []int8 // one delta per size from StartSize to EndSize
}

// DeviceOrVariationIndex is the resolved form of a deferred value
// annotation: a Device table, a final VariationIndex, or a
// PendingVariationIndex placeholder awaiting the global remap pass.
type DeviceOrVariationIndex interface {
	isDeviceOrVariationIndex()
}

func (Device) isDeviceOrVariationIndex()                {}
func (VariationIndex) isDeviceOrVariationIndex()        {}
func (PendingVariationIndex) isDeviceOrVariationIndex() {}

// PendingVariationIndex is a placeholder reference to a delta set whose
// final (outer, inner) index is not yet known. Serializing one is a
// precondition violation; rewrite it with RemapVariationIndex after the
// store's Build.
type PendingVariationIndex struct {
	DeltaSetID TemporaryDeltaSetID
}

// RemapVariationIndex rewrites a PendingVariationIndex placeholder to its
// final VariationIndex. Device tables and already-final indices pass
// through unchanged. An unknown handle returns an error.
func RemapVariationIndex(dv DeviceOrVariationIndex, remap VariationIndexRemapping) (DeviceOrVariationIndex, error) {
	pending, ok := dv.(PendingVariationIndex)
	if !ok {
		return dv, nil
	}
	vi, ok := remap.Get(pending.DeltaSetID)
	if !ok {
		return dv, fmt.Errorf("no variation index for delta set handle %d", pending.DeltaSetID)
	}
	return vi, nil
}

// DeviceOrDeltas is the authoring form of a deferred value annotation:
// absent, a Device table, or a list of per-region deltas. The zero value
// is absent.
type DeviceOrDeltas struct {
	device *Device
	deltas []RegionDelta
}

// NewDeviceAnnotation wraps a Device table.
func NewDeviceAnnotation(d Device) DeviceOrDeltas {
	return DeviceOrDeltas{device: &d}
}

// NewDeltasAnnotation wraps a delta list. An empty list is absent.
func NewDeltasAnnotation(deltas []RegionDelta) DeviceOrDeltas {
	return DeviceOrDeltas{deltas: deltas}
}

// IsNone reports whether the annotation is absent.
func (dd DeviceOrDeltas) IsNone() bool {
	return dd.device == nil && len(dd.deltas) == 0
}

// Build compiles the annotation into its final form. A Device table
// passes through; a delta list registers with the store builder and
// becomes a PendingVariationIndex that must be remapped after the store's
// global Build. The second return value is false for an absent
// annotation.
func (dd DeviceOrDeltas) Build(varStore *VariationStoreBuilder) (DeviceOrVariationIndex, bool) {
	switch {
	case dd.device != nil:
		return *dd.device, true
	case len(dd.deltas) > 0:
		tempID := varStore.AddDeltas(dd.deltas)
		return PendingVariationIndex{DeltaSetID: tempID}, true
	default:
		return nil, false
	}
}

// Metric is a value with a default position and an optional device table
// or delta set.
type Metric struct {
	Default        int16
	DeviceOrDeltas DeviceOrDeltas
}

// IsZero reports whether the default value is 0 with no annotation.
func (m Metric) IsZero() bool {
	return m.Default == 0 && !m.HasDeviceOrDeltas()
}

// HasDeviceOrDeltas reports whether the metric carries a device table or
// deltas.
func (m Metric) HasDeviceOrDeltas() bool {
	return !m.DeviceOrDeltas.IsNone()
}
