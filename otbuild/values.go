package otbuild

// Variation-bearing value builders: positioning value records, anchors
// and GDEF ligature caret values. These are the consumers of the deferred
// variation protocol; each Build registers delta lists with the shared
// VariationStoreBuilder and leaves PendingVariationIndex placeholders
// behind.

// ValueFormat is a bitmask that describes which fields are present in a
// ValueRecord.
type ValueFormat uint16

const (
	ValueFormatXPlacement ValueFormat = 0x0001 // Includes horizontal adjustment for placement
	ValueFormatYPlacement ValueFormat = 0x0002 // Includes vertical adjustment for placement
	ValueFormatXAdvance   ValueFormat = 0x0004 // Includes horizontal adjustment for advance
	ValueFormatYAdvance   ValueFormat = 0x0008 // Includes vertical adjustment for advance
	ValueFormatXPlaDevice ValueFormat = 0x0010 // Includes Device table for horizontal placement
	ValueFormatYPlaDevice ValueFormat = 0x0020 // Includes Device table for vertical placement
	ValueFormatXAdvDevice ValueFormat = 0x0040 // Includes Device table for horizontal advance
	ValueFormatYAdvDevice ValueFormat = 0x0080 // Includes Device table for vertical advance
)

// ValueRecord is a finished GPOS value record. Device fields are nil,
// a Device table, a VariationIndex, or a PendingVariationIndex awaiting
// the remap pass.
type ValueRecord struct {
	XPlacement int16
	YPlacement int16
	XAdvance   int16
	YAdvance   int16
	XPlaDevice DeviceOrVariationIndex
	YPlaDevice DeviceOrVariationIndex
	XAdvDevice DeviceOrVariationIndex
	YAdvDevice DeviceOrVariationIndex
}

// Format computes the value-format bitmask for this record: a scalar bit
// for each non-zero adjustment, a device bit for each present annotation.
func (vr ValueRecord) Format() ValueFormat {
	var f ValueFormat
	if vr.XPlacement != 0 {
		f |= ValueFormatXPlacement
	}
	if vr.YPlacement != 0 {
		f |= ValueFormatYPlacement
	}
	if vr.XAdvance != 0 {
		f |= ValueFormatXAdvance
	}
	if vr.YAdvance != 0 {
		f |= ValueFormatYAdvance
	}
	if vr.XPlaDevice != nil {
		f |= ValueFormatXPlaDevice
	}
	if vr.YPlaDevice != nil {
		f |= ValueFormatYPlaDevice
	}
	if vr.XAdvDevice != nil {
		f |= ValueFormatXAdvDevice
	}
	if vr.YAdvDevice != nil {
		f |= ValueFormatYAdvDevice
	}
	return f
}

// RemapVariationIndices rewrites every pending device field to its final
// variation index.
func (vr ValueRecord) RemapVariationIndices(remap VariationIndexRemapping) (ValueRecord, error) {
	var err error
	for _, field := range []*DeviceOrVariationIndex{
		&vr.XPlaDevice, &vr.YPlaDevice, &vr.XAdvDevice, &vr.YAdvDevice,
	} {
		if *field == nil {
			continue
		}
		if *field, err = RemapVariationIndex(*field, remap); err != nil {
			return vr, err
		}
	}
	return vr, nil
}

// ValueRecordBuilder authors a GPOS value record from four metrics, each
// optionally annotated with a device table or deltas.
type ValueRecordBuilder struct {
	XPlacement Metric
	YPlacement Metric
	XAdvance   Metric
	YAdvance   Metric
}

// IsZero reports whether all four metrics are zero and unannotated.
func (b ValueRecordBuilder) IsZero() bool {
	return b.XPlacement.IsZero() && b.YPlacement.IsZero() &&
		b.XAdvance.IsZero() && b.YAdvance.IsZero()
}

// Build compiles the metrics into a ValueRecord, registering delta lists
// with the store builder.
func (b ValueRecordBuilder) Build(varStore *VariationStoreBuilder) ValueRecord {
	vr := ValueRecord{
		XPlacement: b.XPlacement.Default,
		YPlacement: b.YPlacement.Default,
		XAdvance:   b.XAdvance.Default,
		YAdvance:   b.YAdvance.Default,
	}
	vr.XPlaDevice, _ = b.XPlacement.DeviceOrDeltas.Build(varStore)
	vr.YPlaDevice, _ = b.YPlacement.DeviceOrDeltas.Build(varStore)
	vr.XAdvDevice, _ = b.XAdvance.DeviceOrDeltas.Build(varStore)
	vr.YAdvDevice, _ = b.YAdvance.DeviceOrDeltas.Build(varStore)
	return vr
}

// --- Anchors -------------------------------------------------------------------

// AnchorFormat represents the format of an Anchor table.
type AnchorFormat uint16

const (
	AnchorFormat1 AnchorFormat = 1 // Design units only
	AnchorFormat2 AnchorFormat = 2 // Design units plus contour point
	AnchorFormat3 AnchorFormat = 3 // Design units plus Device tables
)

// Anchor is a finished attachment point on a glyph.
type Anchor struct {
	Format      AnchorFormat
	X           int16
	Y           int16
	AnchorPoint uint16                 // contour point index (format 2 only)
	XDevice     DeviceOrVariationIndex // format 3 only
	YDevice     DeviceOrVariationIndex // format 3 only
}

// RemapVariationIndices rewrites pending device fields to their final
// variation indices.
func (a Anchor) RemapVariationIndices(remap VariationIndexRemapping) (Anchor, error) {
	var err error
	if a.XDevice != nil {
		if a.XDevice, err = RemapVariationIndex(a.XDevice, remap); err != nil {
			return a, err
		}
	}
	if a.YDevice != nil {
		if a.YDevice, err = RemapVariationIndex(a.YDevice, remap); err != nil {
			return a, err
		}
	}
	return a, nil
}

// AnchorBuilder authors an anchor from x/y metrics and an optional
// contour point.
type AnchorBuilder struct {
	x            Metric
	y            Metric
	contourPoint uint16
	hasPoint     bool
}

// NewAnchorBuilder creates an anchor builder for the given position.
func NewAnchorBuilder(x, y Metric) *AnchorBuilder {
	return &AnchorBuilder{x: x, y: y}
}

// SetContourPoint attaches a contour point index, selecting anchor
// format 2. It is ignored when either metric carries a device table or
// deltas, since format 3 has no room for a point.
func (b *AnchorBuilder) SetContourPoint(point uint16) *AnchorBuilder {
	b.contourPoint = point
	b.hasPoint = true
	return b
}

// Build compiles the anchor: format 3 when either metric carries an
// annotation, format 2 when a contour point is set, format 1 otherwise.
func (b *AnchorBuilder) Build(varStore *VariationStoreBuilder) Anchor {
	anchor := Anchor{X: b.x.Default, Y: b.y.Default}
	if b.x.HasDeviceOrDeltas() || b.y.HasDeviceOrDeltas() {
		anchor.Format = AnchorFormat3
		anchor.XDevice, _ = b.x.DeviceOrDeltas.Build(varStore)
		anchor.YDevice, _ = b.y.DeviceOrDeltas.Build(varStore)
		return anchor
	}
	if b.hasPoint {
		anchor.Format = AnchorFormat2
		anchor.AnchorPoint = b.contourPoint
		return anchor
	}
	anchor.Format = AnchorFormat1
	return anchor
}

// --- GDEF caret values -----------------------------------------------------------

// CaretValue is a finished entry of the GDEF ligature caret list.
// Format 1 carries a coordinate, format 2 a contour point index, format 3
// a coordinate plus a device or variation-index annotation.
type CaretValue struct {
	Format     uint16
	Coordinate int16
	PointIndex uint16
	Device     DeviceOrVariationIndex // format 3 only
}

// RemapVariationIndices rewrites a pending device field to its final
// variation index.
func (cv CaretValue) RemapVariationIndices(remap VariationIndexRemapping) (CaretValue, error) {
	if cv.Device == nil {
		return cv, nil
	}
	dev, err := RemapVariationIndex(cv.Device, remap)
	if err != nil {
		return cv, err
	}
	cv.Device = dev
	return cv, nil
}

// CaretValueBuilder authors one ligature caret value: either an X/Y
// coordinate with optional deltas, or (rarely) a contour point index.
type CaretValueBuilder struct {
	isPoint    bool
	point      uint16
	coordinate int16
	deltas     DeviceOrDeltas
}

// CaretCoordinate creates a caret value at a design-unit coordinate with
// an optional device or delta annotation.
func CaretCoordinate(coordinate int16, deltas DeviceOrDeltas) CaretValueBuilder {
	return CaretValueBuilder{coordinate: coordinate, deltas: deltas}
}

// CaretPointIndex creates a caret value referencing a contour point.
func CaretPointIndex(point uint16) CaretValueBuilder {
	return CaretValueBuilder{isPoint: true, point: point}
}

// Build compiles the caret value: format 2 for a contour point, format 3
// for an annotated coordinate, format 1 for a plain one.
func (b CaretValueBuilder) Build(varStore *VariationStoreBuilder) CaretValue {
	if b.isPoint {
		return CaretValue{Format: 2, PointIndex: b.point}
	}
	if dev, ok := b.deltas.Build(varStore); ok {
		return CaretValue{Format: 3, Coordinate: b.coordinate, Device: dev}
	}
	return CaretValue{Format: 1, Coordinate: b.coordinate}
}
