package tgis

// AggregateExtent computes the extent of a dataset from its registered maps.
// Maps without a timestamp of the given temporal type do not contribute to the
// temporal extent but still count as members.
func AggregateExtent(temporalType TemporalType, maps []Map) Extent {
	ext := Extent{NumberOfMaps: len(maps)}

	for i := range maps {
		m := &maps[i]

		if i == 0 {
			ext.Spatial = m.Spatial
		} else {
			ext.Spatial = ext.Spatial.Union(m.Spatial)
		}

		switch temporalType {
		case TemporalAbsolute:
			if m.Absolute != nil {
				ext.Absolute = widenAbsolute(ext.Absolute, m.Absolute)
			}
		case TemporalRelative:
			if m.Relative != nil {
				ext.Relative = widenRelative(ext.Relative, m.Relative)
			}
		}

		md := m.Metadata
		if md.Min != nil {
			ext.MinMin = minPtr(ext.MinMin, *md.Min)
			ext.MinMax = maxPtr(ext.MinMax, *md.Min)
		}
		if md.Max != nil {
			ext.MaxMin = minPtr(ext.MaxMin, *md.Max)
			ext.MaxMax = maxPtr(ext.MaxMax, *md.Max)
		}
		ext.NSResMin = minPtr(ext.NSResMin, md.NSRes)
		ext.NSResMax = maxPtr(ext.NSResMax, md.NSRes)
		ext.EWResMin = minPtr(ext.EWResMin, md.EWRes)
		ext.EWResMax = maxPtr(ext.EWResMax, md.EWRes)
	}

	return ext
}

// ValidateRegistration checks that a map can be registered into a dataset.
func ValidateRegistration(ds *Dataset, m *Map) error {
	switch m.TemporalType() {
	case "":
		return NewErrorf(RetCInvalidOperation, "map <%s> has no timestamp", m.ID)
	case ds.TemporalType:
		return nil
	default:
		return NewErrorf(RetCInvalidOperation, "map <%s> has %s time but dataset <%s> is %s",
			m.ID, m.TemporalType(), ds.ID, ds.TemporalType)
	}
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// widenAbsolute grows the interval cur so it contains t. A missing end counts as
// an instant at the start time.
func widenAbsolute(cur *AbsoluteTime, t *AbsoluteTime) *AbsoluteTime {
	end := t.Start
	if t.End != nil {
		end = *t.End
	}
	if cur == nil {
		return &AbsoluteTime{Start: t.Start, End: &end, Timezone: t.Timezone}
	}
	if t.Start.Before(cur.Start) {
		cur.Start = t.Start
	}
	if cur.End == nil || end.After(*cur.End) {
		cur.End = &end
	}
	return cur
}

func widenRelative(cur *RelativeTime, t *RelativeTime) *RelativeTime {
	end := t.Start
	if t.End != nil {
		end = *t.End
	}
	if cur == nil {
		return &RelativeTime{Start: t.Start, End: &end}
	}
	cur.Start = min(cur.Start, t.Start)
	if cur.End == nil || end > *cur.End {
		cur.End = &end
	}
	return cur
}

func minPtr(cur *float64, v float64) *float64 {
	if cur == nil || v < *cur {
		return &v
	}
	return cur
}

func maxPtr(cur *float64, v float64) *float64 {
	if cur == nil || v > *cur {
		return &v
	}
	return cur
}
