// Package filter narrows the store collection by categorical attributes.
package filter

import "github.com/storeradar/radar/internal/dataset"

// Selection holds the three independent attribute sets. An empty set places
// no constraint on its attribute.
type Selection struct {
	LocationTypes  []string `json:"locationTypes"`
	MasterSegments []string `json:"masterSegments"`
	Environments   []string `json:"environments"`
}

// IsEmpty reports whether no attribute is constrained.
func (s Selection) IsEmpty() bool {
	return len(s.LocationTypes) == 0 && len(s.MasterSegments) == 0 && len(s.Environments) == 0
}

// Normalize returns a copy with duplicate values removed, keeping first
// occurrence order. Empty strings are dropped.
func (s Selection) Normalize() Selection {
	return Selection{
		LocationTypes:  dedupe(s.LocationTypes),
		MasterSegments: dedupe(s.MasterSegments),
		Environments:   dedupe(s.Environments),
	}
}

// Matches reports whether p satisfies every non-empty set.
func (s Selection) Matches(p dataset.Point) bool {
	return member(s.LocationTypes, p.LocationType) &&
		member(s.MasterSegments, p.MasterSegment) &&
		member(s.Environments, p.Environment)
}

// Apply returns the points matching sel in their original order.
// The input slice is never modified; the result is a new slice.
func Apply(points []dataset.Point, sel Selection) []dataset.Point {
	out := make([]dataset.Point, 0, len(points))
	for _, p := range points {
		if sel.Matches(p) {
			out = append(out, p)
		}
	}
	return out
}

func member(set []string, v string) bool {
	if len(set) == 0 {
		return true
	}
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func dedupe(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
