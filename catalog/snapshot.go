package catalog

import "encoding/json"

// Snapshot is the full set of metadata aspects describing one topic at a
// point in time. Never mutated after emission.
type Snapshot struct {
	URN     string
	Aspects []Aspect
}

// MarshalJSON serializes the snapshot with each aspect wrapped in a
// single-key envelope keyed by its aspect name, preserving aspect order.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	aspects := make([]map[string]Aspect, 0, len(s.Aspects))
	for _, a := range s.Aspects {
		aspects = append(aspects, map[string]Aspect{a.AspectName(): a})
	}
	return json.Marshal(struct {
		URN     string              `json:"urn"`
		Aspects []map[string]Aspect `json:"aspects"`
	}{
		URN:     s.URN,
		Aspects: aspects,
	})
}

// Aspect returns the first aspect with the given name, or nil.
func (s Snapshot) Aspect(name string) Aspect {
	for _, a := range s.Aspects {
		if a.AspectName() == name {
			return a
		}
	}
	return nil
}

// Workunit is one item of the emitted sequence: either a topic snapshot or
// its companion subtype record.
type Workunit struct {
	ID       string   `json:"id"`
	Snapshot Snapshot `json:"snapshot"`
}
