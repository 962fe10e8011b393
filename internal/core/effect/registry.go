package effect

import (
	"encoding/json"
	"sort"
)

// Handle identifies an installed record for the lifetime of a registry.
type Handle uint64

// Source types recorded on installed effects.
const (
	SourceDefault         = "default"
	SourceStage           = "stage"
	SourcePItem           = "pItem"
	SourceSkillCardEffect = "skillCardEffect"
)

// Source records where an installed effect came from. A zero Source means
// the effect has no loggable origin.
type Source struct {
	Type string `json:"type,omitempty"`
	ID   string `json:"id,omitempty"`
}

// IsZero reports whether the source is unset.
func (s Source) IsZero() bool {
	return s.Type == ""
}

// Record is an installed effect.
type Record struct {
	Handle Handle `json:"handle"`
	Effect Effect `json:"effect"`
	Source Source `json:"source"`
}

// Active reports whether the record may still fire: its limit, if any, is
// at least one and its ttl, if any, has not expired.
func (r Record) Active() bool {
	if r.Effect.HasLimit && r.Effect.Limit < 1 {
		return false
	}
	if r.Effect.HasTTL && r.Effect.TTL < 0 {
		return false
	}
	return true
}

// Registry stores installed effects. Records are never removed; exhausted
// and expired records are skipped by ForPhase.
//
// A Registry is owned by a single simulation and is not safe for concurrent
// use.
type Registry struct {
	records []Record
	index   map[Handle]int
	next    Handle
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[Handle]int)}
}

// Install compiles effects and appends them, returning one handle per
// installed record.
func (r *Registry) Install(source Source, effects []Effect) []Handle {
	compiled := Compile(effects)
	handles := make([]Handle, 0, len(compiled))
	for _, e := range compiled {
		r.next++
		h := r.next
		r.index[h] = len(r.records)
		r.records = append(r.records, Record{Handle: h, Effect: e, Source: source})
		handles = append(handles, h)
	}
	return handles
}

// ForPhase returns a snapshot of the active records for phase, sorted by
// ascending order key with installation order breaking ties.
func (r *Registry) ForPhase(phase string) []Record {
	var matched []Record
	for _, rec := range r.records {
		if rec.Effect.Phase != phase || !rec.Active() {
			continue
		}
		matched = append(matched, rec)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Effect.Order < matched[j].Effect.Order
	})
	return matched
}

// DecrementLimits lowers the limit of every fired record that has a non-zero
// limit.
func (r *Registry) DecrementLimits(fired []Handle) {
	for _, h := range fired {
		i, ok := r.index[h]
		if !ok {
			continue
		}
		e := &r.records[i].Effect
		if e.HasLimit && e.Limit != 0 {
			e.Limit--
		}
	}
}

// TickTTL counts down every record with a ttl, stopping at -1.
func (r *Registry) TickTTL() {
	for i := range r.records {
		e := &r.records[i].Effect
		if e.HasTTL && e.TTL > -1 {
			e.TTL--
		}
	}
}

// Get returns the record for h.
func (r *Registry) Get(h Handle) (Record, bool) {
	i, ok := r.index[h]
	if !ok {
		return Record{}, false
	}
	return r.records[i], true
}

// Len returns the number of stored records, active or not.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.records)
}

// Records returns a copy of every stored record in installation order.
func (r *Registry) Records() []Record {
	if r == nil {
		return nil
	}
	return append([]Record(nil), r.records...)
}

// Clone returns an independent copy of the registry. Handles are preserved.
func (r *Registry) Clone() *Registry {
	if r == nil {
		return NewRegistry()
	}
	c := &Registry{
		index: make(map[Handle]int, len(r.index)),
		next:  r.next,
	}
	for _, rec := range r.records {
		rec.Effect = rec.Effect.Clone()
		c.records = append(c.records, rec)
	}
	for h, i := range r.index {
		c.index[h] = i
	}
	return c
}

// MarshalJSON encodes the registry as its list of records.
func (r *Registry) MarshalJSON() ([]byte, error) {
	records := r.Records()
	if records == nil {
		records = []Record{}
	}
	return json.Marshal(records)
}
