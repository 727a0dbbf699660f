package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ActivitySet maps activity names to activities and remembers the order in
// which names were added. The JSON form is an object keyed by name whose key
// order is preserved in both directions.
type ActivitySet struct {
	names []string
	items map[string]Activity
}

// NewActivitySet builds a set from records in the given order.
func NewActivitySet(records ...ActivityRecord) *ActivitySet {
	s := &ActivitySet{items: make(map[string]Activity, len(records))}
	for _, r := range records {
		s.Add(r.Name, r.Activity)
	}
	return s
}

// Add inserts or replaces an activity. A replaced name keeps its original
// position.
func (s *ActivitySet) Add(name string, a Activity) {
	if s.items == nil {
		s.items = make(map[string]Activity)
	}
	if a.Participants == nil {
		a.Participants = []string{}
	}
	if _, exists := s.items[name]; !exists {
		s.names = append(s.names, name)
	}
	s.items[name] = a
}

// Len returns the number of activities.
func (s *ActivitySet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.names)
}

// Names returns the activity names in set order.
func (s *ActivitySet) Names() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Get returns the activity stored under name.
func (s *ActivitySet) Get(name string) (Activity, bool) {
	if s == nil {
		return Activity{}, false
	}
	a, ok := s.items[name]
	return a, ok
}

// Records returns the activities with their names, in set order.
func (s *ActivitySet) Records() []ActivityRecord {
	if s == nil {
		return nil
	}
	out := make([]ActivityRecord, 0, len(s.names))
	for _, n := range s.names {
		out = append(out, ActivityRecord{Name: n, Activity: s.items[n]})
	}
	return out
}

// MarshalJSON writes the set as a JSON object in set order.
func (s *ActivitySet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, n := range s.Names() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(n)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(s.items[n])
		if err != nil {
			return nil, fmt.Errorf("encode activity %q: %w", n, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object keyed by activity name, keeping the key
// order of the document.
func (s *ActivitySet) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("activity set: expected JSON object, got %v", tok)
	}

	fresh := ActivitySet{items: make(map[string]Activity)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("activity set: expected name, got %v", tok)
		}
		var a Activity
		if err := dec.Decode(&a); err != nil {
			return fmt.Errorf("activity set: decode %q: %w", name, err)
		}
		fresh.Add(name, a)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*s = fresh
	return nil
}
