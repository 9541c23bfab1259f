package search

import (
	"encoding/json"
	"slices"
	"strings"
)

// Criteria is a validated search filter. Values are immutable: build a new
// one whenever a filter changes.
type Criteria struct {
	interests    []string
	grade        string
	locationHint string
}

// Interests returns a copy of the sorted interest tags.
func (c Criteria) Interests() []string { return slices.Clone(c.interests) }

func (c Criteria) Grade() string        { return c.grade }
func (c Criteria) LocationHint() string { return c.locationHint }

// IsZero reports whether c was never built.
func (c Criteria) IsZero() bool { return len(c.interests) == 0 && c.grade == "" }

// InterestQuery is the space-joined wire form of the interest tags.
func (c Criteria) InterestQuery() string { return strings.Join(c.interests, " ") }

// Tags returns every tag a matching opportunity must carry.
func (c Criteria) Tags() []string {
	out := make([]string, 0, len(c.interests)+1)
	out = append(out, c.interests...)
	return append(out, c.grade)
}

// WithLocation returns a copy of c carrying the given location hint.
func (c Criteria) WithLocation(hint string) Criteria {
	c.interests = slices.Clone(c.interests)
	c.locationHint = strings.TrimSpace(hint)
	return c
}

// Equal compares two criteria by value.
func (c Criteria) Equal(o Criteria) bool {
	return c.grade == o.grade && c.locationHint == o.locationHint && slices.Equal(c.interests, o.interests)
}

// Key is the canonical serialization used for cache identity.
func (c Criteria) Key() string {
	b, _ := json.Marshal(c)
	return string(b)
}

type criteriaJSON struct {
	Interest string `json:"interest"`
	Grade    string `json:"grade"`
	Location string `json:"location,omitempty"`
}

func (c Criteria) MarshalJSON() ([]byte, error) {
	return json.Marshal(criteriaJSON{
		Interest: c.InterestQuery(),
		Grade:    c.grade,
		Location: c.locationHint,
	})
}

// UnmarshalJSON re-validates the payload, so persisted criteria that no longer
// match the vocabulary fail to load.
func (c *Criteria) UnmarshalJSON(data []byte) error {
	var raw criteriaJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseQuery(raw.Interest, raw.Grade)
	if err != nil {
		return err
	}
	*c = parsed.WithLocation(raw.Location)
	return nil
}
