package finder

import (
	"github.com/stuimpact/stuimpactweb2/pkg/opportunity"
	"github.com/stuimpact/stuimpactweb2/pkg/search"
)

// ResultPage is what one fetch produced.
type ResultPage struct {
	Number int
	Items  []opportunity.Opportunity
	IsLast bool
}

// Session is the client-held search state. Transitions return a new value
// and never modify the receiver.
type Session struct {
	criteria    search.Criteria
	order       []string
	items       map[string]opportunity.Opportunity
	currentPage int
	started     bool
	exhausted   bool
	generation  uint64
}

// NewSession starts an empty session for c on page 1.
func NewSession(c search.Criteria) Session {
	return Session{criteria: c, currentPage: 1}
}

func (s Session) Criteria() search.Criteria { return s.criteria }
func (s Session) CurrentPage() int           { return max(s.currentPage, 1) }
func (s Session) Exhausted() bool            { return s.exhausted }
func (s Session) Len() int                   { return len(s.order) }

// Generation changes every time the criteria change; replies are matched
// against it to drop stale responses.
func (s Session) Generation() uint64 { return s.generation }

// NextPage is the page number the next fetch asks for.
func (s Session) NextPage() int {
	if !s.started {
		return 1
	}
	return s.CurrentPage() + 1
}

// Results returns the accumulated opportunities in first-seen order.
func (s Session) Results() []opportunity.Opportunity {
	out := make([]opportunity.Opportunity, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.items[id])
	}
	return out
}

// WithCriteria keeps s when c is unchanged, otherwise returns a reset
// session on a new generation.
func (s Session) WithCriteria(c search.Criteria) Session {
	if s.criteria.Equal(c) {
		return s
	}
	next := NewSession(c)
	next.generation = s.generation + 1
	return next
}

// Merge folds a fetched page into the session. Items whose id is already
// present are skipped so the first-seen version wins.
func (s Session) Merge(p ResultPage) Session {
	next := s.withItems(p.Items)
	next.currentPage = p.Number
	next.started = true
	next.exhausted = p.IsLast
	return next
}

// restored rebuilds a session from persisted results without fetching.
// With a known page size the page position is derived from the item count.
func restored(c search.Criteria, items []opportunity.Opportunity, generation uint64, pageSize int) Session {
	s := NewSession(c)
	s.generation = generation
	s = s.withItems(items)
	if n := s.Len(); n > 0 {
		s.started = true
		if pageSize > 0 {
			s.currentPage = (n + pageSize - 1) / pageSize
		}
	}
	return s
}

func (s Session) withItems(items []opportunity.Opportunity) Session {
	next := s
	next.order = append(make([]string, 0, len(s.order)+len(items)), s.order...)
	next.items = make(map[string]opportunity.Opportunity, len(s.items)+len(items))
	for k, v := range s.items {
		next.items[k] = v
	}
	for _, it := range items {
		if _, seen := next.items[it.ID]; seen {
			continue
		}
		next.items[it.ID] = it
		next.order = append(next.order, it.ID)
	}
	return next
}
