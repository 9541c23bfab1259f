// Package search turns raw filter selections into validated search criteria.
package search

import (
	"fmt"
	"slices"
	"strings"
)

// Reason identifies which precondition a filter failed.
type Reason string

const (
	ReasonMissingFields       Reason = "missing_fields"
	ReasonUnsupportedInterest Reason = "unsupported_interest"
	ReasonUnsupportedGrade    Reason = "unsupported_grade"
)

// ValidationError is returned when filters cannot form a request. Nothing is
// sent to the backend when it occurs.
type ValidationError struct {
	Reason Reason
	Value  string
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return "search: " + string(e.Reason)
	}
	return fmt.Sprintf("search: %s: %q", e.Reason, e.Value)
}

// Message is the user-facing text for the error.
func (e *ValidationError) Message() string {
	switch e.Reason {
	case ReasonMissingFields:
		return "Interest and grade are required."
	case ReasonUnsupportedInterest:
		return "Invalid interest."
	case ReasonUnsupportedGrade:
		return "Invalid grade."
	default:
		return "Invalid interest or grade."
	}
}

// Build validates UI selections: one entry per selected interest plus a grade.
func Build(rawInterests []string, rawGrade string) (Criteria, error) {
	var picked []string
	for _, raw := range rawInterests {
		if strings.TrimSpace(raw) != "" {
			picked = append(picked, raw)
		}
	}
	if len(picked) == 0 || strings.TrimSpace(rawGrade) == "" {
		return Criteria{}, &ValidationError{Reason: ReasonMissingFields}
	}

	interests := make([]string, 0, len(picked))
	for _, raw := range picked {
		tag, ok := CanonicalInterest(raw)
		if !ok {
			return Criteria{}, &ValidationError{Reason: ReasonUnsupportedInterest, Value: raw}
		}
		interests = append(interests, tag)
	}
	grade, ok := CanonicalGrade(rawGrade)
	if !ok {
		return Criteria{}, &ValidationError{Reason: ReasonUnsupportedGrade, Value: rawGrade}
	}
	return newCriteria(interests, grade), nil
}

// ParseQuery validates the wire form where interests arrive space-joined.
// Tags themselves contain spaces, so the text is segmented by longest
// vocabulary match.
func ParseQuery(interest, grade string) (Criteria, error) {
	if strings.TrimSpace(interest) == "" || strings.TrimSpace(grade) == "" {
		return Criteria{}, &ValidationError{Reason: ReasonMissingFields}
	}
	tags, unknown := interestIndex.Segment(interest)
	if len(unknown) > 0 {
		return Criteria{}, &ValidationError{Reason: ReasonUnsupportedInterest, Value: strings.Join(unknown, " ")}
	}
	if len(tags) == 0 {
		return Criteria{}, &ValidationError{Reason: ReasonMissingFields}
	}
	g, ok := CanonicalGrade(grade)
	if !ok {
		return Criteria{}, &ValidationError{Reason: ReasonUnsupportedGrade, Value: grade}
	}
	return newCriteria(tags, g), nil
}

func newCriteria(interests []string, grade string) Criteria {
	slices.Sort(interests)
	return Criteria{interests: slices.Compact(interests), grade: grade}
}
