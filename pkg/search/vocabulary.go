package search

import (
	"strings"

	"github.com/stuimpact/stuimpactweb2/pkg/nlp"
)

// Interests is the closed list of subject tags the catalog is labelled with.
var Interests = []string{
	"BIOLOGY",
	"COMPUTER SCIENCE",
	"ENVIRONMENTAL SCIENCE",
	"ENGINEERING",
	"MEDICAL",
	"CHEMISTRY",
	"ARTS PERFORMANCE",
	"MATHEMATICS",
	"ENGLISH LITERATURE WRITING",
	"GENERAL",
	"PUBLIC ADMINISTRATION",
	"DATA SCIENCE",
	"POLITICAL SCIENCE",
	"LAW",
	"PHYSICS",
	"BUSINESS",
	"PSYCHOLOGY",
	"KINESIOLOGY",
	"PHILOSOPHY",
}

// Grade tokens.
const (
	GradeFreshmen   = "FRESHMEN"
	GradeSophomores = "SOPHOMORES"
	GradeJuniors    = "JUNIORS"
	GradeSeniors    = "SENIORS"
)

// Grades lists the canonical class-year tokens in school order.
var Grades = []string{GradeFreshmen, GradeSophomores, GradeJuniors, GradeSeniors}

var numericGrades = map[string]string{
	"9":  GradeFreshmen,
	"10": GradeSophomores,
	"11": GradeJuniors,
	"12": GradeSeniors,
}

var interestIndex = nlp.NewPhraseIndex(Interests)

// CanonicalInterest upper-cases raw and reports whether it is one of Interests.
func CanonicalInterest(raw string) (string, bool) {
	return interestIndex.Lookup(raw)
}

// CanonicalGrade maps "9".."12" and canonical words (any casing) to a grade token.
func CanonicalGrade(raw string) (string, bool) {
	g := strings.ToUpper(strings.TrimSpace(raw))
	if mapped, ok := numericGrades[g]; ok {
		return mapped, true
	}
	for _, known := range Grades {
		if g == known {
			return g, true
		}
	}
	return "", false
}

// IsKnownTag reports whether tag, upper-cased, is an interest or grade token.
// Catalog entries may only carry known tags.
func IsKnownTag(tag string) bool {
	t := strings.ToUpper(strings.TrimSpace(tag))
	for _, i := range Interests {
		if t == i {
			return true
		}
	}
	for _, g := range Grades {
		if t == g {
			return true
		}
	}
	return false
}
