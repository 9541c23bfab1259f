package opportunity

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/stuimpact/stuimpactweb2/pkg/search"
)

// catalogRecord accepts both the API field names and the legacy export
// names (_id, url, image, gradeLevels).
type catalogRecord struct {
	ID          string   `json:"id"`
	LegacyID    string   `json:"_id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	ApplyURL    string   `json:"applyUrl"`
	URL         string   `json:"url"`
	ImageURL    string   `json:"imageUrl"`
	Image       string   `json:"image"`
	Type        string   `json:"type"`
	Prestige    string   `json:"prestige"`
	Tags        []string `json:"tags"`
	GradeLevels []string `json:"gradeLevels"`
}

// DecodeCatalog reads a JSON array of catalog entries. Grade levels are
// folded into the tags so a record is searchable by grade.
func DecodeCatalog(r io.Reader) ([]Opportunity, error) {
	var records []catalogRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	out := make([]Opportunity, 0, len(records))
	for i, rec := range records {
		o := Opportunity{
			ID:          firstNonEmpty(rec.ID, rec.LegacyID),
			Title:       rec.Title,
			Description: rec.Description,
			ApplyURL:    firstNonEmpty(rec.ApplyURL, rec.URL),
			ImageURL:    firstNonEmpty(rec.ImageURL, rec.Image),
			Type:        rec.Type,
			Prestige:    rec.Prestige,
		}
		seen := make(map[string]bool)
		add := func(tag string) {
			if tag != "" && !seen[tag] {
				seen[tag] = true
				o.Tags = append(o.Tags, tag)
			}
		}
		for _, t := range rec.Tags {
			add(strings.ToUpper(strings.TrimSpace(t)))
		}
		for _, g := range rec.GradeLevels {
			grade, ok := search.CanonicalGrade(g)
			if !ok {
				return nil, fmt.Errorf("catalog entry %d: unknown grade level %q", i, g)
			}
			add(grade)
		}
		out = append(out, o)
	}
	return out, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
