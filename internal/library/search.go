package library

import (
	"fmt"
	"sort"
	"strings"

	"github.com/devskills/skillkit/internal/logging"
	"github.com/devskills/skillkit/internal/model"
	"github.com/devskills/skillkit/internal/similarity"
)

// Match is a search hit with its score and the signals that produced it.
type Match struct {
	Skill   model.Skill `json:"skill"`
	Score   float64     `json:"score"`
	Reasons []string    `json:"reasons"`
}

// SearchOptions configures search behavior.
type SearchOptions struct {
	// Threshold is the minimum score (0.0-1.0) for a match.
	// Default: 0.35
	Threshold float64
	// Limit caps the number of matches returned. 0 means no cap.
	Limit int
}

// DefaultSearchOptions returns sensible defaults for interactive search.
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{
		Threshold: 0.35,
	}
}

// Search ranks skills against a free-form query. Exact name matches
// rank first, then name prefixes, keyword hits, name substrings, and
// description mentions. Fuzzy name similarity and description term
// overlap catch typos and multi-word queries.
func (l *Library) Search(query string, opts SearchOptions) []Match {
	if opts.Threshold <= 0 || opts.Threshold > 1 {
		opts.Threshold = 0.35
	}

	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}
	tokens := strings.Fields(query)

	logging.Debug("searching library",
		logging.Operation("search"),
		logging.Count(l.Len()),
	)

	var matches []Match
	for _, skill := range l.skills {
		score, reasons := scoreSkill(skill, query, tokens)
		if score >= opts.Threshold {
			matches = append(matches, Match{Skill: skill, Score: score, Reasons: reasons})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Skill.Name < matches[j].Skill.Name
	})

	if opts.Limit > 0 && len(matches) > opts.Limit {
		matches = matches[:opts.Limit]
	}

	return matches
}

// scoreSkill evaluates every signal and keeps the strongest score.
// Reasons record each signal that fired, strongest first.
func scoreSkill(skill model.Skill, query string, tokens []string) (float64, []string) {
	name := strings.ToLower(skill.Name)
	desc := strings.ToLower(skill.Description)

	var score float64
	var reasons []string
	record := func(s float64, reason string) {
		if s > score {
			score = s
		}
		reasons = append(reasons, reason)
	}

	switch {
	case name == query:
		record(1.0, "exact name")
	case strings.HasPrefix(name, query):
		record(0.9, "name prefix")
	case strings.Contains(name, query):
		record(0.7, "name contains")
	}

	for _, kw := range skill.Keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		matched := kw == query
		if !matched {
			for _, tok := range tokens {
				if kw == tok {
					matched = true
					break
				}
			}
		}
		if matched {
			record(0.8, fmt.Sprintf("keyword %q", kw))
		}
	}

	if desc != "" && strings.Contains(desc, query) {
		record(0.6, "description")
	}

	// Typos: fuzzy name match as a fallback signal
	if jw := similarity.JaroWinkler(name, query); jw >= 0.8 {
		record(jw*0.7, fmt.Sprintf("name similar (%.0f%%)", jw*100))
	}

	// Multi-word queries: count how many terms the description covers
	if hits := descriptionTermHits(desc, tokens); hits > 0 {
		frac := float64(hits) / float64(len(tokens))
		record(0.3+0.3*frac, fmt.Sprintf("description terms %d/%d", hits, len(tokens)))
	}

	return score, reasons
}

// descriptionTermHits counts query tokens present as words in the
// description.
func descriptionTermHits(desc string, tokens []string) int {
	if desc == "" {
		return 0
	}

	words := make(map[string]struct{})
	for _, w := range strings.Fields(desc) {
		w = strings.Trim(w, ".,;:()[]\"'")
		if w != "" {
			words[w] = struct{}{}
		}
	}

	hits := 0
	for _, tok := range tokens {
		if _, ok := words[tok]; ok {
			hits++
		}
	}
	return hits
}
