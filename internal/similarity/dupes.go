package similarity

import (
	"log/slog"
	"sort"

	"github.com/devskills/skillkit/internal/logging"
	"github.com/devskills/skillkit/internal/model"
)

// Duplicate is a pair of skills flagged as near-duplicates, with the
// scores that flagged them.
type Duplicate struct {
	Skill1       model.Skill `json:"skill1"`
	Skill2       model.Skill `json:"skill2"`
	NameScore    float64     `json:"name_score"`
	ContentScore float64     `json:"content_score"`
}

// BestScore returns the stronger of the two signals, used for ranking.
func (d Duplicate) BestScore() float64 {
	return max(d.NameScore, d.ContentScore)
}

// DetectorConfig configures duplicate detection across a library.
type DetectorConfig struct {
	// NameThreshold flags pairs whose name similarity reaches it.
	// Default: 0.7
	NameThreshold float64
	// ContentThreshold flags pairs whose content similarity reaches it.
	// Default: 0.6
	ContentThreshold float64
	// Algorithm selects the scoring algorithm for both matchers:
	// "levenshtein", "jaro-winkler", "lcs", "jaccard" or "combined".
	// Default: "combined"
	Algorithm string
}

// DefaultDetectorConfig returns sensible defaults for duplicate detection.
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		NameThreshold:    0.7,
		ContentThreshold: 0.6,
		Algorithm:        "combined",
	}
}

// Detector finds near-duplicate skills by combining name and content
// similarity.
type Detector struct {
	config  DetectorConfig
	names   *NameMatcher
	content *ContentMatcher
}

// NewDetector creates a duplicate detector with the given configuration.
func NewDetector(config DetectorConfig) *Detector {
	if config.NameThreshold <= 0 || config.NameThreshold > 1 {
		config.NameThreshold = 0.7
	}
	if config.ContentThreshold <= 0 || config.ContentThreshold > 1 {
		config.ContentThreshold = 0.6
	}
	if config.Algorithm == "" {
		config.Algorithm = "combined"
	}

	nameAlg := config.Algorithm
	contentAlg := config.Algorithm
	switch config.Algorithm {
	case "lcs", "jaccard":
		// Content-only algorithms; names fall back to combined
		nameAlg = "combined"
	case "levenshtein", "jaro-winkler":
		// Name-only algorithms; content falls back to combined
		contentAlg = "combined"
	}

	return &Detector{
		config: config,
		names: NewNameMatcher(NameMatcherConfig{
			Threshold: config.NameThreshold,
			Algorithm: nameAlg,
			Normalize: true,
		}),
		content: NewContentMatcher(ContentMatcherConfig{
			Threshold: config.ContentThreshold,
			Algorithm: contentAlg,
			NGramSize: 3,
			LineMode:  true,
		}),
	}
}

// FindDuplicates compares every pair of skills and returns those that
// cross either threshold, strongest signal first.
func (d *Detector) FindDuplicates(skills []model.Skill) []Duplicate {
	logging.Debug("finding duplicate skills",
		logging.Operation("dupes"),
		logging.Count(len(skills)),
		slog.Float64("name_threshold", d.config.NameThreshold),
		slog.Float64("content_threshold", d.config.ContentThreshold),
	)

	var dupes []Duplicate

	for i := range len(skills) {
		for j := i + 1; j < len(skills); j++ {
			nameScore := d.names.Compare(skills[i].Name, skills[j].Name)
			contentScore := d.content.Compare(skills[i].Content, skills[j].Content)

			if nameScore < d.config.NameThreshold && contentScore < d.config.ContentThreshold {
				continue
			}

			dupes = append(dupes, Duplicate{
				Skill1:       skills[i],
				Skill2:       skills[j],
				NameScore:    nameScore,
				ContentScore: contentScore,
			})
			logging.Debug("found duplicate pair",
				slog.String("name1", skills[i].Name),
				slog.String("name2", skills[j].Name),
				slog.Float64("name_score", nameScore),
				slog.Float64("content_score", contentScore),
			)
		}
	}

	sort.SliceStable(dupes, func(i, j int) bool {
		return dupes[i].BestScore() > dupes[j].BestScore()
	})

	logging.Debug("duplicate search complete",
		logging.Operation("dupes"),
		slog.Int("pairs_found", len(dupes)),
	)

	return dupes
}
