package similarity

import (
	"testing"

	"github.com/devskills/skillkit/internal/model"
)

func TestDefaultDetectorConfig(t *testing.T) {
	config := DefaultDetectorConfig()

	if config.NameThreshold != 0.7 {
		t.Errorf("expected NameThreshold 0.7, got %f", config.NameThreshold)
	}
	if config.ContentThreshold != 0.6 {
		t.Errorf("expected ContentThreshold 0.6, got %f", config.ContentThreshold)
	}
	if config.Algorithm != "combined" {
		t.Errorf("expected Algorithm 'combined', got %q", config.Algorithm)
	}
}

func TestNewDetector(t *testing.T) {
	tests := []struct {
		name                 string
		config               DetectorConfig
		wantNameThreshold    float64
		wantContentThreshold float64
		wantNameAlg          string
		wantContentAlg       string
	}{
		{
			name:                 "default values for zero config",
			config:               DetectorConfig{},
			wantNameThreshold:    0.7,
			wantContentThreshold: 0.6,
			wantNameAlg:          "combined",
			wantContentAlg:       "combined",
		},
		{
			name:                 "invalid thresholds corrected",
			config:               DetectorConfig{NameThreshold: 1.5, ContentThreshold: -0.2},
			wantNameThreshold:    0.7,
			wantContentThreshold: 0.6,
			wantNameAlg:          "combined",
			wantContentAlg:       "combined",
		},
		{
			name:                 "levenshtein is name-only",
			config:               DetectorConfig{Algorithm: "levenshtein"},
			wantNameThreshold:    0.7,
			wantContentThreshold: 0.6,
			wantNameAlg:          "levenshtein",
			wantContentAlg:       "combined",
		},
		{
			name:                 "jaro-winkler is name-only",
			config:               DetectorConfig{Algorithm: "jaro-winkler"},
			wantNameThreshold:    0.7,
			wantContentThreshold: 0.6,
			wantNameAlg:          "jaro-winkler",
			wantContentAlg:       "combined",
		},
		{
			name:                 "lcs is content-only",
			config:               DetectorConfig{Algorithm: "lcs"},
			wantNameThreshold:    0.7,
			wantContentThreshold: 0.6,
			wantNameAlg:          "combined",
			wantContentAlg:       "lcs",
		},
		{
			name:                 "jaccard is content-only",
			config:               DetectorConfig{Algorithm: "jaccard"},
			wantNameThreshold:    0.7,
			wantContentThreshold: 0.6,
			wantNameAlg:          "combined",
			wantContentAlg:       "jaccard",
		},
		{
			name:                 "custom thresholds preserved",
			config:               DetectorConfig{NameThreshold: 0.9, ContentThreshold: 0.8},
			wantNameThreshold:    0.9,
			wantContentThreshold: 0.8,
			wantNameAlg:          "combined",
			wantContentAlg:       "combined",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDetector(tt.config)
			if d.names.config.Threshold != tt.wantNameThreshold {
				t.Errorf("name threshold = %f, want %f", d.names.config.Threshold, tt.wantNameThreshold)
			}
			if d.content.config.Threshold != tt.wantContentThreshold {
				t.Errorf("content threshold = %f, want %f", d.content.config.Threshold, tt.wantContentThreshold)
			}
			if d.names.config.Algorithm != tt.wantNameAlg {
				t.Errorf("name algorithm = %q, want %q", d.names.config.Algorithm, tt.wantNameAlg)
			}
			if d.content.config.Algorithm != tt.wantContentAlg {
				t.Errorf("content algorithm = %q, want %q", d.content.config.Algorithm, tt.wantContentAlg)
			}
			if !d.names.config.Normalize {
				t.Error("expected name matcher to normalize")
			}
			if !d.content.config.LineMode {
				t.Error("expected content matcher to use line mode")
			}
		})
	}
}

func TestDuplicate_BestScore(t *testing.T) {
	tests := []struct {
		name string
		dupe Duplicate
		want float64
	}{
		{"name stronger", Duplicate{NameScore: 0.9, ContentScore: 0.5}, 0.9},
		{"content stronger", Duplicate{NameScore: 0.3, ContentScore: 0.8}, 0.8},
		{"equal scores", Duplicate{NameScore: 0.6, ContentScore: 0.6}, 0.6},
		{"zero scores", Duplicate{}, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.dupe.BestScore(); got != tt.want {
				t.Errorf("BestScore() = %f, want %f", got, tt.want)
			}
		})
	}
}

func detectorFixture() []model.Skill {
	return []model.Skill{
		{
			Name:    "jest-vitest",
			Source:  model.SourceUser,
			Content: "Mock modules with vi.mock.\nUse fake timers for debounce tests.\nPrefer toStrictEqual for objects.",
		},
		{
			Name:    "jest_vitest",
			Source:  model.SourceProject,
			Content: "Run vitest in watch mode.\nCollect coverage with --coverage.\nSnapshot sparingly.",
		},
		{
			Name:    "aws-cli",
			Source:  model.SourceBuiltin,
			Content: "aws s3 sync ./dist s3://bucket\naws ec2 describe-instances\naws logs tail /aws/lambda/fn --follow",
		},
		{
			Name:    "cloud-cli",
			Source:  model.SourceUser,
			Content: "aws s3 sync ./dist s3://bucket\naws ec2 describe-instances\naws sts get-caller-identity",
		},
		{
			Name:    "vim",
			Source:  model.SourceBuiltin,
			Content: "Delete inside quotes with di\"\nJump to matching brace with %\nRepeat the last change with .",
		},
	}
}

func TestDetector_FindDuplicates(t *testing.T) {
	detector := NewDetector(DefaultDetectorConfig())
	dupes := detector.FindDuplicates(detectorFixture())

	// Expected pairs:
	// - jest-vitest & jest_vitest: names normalize to the same string
	// - aws-cli & cloud-cli: two of three content lines match
	if len(dupes) != 2 {
		t.Fatalf("FindDuplicates() returned %d pairs, want 2", len(dupes))
	}

	first := dupes[0]
	if first.Skill1.Name != "jest-vitest" || first.Skill2.Name != "jest_vitest" {
		t.Errorf("strongest pair = %s <-> %s, want jest-vitest <-> jest_vitest",
			first.Skill1.Name, first.Skill2.Name)
	}
	if first.NameScore != 1.0 {
		t.Errorf("normalized identical names scored %f, want 1.0", first.NameScore)
	}

	second := dupes[1]
	if second.Skill1.Name != "aws-cli" || second.Skill2.Name != "cloud-cli" {
		t.Errorf("second pair = %s <-> %s, want aws-cli <-> cloud-cli",
			second.Skill1.Name, second.Skill2.Name)
	}
	if second.NameScore >= detector.config.NameThreshold {
		t.Errorf("aws-cli/cloud-cli name score %f crossed the name threshold, expected content-only match",
			second.NameScore)
	}
	if second.ContentScore < detector.config.ContentThreshold {
		t.Errorf("aws-cli/cloud-cli content score %f below threshold %f",
			second.ContentScore, detector.config.ContentThreshold)
	}

	for _, d := range dupes {
		if d.Skill1.Name == "vim" || d.Skill2.Name == "vim" {
			t.Errorf("unrelated skill flagged: %s <-> %s", d.Skill1.Name, d.Skill2.Name)
		}
	}
}

func TestDetector_FindDuplicates_Ordering(t *testing.T) {
	detector := NewDetector(DefaultDetectorConfig())
	dupes := detector.FindDuplicates(detectorFixture())

	for i := 1; i < len(dupes); i++ {
		if dupes[i].BestScore() > dupes[i-1].BestScore() {
			t.Errorf("pair %d (%.2f) ranked above pair %d (%.2f)",
				i, dupes[i].BestScore(), i-1, dupes[i-1].BestScore())
		}
	}
}

func TestDetector_FindDuplicates_HighThresholds(t *testing.T) {
	detector := NewDetector(DetectorConfig{
		NameThreshold:    0.95,
		ContentThreshold: 0.95,
	})
	dupes := detector.FindDuplicates(detectorFixture())

	// Only the normalized-identical names survive both thresholds at 0.95.
	if len(dupes) != 1 {
		t.Fatalf("FindDuplicates() returned %d pairs, want 1", len(dupes))
	}
	if dupes[0].Skill1.Name != "jest-vitest" {
		t.Errorf("surviving pair starts with %s, want jest-vitest", dupes[0].Skill1.Name)
	}
}

func TestDetector_FindDuplicates_Empty(t *testing.T) {
	detector := NewDetector(DefaultDetectorConfig())

	if dupes := detector.FindDuplicates(nil); len(dupes) != 0 {
		t.Errorf("FindDuplicates(nil) returned %d pairs, want 0", len(dupes))
	}
	if dupes := detector.FindDuplicates([]model.Skill{{Name: "only", Content: "content"}}); len(dupes) != 0 {
		t.Errorf("FindDuplicates() with single skill returned %d pairs, want 0", len(dupes))
	}
}
