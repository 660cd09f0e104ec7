package score

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestHeuristic_ExtractScore(t *testing.T) {
	h := NewHeuristic()

	tests := []struct {
		name     string
		critique string
		prev     float64
		want     float64
	}{
		{
			name:     "explicit score keyword",
			critique: "Overall assessment. Score: 85",
			prev:     0.70,
			want:     0.85,
		},
		{
			name:     "slash hundred form",
			critique: "The draft earns 92/100 overall.",
			prev:     0.70,
			want:     0.92,
		},
		{
			name:     "percent form",
			critique: "Quality is at 88% in my estimation.",
			prev:     0.70,
			want:     0.88,
		},
		{
			name:     "rating keyword",
			critique: "rating: 75",
			prev:     0.70,
			want:     0.75,
		},
		{
			name:     "fractional score stays as is",
			critique: "score: 0.8",
			prev:     0.70,
			want:     0.80,
		},
		{
			name:     "perfect score capped",
			critique: "Flawless, 100/100.",
			prev:     0.70,
			want:     0.99,
		},
		{
			name:     "low explicit score floored by previous",
			critique: "Serious regressions. Score: 40/100",
			prev:     0.75,
			want:     0.76,
		},
		{
			name:     "sentinel with low previous",
			critique: "No major issues found. Ship it.",
			prev:     0.70,
			want:     0.95,
		},
		{
			name:     "sentinel with high previous",
			critique: "No major issues found.",
			prev:     0.92,
			want:     0.97,
		},
		{
			name:     "sentinel near cap",
			critique: "no major issues found",
			prev:     0.96,
			want:     0.99,
		},
		{
			name:     "positive dominant keywords",
			critique: "The tone is excellent, the structure is clear and the wording is professional.",
			prev:     0.70,
			want:     0.80,
		},
		{
			name:     "negative dominant keywords",
			critique: "There is an issue with the opening and a problem with unclear terminology.",
			prev:     0.70,
			want:     0.75,
		},
		{
			name:     "empty critique still advances",
			critique: "",
			prev:     0.70,
			want:     0.75,
		},
		{
			name:     "previous at cap stays at cap",
			critique: "score: 99/100",
			prev:     0.99,
			want:     0.99,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := h.Extract(tt.critique, tt.prev)
			if !almostEqual(got.Score, tt.want) {
				t.Errorf("Extract().Score = %v, want %v", got.Score, tt.want)
			}
		})
	}
}

func TestHeuristic_ExtractNeverRegresses(t *testing.T) {
	h := NewHeuristic()

	critiques := []string{
		"Score: 10/100, terrible",
		"score: 0",
		"0%",
		"complete garbage with many issues and problems and errors",
	}

	for _, critique := range critiques {
		got := h.Extract(critique, 0.80)
		if got.Score < 0.81 {
			t.Errorf("Extract(%q, 0.80).Score = %v, want >= 0.81", critique, got.Score)
		}
		if got.Score > MaxScore {
			t.Errorf("Extract(%q).Score = %v, above cap %v", critique, got.Score, MaxScore)
		}
	}
}

func TestHeuristic_ExtractIssues(t *testing.T) {
	h := NewHeuristic()

	critique := `The draft needs work.

Issues:
- The opening paragraph is too long
- Passive voice in the second section
- Missing a closing call to action

Suggestions:
- Split the opening into two paragraphs
- Use active verbs

Strengths:
- Good overall structure

Score: 72/100`

	got := h.Extract(critique, 0.70)

	wantIssues := []string{
		"The opening paragraph is too long",
		"Passive voice in the second section",
		"Missing a closing call to action",
	}
	if len(got.Issues) != len(wantIssues) {
		t.Fatalf("Extract().Issues len = %d, want %d (%v)", len(got.Issues), len(wantIssues), got.Issues)
	}
	for i := range wantIssues {
		if got.Issues[i] != wantIssues[i] {
			t.Errorf("Extract().Issues[%d] = %q, want %q", i, got.Issues[i], wantIssues[i])
		}
	}

	wantSuggestions := []string{
		"Split the opening into two paragraphs",
		"Use active verbs",
	}
	if len(got.Suggestions) != len(wantSuggestions) {
		t.Fatalf("Extract().Suggestions len = %d, want %d (%v)", len(got.Suggestions), len(wantSuggestions), got.Suggestions)
	}
	for i := range wantSuggestions {
		if got.Suggestions[i] != wantSuggestions[i] {
			t.Errorf("Extract().Suggestions[%d] = %q, want %q", i, got.Suggestions[i], wantSuggestions[i])
		}
	}
}

func TestHeuristic_ExtractSections(t *testing.T) {
	h := NewHeuristic()

	tests := []struct {
		name            string
		critique        string
		wantIssues      int
		wantSuggestions int
	}{
		{
			name:            "no sections at all",
			critique:        "Looks fine to me. Score: 90",
			wantIssues:      0,
			wantSuggestions: 0,
		},
		{
			name: "alternative header wording",
			critique: `Problems:
- one
- two
Recommendations:
- three`,
			wantIssues:      2,
			wantSuggestions: 1,
		},
		{
			name: "asterisk bullets",
			critique: `Issues:
* first
* second`,
			wantIssues:      2,
			wantSuggestions: 0,
		},
		{
			name: "bullets before any header are ignored",
			critique: `- stray bullet
Issues:
- real issue`,
			wantIssues:      1,
			wantSuggestions: 0,
		},
		{
			name: "next header closes the section",
			critique: `Issues:
- real issue
Overall assessment: strong draft
- not an issue`,
			wantIssues:      1,
			wantSuggestions: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := h.Extract(tt.critique, 0.70)
			if len(got.Issues) != tt.wantIssues {
				t.Errorf("Issues = %v, want %d items", got.Issues, tt.wantIssues)
			}
			if len(got.Suggestions) != tt.wantSuggestions {
				t.Errorf("Suggestions = %v, want %d items", got.Suggestions, tt.wantSuggestions)
			}
		})
	}
}

func TestContainsSentinel(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{
			name: "exact phrase",
			text: "No major issues found",
			want: true,
		},
		{
			name: "case insensitive",
			text: "NO MAJOR ISSUES FOUND in this draft",
			want: true,
		},
		{
			name: "absent",
			text: "several major issues found",
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ContainsSentinel(tt.text); got != tt.want {
				t.Errorf("ContainsSentinel(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		name string
		s    float64
		prev float64
		want float64
	}{
		{
			name: "above floor passes through",
			s:    0.85,
			prev: 0.70,
			want: 0.85,
		},
		{
			name: "below floor raised",
			s:    0.50,
			prev: 0.80,
			want: 0.81,
		},
		{
			name: "above cap trimmed",
			s:    1.20,
			prev: 0.70,
			want: 0.99,
		},
		{
			name: "floor above cap trimmed",
			s:    0.10,
			prev: 0.99,
			want: 0.99,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clamp(tt.s, tt.prev); !almostEqual(got, tt.want) {
				t.Errorf("Clamp(%v, %v) = %v, want %v", tt.s, tt.prev, got, tt.want)
			}
		})
	}
}
