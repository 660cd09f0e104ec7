package validate

import (
	"math"
	"regexp"
	"strings"

	"github.com/kitbuilder587/docsmith/internal/domain"
)

// Веса критериев итоговой оценки. Сумма равна единице.
var criteriaWeights = map[string]float64{
	"grammar":     0.20,
	"terminology": 0.25,
	"structure":   0.20,
	"clarity":     0.15,
	"compliance":  0.20,
}

// Грамматика не проверяется автоматикой, берется базовый балл.
const grammarBase = 0.90

var (
	headingPattern  = regexp.MustCompile(`(?m)^\d+\.|^#+\s|\[.+\]`)
	sentenceSplitRe = regexp.MustCompile(`[.!?]`)
)

// QualityScore - взвешенная итоговая оценка документа по пяти критериям
func QualityScore(text string, terms domain.TermReport, compliance domain.ComplianceReport) float64 {
	scores := map[string]float64{
		"grammar":     grammarBase,
		"terminology": terms.Score,
		"structure":   structureScore(text),
		"clarity":     clarityScore(text),
		"compliance":  compliance.Score,
	}

	total := 0.0
	for criterion, weight := range criteriaWeights {
		total += scores[criterion] * weight
	}

	return math.Round(total*100) / 100
}

func structureScore(text string) float64 {
	score := 0.80

	paragraphs := 0
	for _, p := range strings.Split(text, "\n\n") {
		if strings.TrimSpace(p) != "" {
			paragraphs++
		}
	}
	if paragraphs < 2 {
		score -= 0.20
	} else if paragraphs > 10 {
		score -= 0.10
	}

	if headingPattern.MatchString(text) {
		score += 0.10
	}

	return clampUnit(score)
}

func clarityScore(text string) float64 {
	score := 0.85

	sentences := 0
	words := 0
	for _, s := range sentenceSplitRe.Split(text, -1) {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		sentences++
		words += len(strings.Fields(s))
	}
	if sentences == 0 {
		return clampUnit(score - 0.10)
	}

	avg := float64(words) / float64(sentences)
	if avg > 30 {
		score -= 0.20
	} else if avg < 5 {
		score -= 0.10
	}

	return clampUnit(score)
}

func clampUnit(s float64) float64 {
	return math.Min(math.Max(s, 0), 1)
}
