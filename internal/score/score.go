package score

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Sentinel - фраза критика, после которой дорабатывать нечего
const Sentinel = "No major issues found"

const (
	// MaxScore - потолок любой эвристической оценки, 1.0 недостижим намеренно
	MaxScore = 0.99
	// MinStep - минимальный прирост к предыдущей оценке
	MinStep = 0.01
)

type Extraction struct {
	Score       float64
	Issues      []string
	Suggestions []string
}

// Extractor выделяет оценку и замечания из свободного текста критика.
// Неоднозначный текст - не ошибка: всегда возвращается валидная оценка.
type Extractor interface {
	Extract(critique string, previousScore float64) Extraction
}

// Heuristic - штатная реализация: численные паттерны, затем сентинел,
// затем ключевые слова.
type Heuristic struct{}

func NewHeuristic() *Heuristic { return &Heuristic{} }

var scorePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)score:?\s*(\d+(?:\.\d+)?)`),
	regexp.MustCompile(`(\d+(?:\.\d+)?)\s*/\s*100`),
	regexp.MustCompile(`(\d+(?:\.\d+)?)\s*%`),
	regexp.MustCompile(`(?i)rating:?\s*(\d+(?:\.\d+)?)`),
}

var positiveWords = []string{
	"excellent", "good", "clear", "strong", "professional",
	"effective", "accurate", "polished", "well-structured",
}

var negativeWords = []string{
	"issue", "problem", "error", "unclear", "missing",
	"incorrect", "awkward", "inconsistent", "weak",
}

var issueHeaders = []string{"issues", "problems", "concerns"}

var suggestionHeaders = []string{"suggestions", "improvements", "recommendations"}

func (h *Heuristic) Extract(critique string, previousScore float64) Extraction {
	return Extraction{
		Score:       h.score(critique, previousScore),
		Issues:      extractSection(critique, issueHeaders),
		Suggestions: extractSection(critique, suggestionHeaders),
	}
}

func (h *Heuristic) score(critique string, prev float64) float64 {
	s, found := explicitScore(critique)
	if !found {
		if containsSentinel(critique) {
			s = math.Max(0.95, prev+0.05)
		} else {
			s = prev + keywordBonus(critique)
		}
	}
	return Clamp(s, prev)
}

// Clamp применяет монотонный пол и потолок: новая оценка не ниже
// предыдущей плюс MinStep и не выше MaxScore
func Clamp(s, prev float64) float64 {
	if s < prev+MinStep {
		s = prev + MinStep
	}
	if s > MaxScore {
		s = MaxScore
	}
	return s
}

// ContainsSentinel проверяет наличие сентинела без учета регистра
func ContainsSentinel(text string) bool {
	return containsSentinel(text)
}

func containsSentinel(text string) bool {
	return strings.Contains(strings.ToLower(text), strings.ToLower(Sentinel))
}

func explicitScore(critique string) (float64, bool) {
	for _, re := range scorePatterns {
		m := re.FindStringSubmatch(critique)
		if m == nil {
			continue
		}
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		// значения больше единицы трактуем как проценты
		if v > 1 {
			v /= 100
		}
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		return v, true
	}
	return 0, false
}

func keywordBonus(critique string) float64 {
	lower := strings.ToLower(critique)

	var positive, negative int
	for _, w := range positiveWords {
		positive += strings.Count(lower, w)
	}
	for _, w := range negativeWords {
		negative += strings.Count(lower, w)
	}

	if positive > negative {
		return 0.10
	}
	return 0.05
}

// extractSection собирает маркированные строки после заголовка секции.
// Лучшая попытка по тексту, не грамматика: незнакомый формат даст пустой список.
func extractSection(text string, headers []string) []string {
	var out []string
	capture := false

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if item, ok := bulletText(trimmed); ok {
			if capture && item != "" {
				out = append(out, item)
			}
			continue
		}

		lower := strings.ToLower(trimmed)
		if isHeader(lower, headers) {
			capture = true
			continue
		}
		if capture && strings.Contains(lower, ":") {
			// следующий заголовок закрывает секцию
			capture = false
		}
	}

	return out
}

func isHeader(lower string, headers []string) bool {
	if !strings.Contains(lower, ":") {
		return false
	}
	for _, h := range headers {
		if strings.Contains(lower, h) {
			return true
		}
	}
	return false
}

func bulletText(line string) (string, bool) {
	for _, marker := range []string{"- ", "* ", "• "} {
		if strings.HasPrefix(line, marker) {
			return strings.TrimSpace(strings.TrimPrefix(line, marker)), true
		}
	}
	if line == "-" || line == "*" {
		return "", true
	}
	return "", false
}
