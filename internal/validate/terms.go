package validate

import (
	"regexp"
	"sort"
	"strings"

	"github.com/kitbuilder587/docsmith/internal/domain"
)

const (
	termBaseScore    = 0.50
	termCoverageStep = 0.05
	// упоминание темы без обязательного контекста
	termContextPenalty = 0.10
)

// Глоссарий деловой и финансовой лексики. Категория засчитывается по
// любому из синонимов, целыми словами.
var glossary = map[string][]string{
	"asset":         {"asset", "assets"},
	"bond":          {"bond", "bonds"},
	"budget":        {"budget", "budgeting"},
	"credit":        {"credit rating", "creditworthiness"},
	"derivative":    {"derivative", "derivatives"},
	"equity":        {"stock", "equity", "shares"},
	"exchange rate": {"exchange rate", "fx rate"},
	"forecast":      {"forecast", "projection"},
	"fund":          {"fund", "etf"},
	"hedge":         {"hedge", "hedging"},
	"interest rate": {"interest rate"},
	"investment":    {"investment", "invest", "investing"},
	"liability":     {"liability", "liabilities", "debt"},
	"liquidity":     {"liquidity"},
	"margin":        {"margin", "profitability"},
	"portfolio":     {"portfolio"},
	"return":        {"return rate", "yield", "returns"},
	"revenue":       {"revenue", "turnover"},
	"risk":          {"risk", "risks", "exposure"},
	"volatility":    {"volatility"},
}

var termPatterns = compileGlossary()

func compileGlossary() map[string]*regexp.Regexp {
	patterns := make(map[string]*regexp.Regexp, len(glossary))
	for category, synonyms := range glossary {
		quoted := make([]string, len(synonyms))
		for i, s := range synonyms {
			quoted[i] = regexp.QuoteMeta(s)
		}
		patterns[category] = regexp.MustCompile(`(?i)\b(` + strings.Join(quoted, "|") + `)\b`)
	}
	return patterns
}

// Terms оценивает покрытие текста профессиональной терминологией.
// Оценка растет с числом задетых категорий; упоминание инвестиций без
// рисков или доходности без базы расчета ее снижает.
func Terms(text string) domain.TermReport {
	report := domain.TermReport{}

	for category, pattern := range termPatterns {
		if pattern.MatchString(text) {
			report.FoundTerms = append(report.FoundTerms, category)
		}
	}
	sort.Strings(report.FoundTerms)

	report.Score = termBaseScore + termCoverageStep*float64(len(report.FoundTerms))
	if report.Score > 1.0 {
		report.Score = 1.0
	}

	found := make(map[string]bool, len(report.FoundTerms))
	for _, c := range report.FoundTerms {
		found[c] = true
	}

	lower := strings.ToLower(text)
	if found["investment"] && !found["risk"] {
		report.Score -= termContextPenalty
	}
	if found["return"] && !strings.Contains(lower, "basis") && !strings.Contains(lower, "period") {
		report.Score -= termContextPenalty
	}

	if report.Score < 0 {
		report.Score = 0
	}

	return report
}
