package validate

import (
	"fmt"
	"strings"

	"github.com/kitbuilder587/docsmith/internal/domain"
)

const (
	prohibitedPenalty      = 0.20
	riskDisclaimerPenalty  = 0.15
	pastPerformancePenalty = 0.10
	requiredLinePenalty    = 0.10
)

// Формулировки, обещающие результат. В деловых документах недопустимы
// независимо от типа.
var prohibited = []string{
	"guaranteed return",
	"guaranteed profit",
	"risk-free",
	"no risk of loss",
	"cannot lose",
	"100% safe",
}

// Compliance проверяет запрещенные формулировки, оговорки о рисках для
// коммерческих предложений и обязательные строки из шаблона типа.
func (v *Validator) Compliance(text string, docType domain.DocumentType) domain.ComplianceReport {
	report := domain.ComplianceReport{Compliant: true, Score: 1.0}
	lower := strings.ToLower(text)

	for _, phrase := range prohibited {
		if strings.Contains(lower, phrase) {
			report.Score -= prohibitedPenalty
			report.Issues = append(report.Issues, fmt.Sprintf("Prohibited phrase used: %q", phrase))
		}
	}

	if docType == domain.DocumentProposal {
		if !strings.Contains(lower, "risk") {
			report.Score -= riskDisclaimerPenalty
			report.Issues = append(report.Issues, "Investment risk disclaimer is missing")
		}
		// прошлые доходности без оговорки, что они не гарантируют будущих
		if strings.Contains(lower, "past") && strings.Contains(lower, "return") &&
			!strings.Contains(lower, "not guarantee") {
			report.Score -= pastPerformancePenalty
			report.Issues = append(report.Issues, "Past performance disclaimer is missing")
		}
	}

	for _, line := range v.tpls.For(docType).Required {
		if !strings.Contains(lower, strings.ToLower(line)) {
			report.Score -= requiredLinePenalty
			report.Issues = append(report.Issues, fmt.Sprintf("Required line is missing: %q", line))
		}
	}

	if report.Score < 0 {
		report.Score = 0
	}
	report.Compliant = len(report.Issues) == 0

	return report
}
