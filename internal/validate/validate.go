package validate

import (
	"go.uber.org/zap"

	"github.com/kitbuilder587/docsmith/internal/domain"
	"github.com/kitbuilder587/docsmith/internal/template"
)

// Validator - внешняя проверка готового документа. Работает поверх
// внутренней оценки цикла и не влияет на его ход.
type Validator struct {
	tpls   *template.Set
	logger *zap.Logger
}

func New(tpls *template.Set, logger *zap.Logger) *Validator {
	if tpls == nil {
		tpls = template.Builtin()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Validator{
		tpls:   tpls,
		logger: logger,
	}
}

// Summarize прогоняет все проверки и собирает сводку
func (v *Validator) Summarize(text string, docType domain.DocumentType) *domain.ValidationSummary {
	terms := Terms(text)
	compliance := v.Compliance(text, docType)

	summary := &domain.ValidationSummary{
		Terms:      terms,
		Compliance: compliance,
		Composite:  QualityScore(text, terms, compliance),
	}

	v.logger.Info("document validated",
		zap.String("type", docType.String()),
		zap.Float64("composite", summary.Composite),
		zap.Bool("compliant", compliance.Compliant),
		zap.Int("terms_found", len(terms.FoundTerms)),
	)

	return summary
}
