package domain

// TermReport - покрытие текста профессиональной терминологией
type TermReport struct {
	Score      float64
	FoundTerms []string
}

// ComplianceReport - проверка на запрещенные формулировки и обязательные оговорки
type ComplianceReport struct {
	Compliant bool
	Score     float64
	Issues    []string
}

// ValidationSummary - внешняя оценка готового документа, поверх внутреннего скора цикла
type ValidationSummary struct {
	Terms      TermReport
	Compliance ComplianceReport
	Composite  float64
}
