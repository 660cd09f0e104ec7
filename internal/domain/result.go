package domain

import "time"

// StageResult - результат одного этапа пайплайна. После создания не меняется.
type StageResult struct {
	Content      string
	QualityScore float64 // 0.0-1.0
	Issues       []string
	Suggestions  []string
	Metadata     map[string]string
}

// IterationRecord - запись одной итерации цикла доработки
type IterationRecord struct {
	Iteration     int
	Score         float64
	PreviousScore float64
	Critique      string
	Issues        []string
	Suggestions   []string
	RefineSkipped bool
	RolledBack    bool
	Reason        string // причина отката, пусто если итерация принята
	Similarity    float64
	WordsAdded    int
	WordsRemoved  int
	Duration      time.Duration
}

// QualityMonitoring - сводка динамики качества за прогон
type QualityMonitoring struct {
	InitialScore   float64
	FinalScore     float64
	BestScore      float64
	Progression    []float64
	Improved       bool
	ImprovementPct float64
}

// QualityAssurance - зафиксированные гарантии цикла
type QualityAssurance struct {
	RollbackEnabled     bool
	MinimumImprovement  float64
	BestVersionTracking bool
}

// DocumentResult - итог генерации. Success=false не означает ошибку вызова:
// сбой провайдера посреди цикла возвращается здесь, а не паникой.
type DocumentResult struct {
	RunID            string
	Success          bool
	Error            string
	FinalDocument    string
	QualityScore     float64
	Iterations       int
	ExitReason       string
	TotalTime        time.Duration
	Provider         string
	Model            string
	History          []IterationRecord
	ScoreProgression []float64
	Monitoring       QualityMonitoring
	Assurance        QualityAssurance
	Validation       *ValidationSummary
}
