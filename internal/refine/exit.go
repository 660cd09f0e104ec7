package refine

import (
	"fmt"
	"time"

	"github.com/kitbuilder587/docsmith/internal/domain"
	"github.com/kitbuilder587/docsmith/internal/score"
)

// Config - бюджет одного прогона цикла
type Config struct {
	QualityThreshold float64
	MaxIterations    int
	Timeout          time.Duration
}

func ConfigFromPreset(p domain.Preset) Config {
	return Config{
		QualityThreshold: p.QualityThreshold,
		MaxIterations:    p.MaxIterations,
		Timeout:          time.Duration(p.TimeoutSeconds) * time.Second,
	}
}

// Condition - чистый предикат выхода. Состояние не меняет, побочных
// эффектов не имеет.
type Condition interface {
	Name() string
	Check(s *State, cfg Config, now time.Time) (bool, string)
}

// QualityThresholdMet - качество достигло порога
type QualityThresholdMet struct{}

func (QualityThresholdMet) Name() string { return "quality_threshold" }

func (QualityThresholdMet) Check(s *State, cfg Config, now time.Time) (bool, string) {
	if s.CurrentScore >= cfg.QualityThreshold {
		return true, fmt.Sprintf("Quality threshold met: %.2f", s.CurrentScore)
	}
	return false, ""
}

// CriticSatisfied - критик сказал, что дорабатывать нечего
type CriticSatisfied struct{}

func (CriticSatisfied) Name() string { return "critic_satisfied" }

func (CriticSatisfied) Check(s *State, cfg Config, now time.Time) (bool, string) {
	if score.ContainsSentinel(s.LastCritique) {
		return true, "No major issues found by critic"
	}
	return false, ""
}

// IterationLimit - исчерпан лимит итераций
type IterationLimit struct{}

func (IterationLimit) Name() string { return "iteration_limit" }

func (IterationLimit) Check(s *State, cfg Config, now time.Time) (bool, string) {
	if s.Iteration >= cfg.MaxIterations {
		return true, fmt.Sprintf("Maximum iterations (%d) reached", cfg.MaxIterations)
	}
	return false, ""
}

// TimeoutExceeded - вышло время. Проверяется только на границе итерации:
// запрос к провайдеру посреди итерации не прерывается.
type TimeoutExceeded struct{}

func (TimeoutExceeded) Name() string { return "timeout" }

func (TimeoutExceeded) Check(s *State, cfg Config, now time.Time) (bool, string) {
	if s.Elapsed(now) > cfg.Timeout {
		return true, fmt.Sprintf("Timeout (%ds) exceeded", int(cfg.Timeout.Seconds()))
	}
	return false, ""
}

// DefaultConditions - штатный набор в порядке приоритета: первый сработавший
// дает причину выхода
func DefaultConditions() []Condition {
	return []Condition{
		QualityThresholdMet{},
		CriticSatisfied{},
		IterationLimit{},
		TimeoutExceeded{},
	}
}
