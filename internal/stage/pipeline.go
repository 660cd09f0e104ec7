package stage

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kitbuilder587/docsmith/internal/domain"
)

// MemoryPolicy управляет тем, что пайплайн УДЕРЖИВАЕТ в результатах прогона.
// На передачу данных между этапами не влияет: контекст всегда полный.
type MemoryPolicy string

const (
	MemoryAll  MemoryPolicy = "all"
	MemoryLast MemoryPolicy = "last"
	MemoryNone MemoryPolicy = "none"
)

func (p MemoryPolicy) IsValid() bool {
	switch p {
	case MemoryAll, MemoryLast, MemoryNone:
		return true
	}
	return false
}

// Pipeline выполняет этапы по порядку, вливая результат каждого в общий
// контекст. Ошибка этапа останавливает прогон сразу.
type Pipeline struct {
	name   string
	stages []Stage
	policy MemoryPolicy
	logger *zap.Logger
}

func NewPipeline(name string, stages []Stage, policy MemoryPolicy, logger *zap.Logger) *Pipeline {
	if !policy.IsValid() {
		policy = MemoryAll
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		name:   name,
		stages: stages,
		policy: policy,
		logger: logger,
	}
}

// Run - итог прогона. Context заполнен всегда; Results и Log - по политике.
type Run struct {
	Context   Context
	Results   map[string]*domain.StageResult
	Log       []LogEntry
	Completed []string
}

type LogEntry struct {
	Stage    string
	Score    float64
	Duration time.Duration
}

// Execute гоняет этапы над переданным контекстом. При ошибке возвращает
// и ошибку, и все собранное до нее.
func (p *Pipeline) Execute(ctx context.Context, sc Context) (*Run, error) {
	if sc == nil {
		sc = make(Context)
	}

	run := &Run{Context: sc}
	if p.policy != MemoryNone {
		run.Results = make(map[string]*domain.StageResult)
	}

	for _, st := range p.stages {
		start := time.Now()

		res, err := st.Run(ctx, sc)
		if err != nil {
			p.logger.Error("stage failed",
				zap.String("pipeline", p.name),
				zap.String("stage", st.Name()),
				zap.Error(err),
			)
			return run, fmt.Errorf("stage %s: %w", st.Name(), err)
		}

		merge(sc, st, res)
		run.Completed = append(run.Completed, st.Name())

		switch p.policy {
		case MemoryAll:
			run.Results[st.Name()] = res
			run.Log = append(run.Log, LogEntry{
				Stage:    st.Name(),
				Score:    res.QualityScore,
				Duration: time.Since(start),
			})
		case MemoryLast:
			for k := range run.Results {
				delete(run.Results, k)
			}
			run.Results[st.Name()] = res
		}

		p.logger.Debug("stage completed",
			zap.String("pipeline", p.name),
			zap.String("stage", st.Name()),
			zap.Float64("score", res.QualityScore),
			zap.Duration("duration", time.Since(start)),
		)
	}

	return run, nil
}

// merge вливает результат этапа в контекст. Контент ложится под ключ этапа,
// остальное перезаписывает общие ключи; отсутствующие поля ключи не трогают.
func merge(sc Context, st Stage, res *domain.StageResult) {
	sc[st.OutputKey()] = res.Content
	sc[KeyScore] = res.QualityScore
	if res.Issues != nil {
		sc[KeyIssues] = res.Issues
	}
	if res.Suggestions != nil {
		sc[KeySuggestions] = res.Suggestions
	}
}
