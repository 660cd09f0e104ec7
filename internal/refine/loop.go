package refine

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kitbuilder587/docsmith/internal/domain"
	"github.com/kitbuilder587/docsmith/internal/score"
	"github.com/kitbuilder587/docsmith/internal/stage"
	"github.com/kitbuilder587/docsmith/internal/textdiff"
)

// IterationUpdate - прогресс для внешнего наблюдателя, побочный канал
type IterationUpdate struct {
	Iteration  int
	Score      float64
	BestScore  float64
	RolledBack bool
}

type Deps struct {
	Draft      stage.Stage
	Critic     stage.Stage
	Refiner    stage.Stage
	Conditions []Condition
	Logger     *zap.Logger
}

// Controller гоняет цикл черновик -> рецензия -> доработка до выхода по
// одному из условий. Однопоточный: один Run - одно состояние.
type Controller struct {
	initial    *stage.Pipeline // draft + critic, первая итерация
	critique   *stage.Pipeline // только critic, повторные итерации
	refine     *stage.Pipeline
	conditions []Condition
	logger     *zap.Logger
	now        func() time.Time
}

func NewController(deps Deps) *Controller {
	if deps.Conditions == nil {
		deps.Conditions = DefaultConditions()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	// большие буферы текста живут в State, пайплайнам хранить нечего
	return &Controller{
		initial:    stage.NewPipeline("initial", []stage.Stage{deps.Draft, deps.Critic}, stage.MemoryNone, deps.Logger),
		critique:   stage.NewPipeline("critique", []stage.Stage{deps.Critic}, stage.MemoryNone, deps.Logger),
		refine:     stage.NewPipeline("refine", []stage.Stage{deps.Refiner}, stage.MemoryNone, deps.Logger),
		conditions: deps.Conditions,
		logger:     deps.Logger,
		now:        time.Now,
	}
}

// Run выполняет полный цикл для запроса. Сбой провайдера не паника и не
// ошибка вызова: возвращается результат с Success=false и тем, что успело
// накопиться.
func (c *Controller) Run(ctx context.Context, req *domain.DocumentRequest, onIteration func(IterationUpdate)) (*domain.DocumentResult, error) {
	cfg := ConfigFromPreset(req.Preset)
	runID := uuid.NewString()
	st := newState(c.now())

	c.logger.Info("refinement loop started",
		zap.String("run_id", runID),
		zap.String("type", req.Type.String()),
		zap.Int("max_iterations", cfg.MaxIterations),
		zap.Float64("threshold", cfg.QualityThreshold),
	)

	st.Phase = PhaseIterating

	for {
		st.Iteration++
		iterStart := c.now()

		sc := stage.Context{stage.KeyRequest: req}

		var err error
		if st.Iteration == 1 {
			_, err = c.initial.Execute(ctx, sc)
		} else {
			sc[stage.KeyDraft] = st.CurrentDraft
			sc[stage.KeyScore] = st.CurrentScore
			_, err = c.critique.Execute(ctx, sc)
		}
		if err != nil {
			return c.fail(st, runID, sc, err), nil
		}

		if st.Iteration == 1 {
			// черновик готов: база для сравнения и первый лучший вариант
			draft, _ := stage.Draft(sc)
			st.CurrentDraft = draft
			st.CurrentScore = stage.BaselineScore
			st.BestDraft = draft
			st.BestScore = stage.BaselineScore
		}

		critique, _ := stage.Critique(sc)
		st.LastCritique = critique

		refineSkipped := score.ContainsSentinel(critique)
		if !refineSkipped {
			if _, err := c.refine.Execute(ctx, sc); err != nil {
				return c.fail(st, runID, sc, err), nil
			}
		}

		newContent, _ := stage.Draft(sc)
		newScore := stage.Score(sc)

		// история оценок пишется до защиты от регресса: откаченная
		// итерация тоже оставляет след
		st.ScoreHistory = append(st.ScoreHistory, newScore)

		rec := domain.IterationRecord{
			Iteration:     st.Iteration,
			Score:         newScore,
			PreviousScore: st.CurrentScore,
			Critique:      critique,
			Issues:        stage.Issues(sc),
			Suggestions:   stage.Suggestions(sc),
			RefineSkipped: refineSkipped,
			Duration:      c.now().Sub(iterStart),
		}

		if newScore < st.CurrentScore {
			rec.RolledBack = true
			rec.Reason = fmt.Sprintf("Quality decreased: %.2f -> %.2f", st.CurrentScore, newScore)
			c.logger.Warn("iteration rolled back",
				zap.String("run_id", runID),
				zap.Int("iteration", st.Iteration),
				zap.Float64("current", st.CurrentScore),
				zap.Float64("rejected", newScore),
			)
		} else {
			diff := textdiff.Compare(st.CurrentDraft, newContent)
			rec.Similarity = diff.Similarity
			rec.WordsAdded = diff.WordsAdded
			rec.WordsRemoved = diff.WordsRemoved

			st.CurrentDraft = newContent
			st.CurrentScore = newScore
			if newScore > st.BestScore {
				st.BestScore = newScore
				st.BestDraft = newContent
			}
		}

		st.History = append(st.History, rec)

		c.logger.Info("iteration completed",
			zap.String("run_id", runID),
			zap.Int("iteration", st.Iteration),
			zap.Float64("score", st.CurrentScore),
			zap.Float64("best", st.BestScore),
			zap.Bool("rolled_back", rec.RolledBack),
		)

		if onIteration != nil {
			onIteration(IterationUpdate{
				Iteration:  st.Iteration,
				Score:      st.CurrentScore,
				BestScore:  st.BestScore,
				RolledBack: rec.RolledBack,
			})
		}

		if reason, done := c.shouldExit(st, cfg); done {
			st.ExitReason = reason
			break
		}
	}

	st.Phase = PhaseExited

	res := c.buildResult(st, runID)
	res.Success = true

	c.logger.Info("refinement loop finished",
		zap.String("run_id", runID),
		zap.Int("iterations", res.Iterations),
		zap.Float64("quality", res.QualityScore),
		zap.String("exit_reason", res.ExitReason),
	)

	return res, nil
}

func (c *Controller) shouldExit(st *State, cfg Config) (string, bool) {
	now := c.now()
	for _, cond := range c.conditions {
		if ok, reason := cond.Check(st, cfg, now); ok {
			return reason, true
		}
	}
	return "", false
}

// fail собирает структурированный отказ. Если упал критик первой итерации,
// черновик из контекста все равно спасаем.
func (c *Controller) fail(st *State, runID string, sc stage.Context, err error) *domain.DocumentResult {
	st.Phase = PhaseExited

	if st.BestDraft == "" {
		if draft, ok := stage.Draft(sc); ok {
			st.BestDraft = draft
			st.BestScore = stage.BaselineScore
			st.CurrentDraft = draft
			st.CurrentScore = stage.BaselineScore
		}
	}

	res := c.buildResult(st, runID)
	res.Success = false
	res.Error = err.Error()

	c.logger.Error("refinement loop failed",
		zap.String("run_id", runID),
		zap.Int("iteration", st.Iteration),
		zap.Error(err),
	)

	return res
}

// buildResult всегда отдает лучший вариант, не последний
func (c *Controller) buildResult(st *State, runID string) *domain.DocumentResult {
	initial := stage.BaselineScore
	pct := (st.BestScore - initial) / initial * 100
	if pct < 0 {
		pct = 0
	}

	progression := append([]float64(nil), st.ScoreHistory...)

	return &domain.DocumentResult{
		RunID:            runID,
		FinalDocument:    st.BestDraft,
		QualityScore:     st.BestScore,
		Iterations:       len(st.History),
		ExitReason:       st.ExitReason,
		TotalTime:        c.now().Sub(st.StartTime),
		History:          st.History,
		ScoreProgression: progression,
		Monitoring: domain.QualityMonitoring{
			InitialScore:   initial,
			FinalScore:     st.CurrentScore,
			BestScore:      st.BestScore,
			Progression:    progression,
			Improved:       st.BestScore > initial,
			ImprovementPct: math.Round(pct*100) / 100,
		},
		Assurance: domain.QualityAssurance{
			RollbackEnabled:     true,
			MinimumImprovement:  score.MinStep,
			BestVersionTracking: true,
		},
	}
}
