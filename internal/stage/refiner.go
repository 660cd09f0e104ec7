package stage

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kitbuilder587/docsmith/internal/domain"
	"github.com/kitbuilder587/docsmith/internal/llm"
	"github.com/kitbuilder587/docsmith/internal/score"
)

// Refiner переписывает черновик, закрывая замечания критика. Прирост оценки
// эвристический: содержательная переработка дает больше, чем косметика.
type Refiner struct {
	provider llm.Provider
	params   llm.Params
	logger   *zap.Logger
}

func NewRefiner(provider llm.Provider, params llm.Params, logger *zap.Logger) *Refiner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Refiner{
		provider: provider,
		params:   params,
		logger:   logger,
	}
}

func (r *Refiner) Name() string { return "refiner" }

func (r *Refiner) OutputKey() string { return KeyDraft }

func (r *Refiner) Run(ctx context.Context, sc Context) (*domain.StageResult, error) {
	draft, ok := Draft(sc)
	if !ok {
		return nil, ErrNoDraft
	}
	critique, ok := Critique(sc)
	if !ok {
		return nil, ErrNoCritique
	}
	prev := Score(sc)

	prompt := r.buildPrompt(draft, critique, Issues(sc), Suggestions(sc))

	text, err := r.provider.Generate(ctx, prompt, r.params)
	if err != nil {
		r.logger.Error("refine generation failed", zap.Error(err))
		return nil, err
	}

	newScore := score.Clamp(prev+improvement(text, critique), prev)

	r.logger.Debug("refine completed",
		zap.Float64("previous_score", prev),
		zap.Float64("score", newScore),
	)

	return &domain.StageResult{
		Content:      text,
		QualityScore: newScore,
		Metadata: map[string]string{
			"stage": r.Name(),
		},
	}, nil
}

// improvement оценивает глубину переработки: текст длиннее половины рецензии
// считаем содержательной правкой
func improvement(refined, critique string) float64 {
	if len(refined) > len(critique)/2 {
		return 0.10
	}
	return 0.05
}

func (r *Refiner) buildPrompt(draft, critique string, issues, suggestions []string) string {
	var sb strings.Builder

	sb.WriteString("You are a professional business writer revising a document after editorial review.\n\n")

	sb.WriteString("=== CURRENT DRAFT ===\n")
	sb.WriteString(draft)
	sb.WriteString("\n\n")

	sb.WriteString("=== EDITORIAL REVIEW ===\n")
	sb.WriteString(critique)
	sb.WriteString("\n\n")

	if len(issues) > 0 {
		sb.WriteString("Address every one of these issues:\n")
		for _, issue := range issues {
			fmt.Fprintf(&sb, "- %s\n", issue)
		}
		sb.WriteString("\n")
	}
	if len(suggestions) > 0 {
		sb.WriteString("Apply these suggestions where they improve the text:\n")
		for _, s := range suggestions {
			fmt.Fprintf(&sb, "- %s\n", s)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Rewrite the complete document with all fixes applied. ")
	sb.WriteString("Keep everything that was not criticized. Output only the document.")

	return sb.String()
}

var _ Stage = (*Refiner)(nil)
