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

// Critic рецензирует черновик по фиксированной рубрике. Свободный текст
// модели превращает в оценку и списки замечаний экстрактор.
type Critic struct {
	provider  llm.Provider
	params    llm.Params
	extractor score.Extractor
	logger    *zap.Logger
}

func NewCritic(provider llm.Provider, params llm.Params, extractor score.Extractor, logger *zap.Logger) *Critic {
	if extractor == nil {
		extractor = score.NewHeuristic()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Critic{
		provider:  provider,
		params:    params,
		extractor: extractor,
		logger:    logger,
	}
}

func (c *Critic) Name() string { return "critic" }

func (c *Critic) OutputKey() string { return KeyCritique }

func (c *Critic) Run(ctx context.Context, sc Context) (*domain.StageResult, error) {
	draft, ok := Draft(sc)
	if !ok {
		return nil, ErrNoDraft
	}
	prev := Score(sc)

	prompt := c.buildPrompt(draft, sc)

	text, err := c.provider.Generate(ctx, prompt, c.params)
	if err != nil {
		c.logger.Error("critique generation failed", zap.Error(err))
		return nil, err
	}

	ext := c.extractor.Extract(text, prev)

	c.logger.Debug("critique completed",
		zap.Float64("score", ext.Score),
		zap.Int("issues", len(ext.Issues)),
	)

	return &domain.StageResult{
		Content:      text,
		QualityScore: ext.Score,
		Issues:       ext.Issues,
		Suggestions:  ext.Suggestions,
		Metadata: map[string]string{
			"stage": c.Name(),
		},
	}, nil
}

func (c *Critic) buildPrompt(draft string, sc Context) string {
	var sb strings.Builder

	sb.WriteString("You are a meticulous editor reviewing a business document.\n\n")

	if req, ok := Request(sc); ok {
		fmt.Fprintf(&sb, "The document is a %s written in a %s tone.\n\n", req.Type, req.Tone)
	}

	sb.WriteString("=== DOCUMENT ===\n")
	sb.WriteString(draft)
	sb.WriteString("\n\n")

	sb.WriteString("=== REVIEW RUBRIC ===\n")
	sb.WriteString("Evaluate grammar, terminology, structure, clarity, compliance and tone.\n\n")

	sb.WriteString("Respond in exactly this format:\n")
	sb.WriteString("Issues:\n- one issue per line\n")
	sb.WriteString("Suggestions:\n- one suggestion per line\n")
	sb.WriteString("Strengths:\n- one strength per line\n")
	sb.WriteString("Overall assessment: a short paragraph\n")
	sb.WriteString("Score: N/100\n\n")
	fmt.Fprintf(&sb, "If the document needs no further changes, write exactly: %s", score.Sentinel)

	return sb.String()
}

var _ Stage = (*Critic)(nil)
