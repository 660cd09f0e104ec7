package stage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kitbuilder587/docsmith/internal/domain"
	"github.com/kitbuilder587/docsmith/internal/llm"
	"github.com/kitbuilder587/docsmith/internal/template"
)

// BaselineScore - стартовая оценка любого черновика. Дальше ее двигает
// только критик.
const BaselineScore = 0.70

// DraftWriter пишет первый черновик по запросу и шаблону типа документа
type DraftWriter struct {
	provider llm.Provider
	params   llm.Params
	tpls     *template.Set
	logger   *zap.Logger
	now      func() time.Time
}

func NewDraftWriter(provider llm.Provider, params llm.Params, tpls *template.Set, logger *zap.Logger) *DraftWriter {
	if tpls == nil {
		tpls = template.Builtin()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DraftWriter{
		provider: provider,
		params:   params,
		tpls:     tpls,
		logger:   logger,
		now:      time.Now,
	}
}

func (w *DraftWriter) Name() string { return "draft_writer" }

func (w *DraftWriter) OutputKey() string { return KeyDraft }

func (w *DraftWriter) Run(ctx context.Context, sc Context) (*domain.StageResult, error) {
	req, ok := Request(sc)
	if !ok {
		return nil, ErrNoRequest
	}

	prompt := w.buildPrompt(req)

	w.logger.Debug("writing draft",
		zap.String("type", req.Type.String()),
		zap.String("tone", req.Tone.String()),
	)

	text, err := w.provider.Generate(ctx, prompt, w.params)
	if err != nil {
		w.logger.Error("draft generation failed", zap.Error(err))
		return nil, err
	}

	return &domain.StageResult{
		Content:      text,
		QualityScore: BaselineScore,
		Metadata: map[string]string{
			"stage": w.Name(),
			"type":  req.Type.String(),
		},
	}, nil
}

func (w *DraftWriter) buildPrompt(req *domain.DocumentRequest) string {
	tpl := w.tpls.For(req.Type)

	var sb strings.Builder

	fmt.Fprintf(&sb, "You are a professional business writer. Write a %s %s.\n\n", req.Tone, req.Type)

	sb.WriteString("=== REQUIREMENTS ===\n")
	sb.WriteString(req.Requirements)
	sb.WriteString("\n\n")

	if req.Recipient != "" || req.Subject != "" || req.AdditionalContext != "" {
		sb.WriteString("=== DETAILS ===\n")
		if req.Recipient != "" {
			fmt.Fprintf(&sb, "Recipient: %s\n", req.Recipient)
		}
		if req.Subject != "" {
			fmt.Fprintf(&sb, "Subject: %s\n", req.Subject)
		}
		if req.AdditionalContext != "" {
			fmt.Fprintf(&sb, "Additional context: %s\n", req.AdditionalContext)
		}
		sb.WriteString("\n")
	}

	if len(tpl.Outline) > 0 {
		sb.WriteString("=== STRUCTURE ===\n")
		for i, section := range tpl.Outline {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, section)
		}
		if tpl.Style != "" {
			fmt.Fprintf(&sb, "Style notes: %s\n", tpl.Style)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("=== INSTRUCTIONS ===\n")
	// дата нужна модели чтобы разворачивать "this year" и подобное
	fmt.Fprintf(&sb, "Current date: %s. Resolve all relative dates against it.\n", w.now().Format("January 2, 2006"))
	for _, required := range tpl.Required {
		fmt.Fprintf(&sb, "The document must include the line: %q\n", required)
	}
	sb.WriteString("Write the complete document. Do not add commentary around it.")

	return sb.String()
}

var _ Stage = (*DraftWriter)(nil)
