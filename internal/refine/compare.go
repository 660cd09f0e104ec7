package refine

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kitbuilder587/docsmith/internal/llm"
)

// CompareResult - ответ одного провайдера в сравнительном прогоне
type CompareResult struct {
	Info     llm.Info
	Content  string
	Err      error
	Duration time.Duration
}

// Compare запускает один промпт на всех провайдерах параллельно.
// Ветви независимы: падение одной не отменяет остальные, у каждой свой
// слот результата.
func Compare(ctx context.Context, providers []llm.Provider, prompt string, params llm.Params, logger *zap.Logger) []CompareResult {
	if logger == nil {
		logger = zap.NewNop()
	}

	results := make([]CompareResult, len(providers))

	var g errgroup.Group
	for i, p := range providers {
		i, p := i, p
		g.Go(func() error {
			start := time.Now()
			text, err := p.Generate(ctx, prompt, params)
			results[i] = CompareResult{
				Info:     p.Describe(),
				Content:  text,
				Err:      err,
				Duration: time.Since(start),
			}
			if err != nil {
				logger.Warn("compare branch failed",
					zap.String("provider", p.Describe().Provider),
					zap.Error(err),
				)
			}
			return nil
		})
	}
	// ветви ошибок не возвращают, ждем все
	_ = g.Wait()

	return results
}
