package service

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kitbuilder587/docsmith/internal/cache"
	"github.com/kitbuilder587/docsmith/internal/domain"
	"github.com/kitbuilder587/docsmith/internal/llm"
	"github.com/kitbuilder587/docsmith/internal/metrics"
	"github.com/kitbuilder587/docsmith/internal/refine"
	"github.com/kitbuilder587/docsmith/internal/repository"
	"github.com/kitbuilder587/docsmith/internal/search"
	"github.com/kitbuilder587/docsmith/internal/validate"
)

// LoopFactory собирает цикл доработки под конкретного провайдера.
// Нужна, потому что этапы держат провайдера внутри, а выбор провайдера
// происходит на каждый запрос.
type LoopFactory func(provider llm.Provider) *refine.Controller

type AssistantService interface {
	Generate(ctx context.Context, req *domain.DocumentRequest, onIteration func(refine.IterationUpdate)) (*domain.DocumentResult, error)
	Compare(ctx context.Context, prompt string) ([]refine.CompareResult, error)
}

type AssistantConfig struct {
	DefaultPreset    domain.Preset
	Params           llm.Params
	SearchEnabled    bool
	MaxSearchResults int
	CacheTTL         time.Duration
}

type AssistantDeps struct {
	Users     repository.UserRepository
	Documents repository.DocumentRepository
	Stats     repository.StatsRepository
	Providers *llm.Registry
	Loop      LoopFactory
	Logger    *zap.Logger
	Config    AssistantConfig

	// опциональные компоненты
	Validator *validate.Validator
	Search    search.Client
	Cache     cache.Cache
	Metrics   *metrics.Metrics
}

type assistantService struct {
	users     repository.UserRepository
	documents repository.DocumentRepository
	stats     repository.StatsRepository
	providers *llm.Registry
	loop      LoopFactory
	validator *validate.Validator
	search    search.Client
	cache     cache.Cache
	logger    *zap.Logger
	metrics   *metrics.Metrics
	config    AssistantConfig
}

func NewAssistantService(deps AssistantDeps) AssistantService {
	if deps.Config.DefaultPreset.Type == "" {
		deps.Config.DefaultPreset = domain.StandardPreset()
	}
	if deps.Config.Params.Temperature == 0 {
		deps.Config.Params.Temperature = 0.7
	}
	if deps.Config.Params.MaxTokens == 0 {
		deps.Config.Params.MaxTokens = 2048
	}
	if deps.Config.MaxSearchResults == 0 {
		deps.Config.MaxSearchResults = 3
	}
	if deps.Config.CacheTTL == 0 {
		deps.Config.CacheTTL = time.Hour
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	return &assistantService{
		users:     deps.Users,
		documents: deps.Documents,
		stats:     deps.Stats,
		providers: deps.Providers,
		loop:      deps.Loop,
		validator: deps.Validator,
		search:    deps.Search,
		cache:     deps.Cache,
		logger:    deps.Logger,
		metrics:   deps.Metrics,
		config:    deps.Config,
	}
}

func (s *assistantService) Generate(ctx context.Context, req *domain.DocumentRequest, onIteration func(refine.IterationUpdate)) (*domain.DocumentResult, error) {
	startTime := time.Now()

	if s.metrics != nil {
		s.metrics.IncGenerationsInFlight()
		defer s.metrics.DecGenerationsInFlight()
	}

	req.Sanitize()
	if req.Preset.Type == "" {
		req.Preset = s.config.DefaultPreset
	}

	if err := req.Validate(); err != nil {
		if s.metrics != nil {
			s.metrics.RecordGeneration(req.Type.String(), "validation_error", "", 0, 0, time.Since(startTime))
		}
		return nil, err
	}

	provider, err := s.resolveProvider(ctx, req)
	if err != nil {
		return nil, err
	}
	info := provider.Describe()

	s.logger.Info("generating document",
		zap.Int64("user_id", req.UserID),
		zap.String("type", req.Type.String()),
		zap.String("tone", req.Tone.String()),
		zap.String("preset", req.Preset.Type.String()),
		zap.String("provider", info.Provider),
	)

	if s.search != nil && s.config.SearchEnabled {
		s.enrich(ctx, req)
	}

	result, err := s.loop(provider).Run(ctx, req, onIteration)
	if err != nil {
		return nil, err
	}

	result.Provider = info.Provider
	result.Model = info.Model

	if s.metrics != nil {
		for _, rec := range result.History {
			if rec.RolledBack {
				s.metrics.RecordRollback()
			}
		}
	}

	if s.validator != nil && result.Success {
		result.Validation = s.validator.Summarize(result.FinalDocument, req.Type)
	}

	status := "success"
	if !result.Success {
		status = "failed"
	}
	if s.metrics != nil {
		s.metrics.RecordGeneration(req.Type.String(), status, result.ExitReason, result.Iterations, result.QualityScore, time.Since(startTime))
	}

	s.logger.Info("document generated",
		zap.String("run_id", result.RunID),
		zap.Bool("success", result.Success),
		zap.Float64("quality", result.QualityScore),
		zap.Int("iterations", result.Iterations),
		zap.String("exit_reason", result.ExitReason),
	)

	// сохраняем в фоне, ответ пользователю не ждет базу
	if s.documents != nil && result.Success {
		s.storeAsync(req, result)
	}

	return result, nil
}

func (s *assistantService) Compare(ctx context.Context, prompt string) ([]refine.CompareResult, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, domain.ErrEmptyRequirements
	}

	providers := s.providers.All()
	if len(providers) == 0 {
		return nil, llm.ErrNoProviders
	}

	s.logger.Info("comparing providers",
		zap.Int("providers", len(providers)),
		zap.Int("prompt_length", len(prompt)),
	)

	return refine.Compare(ctx, providers, prompt, s.config.Params, s.logger), nil
}

// resolveProvider: явный выбор в запросе -> сохраненное предпочтение
// пользователя -> дефолт реестра
func (s *assistantService) resolveProvider(ctx context.Context, req *domain.DocumentRequest) (llm.Provider, error) {
	name := req.Provider
	if name == "" && s.users != nil {
		if user, err := s.users.GetByID(ctx, req.UserID); err == nil {
			name = user.DefaultProvider
		}
	}
	return s.providers.Get(name)
}

func (s *assistantService) enrich(ctx context.Context, req *domain.DocumentRequest) {
	query := buildSearchQuery(req)
	if query == "" {
		return
	}

	results := s.searchWithCache(ctx, query)
	if len(results) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString("Reference snippets:\n")
	for i, r := range results {
		if i >= s.config.MaxSearchResults {
			break
		}
		fmt.Fprintf(&sb, "- %s: %s\n", r.Title, r.Snippet)
	}

	if req.AdditionalContext != "" {
		req.AdditionalContext += "\n\n"
	}
	req.AdditionalContext += sb.String()

	s.logger.Debug("request enriched with search snippets",
		zap.Int64("user_id", req.UserID),
		zap.Int("snippets", len(results)),
	)
}

func (s *assistantService) searchWithCache(ctx context.Context, query string) []search.Result {
	cacheKey := s.cacheKey(query)

	if s.cache != nil {
		if cached, ok := s.cache.Get(cacheKey); ok {
			if results, ok := cached.([]search.Result); ok {
				if s.metrics != nil {
					s.metrics.RecordCacheHit()
				}
				return results
			}
		}
	}

	if s.metrics != nil {
		s.metrics.RecordCacheMiss()
	}

	searchStart := time.Now()
	resp, err := s.search.Search(ctx, search.Request{
		Query:      query,
		MaxResults: s.config.MaxSearchResults,
	})
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordSearchRequest("error", time.Since(searchStart))
		}
		// обогащение опциональное, генерация идет дальше без него
		s.logger.Warn("search enrichment failed",
			zap.Error(err),
			zap.String("query", query),
		)
		return nil
	}

	if s.metrics != nil {
		s.metrics.RecordSearchRequest("success", time.Since(searchStart))
	}

	if s.cache != nil {
		s.cache.Set(cacheKey, resp.Results, s.config.CacheTTL)
	}

	return resp.Results
}

func (s *assistantService) cacheKey(query string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(query)), " ")
	hash := sha256.Sum256([]byte(normalized))
	return fmt.Sprintf("search:%x", hash[:8])
}

func (s *assistantService) storeAsync(req *domain.DocumentRequest, result *domain.DocumentResult) {
	doc := &domain.Document{
		RunID:        result.RunID,
		UserID:       req.UserID,
		Type:         req.Type,
		Tone:         req.Tone,
		Provider:     result.Provider,
		Model:        result.Model,
		Requirements: req.Requirements,
		Content:      result.FinalDocument,
		QualityScore: result.QualityScore,
		Iterations:   result.Iterations,
		ExitReason:   result.ExitReason,
		TotalTime:    result.TotalTime,
	}
	history := append([]domain.IterationRecord(nil), result.History...)

	go func() {
		ctx := context.Background()

		if err := s.documents.Create(ctx, doc); err != nil {
			s.logger.Warn("failed to store document",
				zap.Error(err),
				zap.String("run_id", doc.RunID),
			)
			return
		}

		if err := s.documents.SaveIterations(ctx, doc.ID, history); err != nil {
			s.logger.Warn("failed to store iteration history",
				zap.Error(err),
				zap.String("run_id", doc.RunID),
			)
		}

		if s.stats != nil {
			if err := s.stats.RecordGeneration(ctx, doc.UserID, doc.Iterations, doc.QualityScore); err != nil {
				s.logger.Warn("failed to record daily stats",
					zap.Error(err),
					zap.Int64("user_id", doc.UserID),
				)
			}
		}
	}()
}

func buildSearchQuery(req *domain.DocumentRequest) string {
	if req.Subject != "" {
		return req.Subject
	}
	words := strings.Fields(req.Requirements)
	if len(words) > 12 {
		words = words[:12]
	}
	return strings.Join(words, " ")
}
