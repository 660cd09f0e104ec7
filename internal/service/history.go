package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/kitbuilder587/docsmith/internal/domain"
	"github.com/kitbuilder587/docsmith/internal/repository"
)

type HistoryService interface {
	History(ctx context.Context, userID int64, limit int) ([]domain.Document, error)
	Stats(ctx context.Context, userID int64, days int) ([]domain.DailyStats, error)
	ExportJSON(ctx context.Context, userID int64, limit int) ([]byte, error)
}

type historyService struct {
	documents repository.DocumentRepository
	stats     repository.StatsRepository
	logger    *zap.Logger
}

func NewHistoryService(documents repository.DocumentRepository, stats repository.StatsRepository, logger *zap.Logger) HistoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &historyService{
		documents: documents,
		stats:     stats,
		logger:    logger,
	}
}

func (s *historyService) History(ctx context.Context, userID int64, limit int) ([]domain.Document, error) {
	if limit <= 0 {
		limit = 10
	}

	docs, err := s.documents.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, domain.ErrNoDocuments
	}

	return docs, nil
}

func (s *historyService) Stats(ctx context.Context, userID int64, days int) ([]domain.DailyStats, error) {
	if days <= 0 {
		days = 7
	}
	return s.stats.GetDailyStats(ctx, userID, days)
}

type exportIteration struct {
	Iteration  int     `json:"iteration"`
	Score      float64 `json:"score"`
	Critique   string  `json:"critique,omitempty"`
	RolledBack bool    `json:"rolled_back,omitempty"`
	Reason     string  `json:"reason,omitempty"`
}

type exportDocument struct {
	RunID        string            `json:"run_id"`
	Type         string            `json:"type"`
	Tone         string            `json:"tone"`
	Provider     string            `json:"provider,omitempty"`
	Model        string            `json:"model,omitempty"`
	Requirements string            `json:"requirements"`
	Content      string            `json:"content"`
	QualityScore float64           `json:"quality_score"`
	Iterations   int               `json:"iterations"`
	ExitReason   string            `json:"exit_reason,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	History      []exportIteration `json:"history,omitempty"`
}

func (s *historyService) ExportJSON(ctx context.Context, userID int64, limit int) ([]byte, error) {
	if limit <= 0 {
		limit = 50
	}

	docs, err := s.documents.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, domain.ErrNoDocuments
	}

	export := make([]exportDocument, 0, len(docs))
	for _, doc := range docs {
		entry := exportDocument{
			RunID:        doc.RunID,
			Type:         doc.Type.String(),
			Tone:         doc.Tone.String(),
			Provider:     doc.Provider,
			Model:        doc.Model,
			Requirements: doc.Requirements,
			Content:      doc.Content,
			QualityScore: doc.QualityScore,
			Iterations:   doc.Iterations,
			ExitReason:   doc.ExitReason,
			CreatedAt:    doc.CreatedAt,
		}

		records, err := s.documents.GetIterations(ctx, doc.ID)
		if err != nil {
			s.logger.Warn("failed to load iteration history for export",
				zap.Error(err),
				zap.Int64("document_id", doc.ID),
			)
		}
		for _, rec := range records {
			entry.History = append(entry.History, exportIteration{
				Iteration:  rec.Iteration,
				Score:      rec.Score,
				Critique:   rec.Critique,
				RolledBack: rec.RolledBack,
				Reason:     rec.Reason,
			})
		}

		export = append(export, entry)
	}

	s.logger.Info("history exported",
		zap.Int64("user_id", userID),
		zap.Int("documents", len(export)),
	)

	return json.MarshalIndent(export, "", "  ")
}
