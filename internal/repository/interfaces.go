package repository

import (
	"context"

	"github.com/kitbuilder587/docsmith/internal/domain"
)

type UserRepository interface {
	GetOrCreate(ctx context.Context, telegramID int64, username string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	UpdatePreferences(ctx context.Context, user *domain.User) error
}

// DocumentRepository - итерации живут рядом с документом, отдельный
// интерфейс для них не оправдан
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	ListByUser(ctx context.Context, userID int64, limit int) ([]domain.Document, error)
	CountByUser(ctx context.Context, userID int64) (int, error)
	SaveIterations(ctx context.Context, documentID int64, records []domain.IterationRecord) error
	GetIterations(ctx context.Context, documentID int64) ([]domain.IterationRecord, error)
}

type StatsRepository interface {
	RecordGeneration(ctx context.Context, userID int64, iterations int, quality float64) error
	GetDailyStats(ctx context.Context, userID int64, days int) ([]domain.DailyStats, error)
}
