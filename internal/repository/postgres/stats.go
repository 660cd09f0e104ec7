package postgres

import (
	"context"
	"fmt"

	"github.com/kitbuilder587/docsmith/internal/domain"
)

type StatsRepo struct {
	db *DB
}

func NewStatsRepo(db *DB) *StatsRepo {
	return &StatsRepo{db: db}
}

// RecordGeneration инкрементит дневную строку пользователя. Среднее качество
// не храним, только сумму, среднее считается при чтении.
func (r *StatsRepo) RecordGeneration(ctx context.Context, userID int64, iterations int, quality float64) error {
	query := `
		INSERT INTO daily_stats (user_id, day, documents_created, total_iterations, quality_sum)
		VALUES ($1, CURRENT_DATE, 1, $2, $3)
		ON CONFLICT (user_id, day) DO UPDATE SET
			documents_created = daily_stats.documents_created + 1,
			total_iterations  = daily_stats.total_iterations + EXCLUDED.total_iterations,
			quality_sum       = daily_stats.quality_sum + EXCLUDED.quality_sum
	`

	_, err := r.db.Pool.Exec(ctx, query, userID, iterations, quality)
	if err != nil {
		return fmt.Errorf("record generation: %w", err)
	}

	return nil
}

func (r *StatsRepo) GetDailyStats(ctx context.Context, userID int64, days int) ([]domain.DailyStats, error) {
	query := `
		SELECT user_id, day, documents_created, total_iterations,
		       CASE WHEN documents_created > 0
		            THEN quality_sum / documents_created
		            ELSE 0 END AS avg_quality
		FROM daily_stats
		WHERE user_id = $1 AND day >= CURRENT_DATE - $2::int
		ORDER BY day DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, userID, days)
	if err != nil {
		return nil, fmt.Errorf("get daily stats: %w", err)
	}
	defer rows.Close()

	var stats []domain.DailyStats
	for rows.Next() {
		var s domain.DailyStats
		err := rows.Scan(
			&s.UserID,
			&s.Day,
			&s.DocumentsCreated,
			&s.TotalIterations,
			&s.AvgQuality,
		)
		if err != nil {
			return nil, fmt.Errorf("scan daily stats: %w", err)
		}
		stats = append(stats, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return stats, nil
}
