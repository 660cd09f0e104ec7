package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/kitbuilder587/docsmith/internal/domain"
)

type DocumentRepo struct {
	db *DB
}

func NewDocumentRepo(db *DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

func (r *DocumentRepo) Create(ctx context.Context, doc *domain.Document) error {
	query := `
		INSERT INTO documents (run_id, user_id, doc_type, tone, provider, model,
		                       requirements, content, quality_score, iterations,
		                       exit_reason, total_time_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		doc.RunID,
		doc.UserID,
		doc.Type.String(),
		doc.Tone.String(),
		doc.Provider,
		doc.Model,
		doc.Requirements,
		doc.Content,
		doc.QualityScore,
		doc.Iterations,
		doc.ExitReason,
		doc.TotalTime.Milliseconds(),
	).Scan(&doc.ID, &doc.CreatedAt)

	if err != nil {
		if isDuplicateError(err) {
			return domain.ErrDuplicateDocument
		}
		return fmt.Errorf("create document: %w", err)
	}

	return nil
}

func (r *DocumentRepo) ListByUser(ctx context.Context, userID int64, limit int) ([]domain.Document, error) {
	query := `
		SELECT id, run_id, user_id, doc_type, tone, provider, model,
		       requirements, content, quality_score, iterations,
		       exit_reason, total_time_ms, created_at
		FROM documents
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.Pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list documents by user: %w", err)
	}
	defer rows.Close()

	return scanDocuments(rows)
}

func (r *DocumentRepo) CountByUser(ctx context.Context, userID int64) (int, error) {
	query := `SELECT COUNT(*) FROM documents WHERE user_id = $1`

	var count int
	err := r.db.Pool.QueryRow(ctx, query, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count documents by user: %w", err)
	}

	return count, nil
}

func (r *DocumentRepo) SaveIterations(ctx context.Context, documentID int64, records []domain.IterationRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO iterations (document_id, iteration, score, previous_score,
		                        critique, refine_skipped, rolled_back, reason,
		                        similarity, words_added, words_removed, duration_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (document_id, iteration) DO NOTHING
	`

	for _, rec := range records {
		_, err := tx.Exec(ctx, query,
			documentID,
			rec.Iteration,
			rec.Score,
			rec.PreviousScore,
			rec.Critique,
			rec.RefineSkipped,
			rec.RolledBack,
			rec.Reason,
			rec.Similarity,
			rec.WordsAdded,
			rec.WordsRemoved,
			rec.Duration.Milliseconds(),
		)
		if err != nil {
			return fmt.Errorf("insert iteration: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

func (r *DocumentRepo) GetIterations(ctx context.Context, documentID int64) ([]domain.IterationRecord, error) {
	query := `
		SELECT iteration, score, previous_score, critique, refine_skipped,
		       rolled_back, reason, similarity, words_added, words_removed, duration_ms
		FROM iterations
		WHERE document_id = $1
		ORDER BY iteration
	`

	rows, err := r.db.Pool.Query(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("get iterations: %w", err)
	}
	defer rows.Close()

	var records []domain.IterationRecord
	for rows.Next() {
		var rec domain.IterationRecord
		var durationMs int64
		err := rows.Scan(
			&rec.Iteration,
			&rec.Score,
			&rec.PreviousScore,
			&rec.Critique,
			&rec.RefineSkipped,
			&rec.RolledBack,
			&rec.Reason,
			&rec.Similarity,
			&rec.WordsAdded,
			&rec.WordsRemoved,
			&durationMs,
		)
		if err != nil {
			return nil, fmt.Errorf("scan iteration: %w", err)
		}
		rec.Duration = time.Duration(durationMs) * time.Millisecond
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return records, nil
}

func scanDocuments(rows pgx.Rows) ([]domain.Document, error) {
	var docs []domain.Document
	for rows.Next() {
		var d domain.Document
		var docType, tone string
		var totalMs int64
		err := rows.Scan(
			&d.ID,
			&d.RunID,
			&d.UserID,
			&docType,
			&tone,
			&d.Provider,
			&d.Model,
			&d.Requirements,
			&d.Content,
			&d.QualityScore,
			&d.Iterations,
			&d.ExitReason,
			&totalMs,
			&d.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		d.Type = domain.DocumentType(docType)
		d.Tone = domain.Tone(tone)
		d.TotalTime = time.Duration(totalMs) * time.Millisecond
		docs = append(docs, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return docs, nil
}

// isDuplicateError checks if the error is a PostgreSQL unique constraint violation
func isDuplicateError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
