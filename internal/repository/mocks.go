package repository

import (
	"context"
	"sync"
	"time"

	"github.com/kitbuilder587/docsmith/internal/domain"
)

type MockUserRepository struct {
	mu    sync.RWMutex
	users map[int64]*domain.User // key: TelegramID
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users: make(map[int64]*domain.User),
	}
}

func (m *MockUserRepository) GetOrCreate(ctx context.Context, telegramID int64, username string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if user, exists := m.users[telegramID]; exists {
		if user.Username != username {
			user.Username = username
		}
		return user, nil
	}

	// те же значения, что и дефолты колонок в схеме
	user := &domain.User{
		ID:            telegramID,
		TelegramID:    telegramID,
		Username:      username,
		DefaultType:   domain.DocumentReport,
		DefaultTone:   domain.ToneFormal,
		DefaultPreset: domain.PresetStandard,
		CreatedAt:     time.Now(),
	}
	m.users[telegramID] = user
	return user, nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if user, exists := m.users[id]; exists {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) UpdatePreferences(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, exists := m.users[user.ID]
	if !exists {
		return domain.ErrUserNotFound
	}

	stored.DefaultType = user.DefaultType
	stored.DefaultTone = user.DefaultTone
	stored.DefaultProvider = user.DefaultProvider
	stored.DefaultPreset = user.DefaultPreset
	return nil
}

type MockDocumentRepository struct {
	mu         sync.RWMutex
	documents  map[int64]*domain.Document // key: Document ID
	iterations map[int64][]domain.IterationRecord
	nextID     int64
}

func NewMockDocumentRepository() *MockDocumentRepository {
	return &MockDocumentRepository{
		documents:  make(map[int64]*domain.Document),
		iterations: make(map[int64][]domain.IterationRecord),
		nextID:     1,
	}
}

func (m *MockDocumentRepository) Create(ctx context.Context, doc *domain.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, d := range m.documents {
		if d.RunID == doc.RunID {
			return domain.ErrDuplicateDocument
		}
	}

	doc.ID = m.nextID
	m.nextID++
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now()
	}
	m.documents[doc.ID] = doc
	return nil
}

func (m *MockDocumentRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]domain.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []domain.Document
	for _, d := range m.documents {
		if d.UserID == userID {
			result = append(result, *d)
		}
	}

	for i := 0; i < len(result)-1; i++ {
		for j := i + 1; j < len(result); j++ {
			if result[i].CreatedAt.Before(result[j].CreatedAt) {
				result[i], result[j] = result[j], result[i]
			}
		}
	}

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}

	return result, nil
}

func (m *MockDocumentRepository) CountByUser(ctx context.Context, userID int64) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, d := range m.documents {
		if d.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (m *MockDocumentRepository) SaveIterations(ctx context.Context, documentID int64, records []domain.IterationRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.documents[documentID]; !exists {
		return domain.ErrDocumentNotFound
	}

	seen := make(map[int]bool)
	for _, rec := range m.iterations[documentID] {
		seen[rec.Iteration] = true
	}

	for _, rec := range records {
		if seen[rec.Iteration] {
			continue
		}
		m.iterations[documentID] = append(m.iterations[documentID], rec)
		seen[rec.Iteration] = true
	}

	return nil
}

func (m *MockDocumentRepository) GetIterations(ctx context.Context, documentID int64) ([]domain.IterationRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := make([]domain.IterationRecord, len(m.iterations[documentID]))
	copy(records, m.iterations[documentID])

	for i := 0; i < len(records)-1; i++ {
		for j := i + 1; j < len(records); j++ {
			if records[i].Iteration > records[j].Iteration {
				records[i], records[j] = records[j], records[i]
			}
		}
	}

	return records, nil
}

type statsKey struct {
	userID int64
	day    string // YYYY-MM-DD
}

type MockStatsRepository struct {
	mu         sync.RWMutex
	days       map[statsKey]*domain.DailyStats
	qualitySum map[statsKey]float64
}

func NewMockStatsRepository() *MockStatsRepository {
	return &MockStatsRepository{
		days:       make(map[statsKey]*domain.DailyStats),
		qualitySum: make(map[statsKey]float64),
	}
}

func (m *MockStatsRepository) RecordGeneration(ctx context.Context, userID int64, iterations int, quality float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	key := statsKey{userID: userID, day: day.Format("2006-01-02")}

	stats, exists := m.days[key]
	if !exists {
		stats = &domain.DailyStats{UserID: userID, Day: day}
		m.days[key] = stats
	}

	stats.DocumentsCreated++
	stats.TotalIterations += iterations
	m.qualitySum[key] += quality
	stats.AvgQuality = m.qualitySum[key] / float64(stats.DocumentsCreated)

	return nil
}

func (m *MockStatsRepository) GetDailyStats(ctx context.Context, userID int64, days int) ([]domain.DailyStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	now := time.Now()
	cutoff := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, -days)

	var result []domain.DailyStats
	for _, s := range m.days {
		if s.UserID == userID && !s.Day.Before(cutoff) {
			result = append(result, *s)
		}
	}

	for i := 0; i < len(result)-1; i++ {
		for j := i + 1; j < len(result); j++ {
			if result[i].Day.Before(result[j].Day) {
				result[i], result[j] = result[j], result[i]
			}
		}
	}

	return result, nil
}
