package domain

import "time"

type User struct {
	ID              int64
	TelegramID      int64
	Username        string
	DefaultType     DocumentType
	DefaultTone     Tone
	DefaultProvider string // пусто = из конфига
	DefaultPreset   PresetType
	CreatedAt       time.Time
}

// DailyStats - дневная статистика пользователя
type DailyStats struct {
	UserID           int64
	Day              time.Time
	DocumentsCreated int
	TotalIterations  int
	AvgQuality       float64
}
