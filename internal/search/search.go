package search

import (
	"context"
	"errors"
)

var (
	ErrUnauthorized   = errors.New("invalid API key")
	ErrRateLimit      = errors.New("rate limit exceeded")
	ErrInvalidRequest = errors.New("invalid request parameters")
	ErrSearchFailed   = errors.New("search request failed")
	ErrEmptyResults   = errors.New("no results found")
)

// Client - внешний веб-поиск. Обогащает контекст генерации фактурой,
// сбой поиска генерацию не останавливает.
type Client interface {
	Search(ctx context.Context, req Request) (*Response, error)
}

type Request struct {
	Query      string
	MaxResults int
	Sites      []string // ограничить выдачу перечисленными доменами
	TimeRange  string   // day, week, month, year
}

type Response struct {
	Query      string
	Results    []Result
	SearchTime float64
}

type Result struct {
	Title   string
	URL     string
	Snippet string
	Source  string
}
