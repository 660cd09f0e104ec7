package llm

import (
	"context"
	"errors"
)

var (
	ErrAuthFailed    = errors.New("authentication failed")
	ErrRequestFailed = errors.New("request failed")
	ErrEmptyResponse = errors.New("empty response")
	ErrRateLimit     = errors.New("rate limit exceeded")
)

// Params передаются как есть в API провайдера
type Params struct {
	Temperature float64
	MaxTokens   int
}

type Info struct {
	Provider string
	Model    string
}

// Provider - единый интерфейс генерации текста. Один вызов = один полный ответ,
// без ретраев и стриминга.
type Provider interface {
	Generate(ctx context.Context, prompt string, p Params) (string, error)
	Describe() Info
}

// ProviderError сохраняет имя упавшего провайдера
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string { return e.Provider + ": " + e.Err.Error() }
func (e *ProviderError) Unwrap() error { return e.Err }

func WrapError(provider string, err error) error {
	if err == nil {
		return nil
	}
	return &ProviderError{Provider: provider, Err: err}
}
