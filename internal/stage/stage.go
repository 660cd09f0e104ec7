package stage

import (
	"context"
	"errors"

	"github.com/kitbuilder587/docsmith/internal/domain"
)

var (
	ErrNoRequest  = errors.New("no request in context")
	ErrNoDraft    = errors.New("no draft in context")
	ErrNoCritique = errors.New("no critique in context")
)

// Ключи общего контекста. Оценка и замечания общие, последний этап побеждает;
// контент каждый этап кладет под свой ключ.
const (
	KeyRequest     = "request"
	KeyDraft       = "draft"
	KeyCritique    = "critique"
	KeyScore       = "score"
	KeyIssues      = "issues"
	KeySuggestions = "suggestions"
)

// Context - общие данные пайплайна, тянутся от этапа к этапу целиком
type Context map[string]any

// Stage - один шаг пайплайна. Читает контекст, возвращает неизменяемый результат.
type Stage interface {
	Name() string
	// OutputKey - под каким ключом контент этапа попадет в контекст
	OutputKey() string
	Run(ctx context.Context, sc Context) (*domain.StageResult, error)
}

// Request достает запрос из контекста
func Request(sc Context) (*domain.DocumentRequest, bool) {
	req, ok := sc[KeyRequest].(*domain.DocumentRequest)
	return req, ok
}

// Score достает текущую оценку, ноль если ее еще нет
func Score(sc Context) float64 {
	s, _ := sc[KeyScore].(float64)
	return s
}

// Draft достает текущий черновик
func Draft(sc Context) (string, bool) {
	d, ok := sc[KeyDraft].(string)
	return d, ok && d != ""
}

// Critique достает текст последней рецензии
func Critique(sc Context) (string, bool) {
	c, ok := sc[KeyCritique].(string)
	return c, ok && c != ""
}

// Issues достает замечания последней рецензии
func Issues(sc Context) []string {
	is, _ := sc[KeyIssues].([]string)
	return is
}

// Suggestions достает предложения последней рецензии
func Suggestions(sc Context) []string {
	sg, _ := sc[KeySuggestions].([]string)
	return sg
}
