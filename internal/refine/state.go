package refine

import (
	"time"

	"github.com/kitbuilder587/docsmith/internal/domain"
)

type Phase string

const (
	PhaseInit      Phase = "init"
	PhaseIterating Phase = "iterating"
	PhaseExited    Phase = "exited"
)

// State - состояние одного прогона цикла. Принадлежит ровно одному вызову
// Run и между горутинами не делится, поэтому без локов.
//
// Инварианты: BestScore >= CurrentScore и не убывает;
// len(ScoreHistory) равен числу завершенных итераций, включая откаченные.
type State struct {
	Phase        Phase
	Iteration    int
	CurrentDraft string
	CurrentScore float64
	BestDraft    string
	BestScore    float64
	ScoreHistory []float64
	History      []domain.IterationRecord
	LastCritique string
	StartTime    time.Time
	ExitReason   string
}

func newState(start time.Time) *State {
	return &State{
		Phase:     PhaseInit,
		StartTime: start,
	}
}

func (s *State) Elapsed(now time.Time) time.Duration {
	return now.Sub(s.StartTime)
}
