package domain

import (
	"strings"
	"time"
)

const MaxRequirementsLength = 4000

type DocumentType string

const (
	DocumentReport   DocumentType = "report"
	DocumentEmail    DocumentType = "email"
	DocumentMemo     DocumentType = "memo"
	DocumentProposal DocumentType = "proposal"
	DocumentSummary  DocumentType = "summary"
)

func (t DocumentType) IsValid() bool {
	switch t {
	case DocumentReport, DocumentEmail, DocumentMemo, DocumentProposal, DocumentSummary:
		return true
	}
	return false
}

func (t DocumentType) String() string { return string(t) }

type Tone string

const (
	ToneFormal      Tone = "formal"
	ToneCasual      Tone = "casual"
	TonePersuasive  Tone = "persuasive"
	ToneInformative Tone = "informative"
)

func (t Tone) IsValid() bool {
	switch t {
	case ToneFormal, ToneCasual, TonePersuasive, ToneInformative:
		return true
	}
	return false
}

func (t Tone) String() string { return string(t) }

// DocumentRequest - запрос на генерацию документа
type DocumentRequest struct {
	UserID            int64
	Type              DocumentType
	Requirements      string
	Tone              Tone
	Recipient         string
	Subject           string
	AdditionalContext string
	Preset            Preset
	Provider          string // пусто = провайдер по умолчанию
	Model             string // пусто = модель провайдера по умолчанию
}

func (r *DocumentRequest) Validate() error {
	if !r.Type.IsValid() {
		return ErrInvalidDocumentType
	}
	if !r.Tone.IsValid() {
		return ErrInvalidTone
	}
	if strings.TrimSpace(r.Requirements) == "" {
		return ErrEmptyRequirements
	}
	if len(r.Requirements) > MaxRequirementsLength {
		return ErrRequirementsTooLong
	}
	return r.Preset.Validate()
}

func (r *DocumentRequest) Sanitize() {
	r.Requirements = strings.TrimSpace(r.Requirements)
	if len(r.Requirements) > MaxRequirementsLength {
		r.Requirements = r.Requirements[:MaxRequirementsLength]
	}
	r.Recipient = strings.TrimSpace(r.Recipient)
	r.Subject = strings.TrimSpace(r.Subject)
}

// Document - сохраненный документ
type Document struct {
	ID           int64
	RunID        string
	UserID       int64
	Type         DocumentType
	Tone         Tone
	Provider     string
	Model        string
	Requirements string
	Content      string
	QualityScore float64
	Iterations   int
	ExitReason   string
	TotalTime    time.Duration
	CreatedAt    time.Time
}
