package domain

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInternal     = errors.New("internal error")
)

var (
	ErrEmptyRequirements   = errors.New("empty requirements")
	ErrRequirementsTooLong = errors.New("requirements too long")
	ErrInvalidDocumentType = errors.New("invalid document type")
	ErrInvalidTone         = errors.New("invalid tone")
)

var (
	ErrInvalidPresetType     = errors.New("invalid preset type")
	ErrInvalidMaxIterations  = errors.New("max iterations must be between 1 and 20")
	ErrInvalidThreshold      = errors.New("quality threshold must be between 0 and 1")
	ErrInvalidTimeoutSeconds = errors.New("timeout seconds must be at least 1")
)

var (
	ErrUserNotFound = errors.New("user not found")
)

var (
	ErrDocumentNotFound  = errors.New("document not found")
	ErrNoDocuments       = errors.New("no documents yet")
	ErrDuplicateDocument = errors.New("document already stored")
)
