package contact

import "errors"

var (
	ErrNotFound            = errors.New("contact not found")
	ErrImportNotFound      = errors.New("import not found")
	ErrLogNotFound         = errors.New("contact log not found")
	ErrRequirementNotFound = errors.New("requirement not found")
)
