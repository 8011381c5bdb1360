package services

import "errors"

// Failure taxonomy shared by the provider services. Controllers map these to
// HTTP status codes with errors.Is; row lookups rely on gorm.ErrRecordNotFound.
var (
	// ErrGenerationFormat means the AI provider answered, but not with the
	// structure we asked for. Callers must fail loudly, never substitute
	// placeholder content.
	ErrGenerationFormat = errors.New("generation output malformed")

	// ErrInvalidMedia means the uploaded bytes are not decodable as the
	// declared media kind. No external call has been made yet.
	ErrInvalidMedia = errors.New("invalid media input")

	// ErrProvider covers network or remote failures from either external
	// provider, including results that violate the storage format invariants.
	ErrProvider = errors.New("provider request failed")
)
