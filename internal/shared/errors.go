package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Authentication errors
	ErrInvalidAuthorizationCode = fmt.Errorf("invalid github temporary code")
	ErrNotAuthenticated         = fmt.Errorf("not authenticated to github")
	ErrEmailRequired            = fmt.Errorf("email in github profile is required")
	ErrInvalidRefreshToken      = fmt.Errorf("invalid refresh token")
	ErrInvalidAccessToken       = fmt.Errorf("invalid access token")

	// Persistence errors
	ErrNotFound      = fmt.Errorf("not found")
	ErrAlreadyExists = fmt.Errorf("already exists")

	// Upstream catalog errors
	ErrUpstream      = fmt.Errorf("music catalog request failed")
	ErrTrackNotFound = fmt.Errorf("track not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
)
