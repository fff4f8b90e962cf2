package endpoint

import "errors"

var (
	// ErrMissingBaseURL is returned when a profile requires a production URL and none of its variables is set.
	ErrMissingBaseURL = errors.New("production base URL is not set")
	// ErrInvalidBaseURL is returned when the selected value is not an absolute http(s) URL.
	ErrInvalidBaseURL = errors.New("base URL must be an absolute http or https URL")
	// ErrUnknownProfile is returned when a profile name does not match any known profile.
	ErrUnknownProfile = errors.New("unknown profile")
)
