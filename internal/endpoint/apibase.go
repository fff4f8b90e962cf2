package endpoint

import "sync"

// APIBaseURL resolves the build profile against the process environment the
// first time it is called and returns the same result afterwards.
var APIBaseURL = sync.OnceValues(func() (string, error) {
	resolved, err := DefaultProfile().ResolveEnv(FromOS())
	if err != nil {
		return "", err
	}
	return resolved.BaseURL, nil
})
