package endpoint

import (
	"fmt"
	"strings"
)

// ProductionMode is the only mode value that enables the production URL variables.
const ProductionMode = "production"

// Profile is one of the mutually exclusive resolution strategies.
type Profile struct {
	Name        string
	Description string
	// ModeKey holds the variable that carries the execution mode.
	ModeKey string
	// URLKeys are tried in order when the mode is production.
	URLKeys []string
	// ProductionFallback is used in production when no URL key is set.
	// Empty means one of URLKeys is required.
	ProductionFallback string
	// Default is returned for every mode other than production.
	Default string
}

var (
	// ReactProfile reads NODE_ENV and prefers REACT_APP_API_URL over VITE_API_URL.
	ReactProfile = Profile{
		Name:               "react",
		Description:        "NODE_ENV selects production; REACT_APP_API_URL then VITE_API_URL, localhost otherwise",
		ModeKey:            "NODE_ENV",
		URLKeys:            []string{"REACT_APP_API_URL", "VITE_API_URL"},
		ProductionFallback: "http://localhost:8000",
		Default:            "http://localhost:8000",
	}

	// VercelProfile reads VITE_VERCEL_ENV and requires VITE_API_URL in production.
	VercelProfile = Profile{
		Name:        "vercel",
		Description: "VITE_VERCEL_ENV selects production; VITE_API_URL is required there, localhost/api otherwise",
		ModeKey:     "VITE_VERCEL_ENV",
		URLKeys:     []string{"VITE_API_URL"},
		Default:     "http://localhost:8000/api",
	}
)

var profiles = []Profile{ReactProfile, VercelProfile}

// Profiles returns every known profile.
func Profiles() []Profile {
	out := make([]Profile, len(profiles))
	copy(out, profiles)
	return out
}

// LookupProfile finds a profile by name, case-insensitively.
// An empty name selects the profile compiled in as the default.
func LookupProfile(name string) (Profile, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultProfile(), nil
	}
	for _, p := range profiles {
		if strings.EqualFold(p.Name, name) {
			return p, nil
		}
	}
	return Profile{}, fmt.Errorf("%w %q", ErrUnknownProfile, name)
}

// DefaultProfile returns the profile selected at build time.
func DefaultProfile() Profile {
	p, err := LookupProfile(buildProfile)
	if err != nil {
		return ReactProfile
	}
	return p
}

// Mode extracts the execution mode from env.
func (p Profile) Mode(env Env) string {
	mode, _ := env.Lookup(p.ModeKey)
	return mode
}

// ResolveEnv reads the mode from env and resolves against the same env.
func (p Profile) ResolveEnv(env Env) (ResolvedEndpoint, error) {
	return p.Resolve(p.Mode(env), env)
}

// Resolve picks the base URL for mode. Outside production the profile's
// literal is returned whatever the URL variables hold.
func (p Profile) Resolve(mode string, env Env) (ResolvedEndpoint, error) {
	resolved := ResolvedEndpoint{
		Profile: p.Name,
		Mode:    mode,
		Source:  SourceDefault,
		BaseURL: p.Default,
	}

	if mode != ProductionMode {
		return resolved, nil
	}

	for _, key := range p.URLKeys {
		value, ok := env.Lookup(key)
		if !ok {
			continue
		}
		if err := validateBaseURL(value); err != nil {
			return ResolvedEndpoint{}, fmt.Errorf("%s: %w", key, err)
		}
		resolved.BaseURL = value
		resolved.Source = key
		return resolved, nil
	}

	if p.ProductionFallback == "" {
		return ResolvedEndpoint{}, fmt.Errorf("%w: set %s", ErrMissingBaseURL, strings.Join(p.URLKeys, " or "))
	}
	resolved.BaseURL = p.ProductionFallback
	return resolved, nil
}
