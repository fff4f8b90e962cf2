package endpoint

// SourceDefault marks a resolution that used the profile's literal URL.
const SourceDefault = "default"

// ResolvedEndpoint is the outcome of a resolution. BaseURL is never empty.
type ResolvedEndpoint struct {
	BaseURL string `json:"baseUrl"`
	Profile string `json:"profile"`
	Mode    string `json:"mode"`
	Source  string `json:"source"`
}
