package types

// Template describes an installed template. Identity is Name, the basename
// of Path.
type Template struct {
	Name        string   `json:"name"`
	Path        string   `json:"path"`
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description"`
	Exclude     []string `json:"exclude,omitempty"`
}
