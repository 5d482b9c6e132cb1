package types

// CodeArtifact holds the three source fragments that make up one version's code.
type CodeArtifact struct {
	HTML string `json:"html"`
	CSS  string `json:"css"`
	JS   string `json:"js"`
}

// IsEmpty reports whether every fragment is blank.
func (c CodeArtifact) IsEmpty() bool {
	return c.HTML == "" && c.CSS == "" && c.JS == ""
}
