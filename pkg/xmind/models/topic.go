package models

// TopicOutline represents a topic flattened out of the tree.
type TopicOutline struct {
	// ID is the topic identifier.
	ID string `json:"id"`
	// Title is the topic title.
	Title string `json:"title,omitempty"`
	// Depth is 0 for the root topic.
	Depth int `json:"depth"`
	// Type is the child group the topic belongs to ("attached", "detached", ...); empty for the root.
	Type string `json:"type,omitempty"`
	// ParentID is the identifier of the parent topic; empty for the root.
	ParentID string `json:"parent_id,omitempty"`
	// Folded reports whether the branch is collapsed.
	Folded bool `json:"folded,omitempty"`
	// Hyperlink is the topic link target.
	Hyperlink string `json:"hyperlink,omitempty"`
	// Labels are the topic labels.
	Labels []string `json:"labels,omitempty"`
	// Markers are the marker ids attached to the topic.
	Markers []string `json:"markers,omitempty"`
	// Notes is the plain-text notes view.
	Notes string `json:"notes,omitempty"`
	// Images are the attachment paths referenced by the topic.
	Images []string `json:"images,omitempty"`
}
