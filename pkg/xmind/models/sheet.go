package models

// SheetOutline represents one sheet of a workbook as a flat topic outline.
type SheetOutline struct {
	// ID is the sheet identifier.
	ID string `json:"id"`
	// Title is the sheet title.
	Title string `json:"title,omitempty"`
	// Topics lists every topic in depth-first document order; the root topic comes first.
	Topics []TopicOutline `json:"topics"`
}
