package xmind

import "github.com/ukaji3/xmind-go/pkg/xmind/dom"

// Sheet is one page of a workbook. It owns exactly one root topic.
type Sheet struct {
	wb   *Workbook
	node dom.Node
	id   string
	root *Topic
}

// ID returns the sheet identifier.
func (s *Sheet) ID() string { return s.id }

// Title returns the sheet title.
func (s *Sheet) Title() string {
	if t := s.node.Child(tagTitle); t != nil {
		return t.Text()
	}
	return ""
}

// SetTitle sets the sheet title.
func (s *Sheet) SetTitle(title string) {
	s.node.EnsureChild(tagTitle).SetText(title)
}

// RootTopic returns the central topic of the sheet.
func (s *Sheet) RootTopic() *Topic { return s.root }

// Workbook returns the workbook the sheet belongs to.
func (s *Sheet) Workbook() *Workbook { return s.wb }

// String renders the sheet element.
func (s *Sheet) String() string { return dom.String(s.node) }
