package xmind

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

// OutlineHeader is the first row of every outline worksheet.
var OutlineHeader = []string{"ID", "Title", "Type", "Labels", "Markers", "Hyperlink", "Notes"}

const (
	maxSheetNameLen = 31
	maxOutlineLevel = 7
	outlineListSep  = ", "
)

// renderOutline exports every sheet as a worksheet listing its topics
// depth-first, one per row, grouped by row outline level.
func (w *Workbook) renderOutline() ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	styles := make(map[int]int)
	indent := func(depth int) (int, error) {
		if id, ok := styles[depth]; ok {
			return id, nil
		}
		id, err := f.NewStyle(&excelize.Style{Alignment: &excelize.Alignment{Indent: depth}})
		if err != nil {
			return 0, err
		}
		styles[depth] = id
		return id, nil
	}

	used := make(map[string]bool)
	for i, s := range w.sheets {
		name := outlineSheetName(s.Title(), i, used)
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
				return nil, err
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}

		header := make([]interface{}, len(OutlineHeader))
		for c, h := range OutlineHeader {
			header[c] = h
		}
		if err := f.SetSheetRow(name, "A1", &header); err != nil {
			return nil, err
		}

		row := 2
		var werr error
		s.RootTopic().walk(0, func(t *Topic, depth int) {
			if werr != nil {
				return
			}
			werr = writeOutlineRow(f, name, row, t, depth, indent)
			row++
		})
		if werr != nil {
			return nil, werr
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeOutlineRow(f *excelize.File, sheet string, row int, t *Topic, depth int, indent func(int) (int, error)) error {
	cell := func(col int) string {
		name, _ := excelize.CoordinatesToCellName(col, row)
		return name
	}

	values := []interface{}{
		t.ID(),
		t.Title(),
		string(t.Type()),
		strings.Join(t.Labels(), outlineListSep),
		strings.Join(t.Markers(), outlineListSep),
		t.Hyperlink(),
		strings.TrimSuffix(t.PlainNotes(), "\n"),
	}
	if err := f.SetSheetRow(sheet, cell(1), &values); err != nil {
		return err
	}

	if depth > 0 {
		style, err := indent(depth)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell(2), cell(2), style); err != nil {
			return err
		}
		level := min(depth, maxOutlineLevel)
		if err := f.SetRowOutlineLevel(sheet, row, uint8(level)); err != nil {
			return err
		}
	}

	if link := t.Hyperlink(); link != "" {
		if err := f.SetCellHyperLink(sheet, cell(6), link, "External"); err != nil {
			return err
		}
	}
	return nil
}

// outlineSheetName turns a sheet title into a unique worksheet name.
func outlineSheetName(title string, index int, used map[string]bool) string {
	name := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '_'
		}
		return r
	}, strings.TrimSpace(title))
	name = strings.Trim(name, "'")
	if name == "" {
		name = fmt.Sprintf("Sheet %d", index+1)
	}
	name = truncateRunes(name, maxSheetNameLen)

	base := name
	for n := 2; used[strings.ToLower(name)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		name = truncateRunes(base, maxSheetNameLen-len(suffix)) + suffix
	}
	used[strings.ToLower(name)] = true
	return name
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
