package parser

import (
	"strings"

	"github.com/ukaji3/xmind-go/pkg/xmind/models"
	"github.com/xuri/excelize/v2"
)

// Outline worksheet columns, 1-based.
const (
	colID = iota + 1
	colTitle
	colType
	colLabels
	colMarkers
	colHyperlink
	colNotes
)

// ReadOutlineFile reads every worksheet of an exported xlsx outline.
func ReadOutlineFile(path string) ([]models.SheetOutline, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var sheets []models.SheetOutline
	for _, name := range f.GetSheetList() {
		topics, err := ReadOutline(f, name)
		if err != nil {
			return nil, err
		}
		sheets = append(sheets, models.SheetOutline{Title: name, Topics: topics})
	}
	return sheets, nil
}

// ReadOutline reads the topics of one outline worksheet. The first row is
// the header; depth comes from the row outline level and parents are
// rebuilt from it.
func ReadOutline(f *excelize.File, sheetName string) ([]models.TopicOutline, error) {
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, err
	}

	var (
		result []models.TopicOutline
		stack  []string // ids of the current ancestors, by depth
	)
	for rowIdx, row := range rows {
		rowNum := rowIdx + 1 // 1-based row index
		if rowNum == 1 || len(row) < colID || row[colID-1] == "" {
			continue
		}

		level, err := f.GetRowOutlineLevel(sheetName, rowNum)
		if err != nil {
			return nil, err
		}
		depth := int(level)
		if depth > len(stack) {
			depth = len(stack)
		}
		stack = stack[:depth]

		topic := models.TopicOutline{
			ID:      column(row, colID),
			Title:   column(row, colTitle),
			Depth:   depth,
			Type:    column(row, colType),
			Labels:  splitList(column(row, colLabels)),
			Markers: splitList(column(row, colMarkers)),
			Notes:   column(row, colNotes),
		}
		if depth > 0 {
			topic.ParentID = stack[depth-1]
		}

		cellName, _ := excelize.CoordinatesToCellName(colHyperlink, rowNum)
		hasLink, target, err := f.GetCellHyperLink(sheetName, cellName)
		if err == nil && hasLink && target != "" {
			topic.Hyperlink = target
		} else {
			topic.Hyperlink = column(row, colHyperlink)
		}

		result = append(result, topic)
		stack = append(stack, topic.ID)
	}

	return result, nil
}

func column(row []string, col int) string {
	if col > len(row) {
		return ""
	}
	return row[col-1]
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}
