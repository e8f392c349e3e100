package parser

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"

	"github.com/ukaji3/xmind-go/pkg/xmind/models"
)

// ParseContent decodes content.xml into one outline per sheet. Topics are
// listed depth-first in document order, each sheet's root topic first.
func ParseContent(data []byte) ([]models.SheetOutline, error) {
	var sheets []models.SheetOutline

	decoder := xml.NewDecoder(bytes.NewReader(data))
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return sheets, err
		}

		if se, ok := token.(xml.StartElement); ok && se.Name.Local == "sheet" {
			sheet, err := parseSheet(decoder, se)
			if err != nil {
				return sheets, err
			}
			sheets = append(sheets, sheet)
		}
	}

	return sheets, nil
}

func parseSheet(decoder *xml.Decoder, start xml.StartElement) (models.SheetOutline, error) {
	sheet := models.SheetOutline{ID: attrValue(start, "id")}
	err := eachChild(decoder, func(se xml.StartElement) error {
		switch se.Name.Local {
		case "title":
			text, err := readElementText(decoder)
			sheet.Title = text
			return err
		case "topic":
			topics, err := parseTopic(decoder, se, 0, "", "")
			sheet.Topics = append(sheet.Topics, topics...)
			return err
		}
		return decoder.Skip()
	})
	return sheet, err
}

// parseTopic returns the topic followed by all of its descendants.
func parseTopic(decoder *xml.Decoder, start xml.StartElement, depth int, parentID, typ string) ([]models.TopicOutline, error) {
	topic := models.TopicOutline{
		ID:        attrValue(start, "id"),
		Depth:     depth,
		Type:      typ,
		ParentID:  parentID,
		Folded:    attrValue(start, "branch") == "folded",
		Hyperlink: attrValue(start, "href"),
	}
	var descendants []models.TopicOutline

	err := eachChild(decoder, func(se xml.StartElement) error {
		switch se.Name.Local {
		case "title":
			text, err := readElementText(decoder)
			topic.Title = text
			return err
		case "labels":
			return eachChild(decoder, func(label xml.StartElement) error {
				if label.Name.Local != "label" {
					return decoder.Skip()
				}
				text, err := readElementText(decoder)
				topic.Labels = append(topic.Labels, text)
				return err
			})
		case "marker-refs":
			return eachChild(decoder, func(ref xml.StartElement) error {
				if id := attrValue(ref, "marker-id"); ref.Name.Local == "marker-ref" && id != "" {
					topic.Markers = append(topic.Markers, id)
				}
				return decoder.Skip()
			})
		case "notes":
			return eachChild(decoder, func(view xml.StartElement) error {
				if view.Name.Local != "plain" {
					return decoder.Skip()
				}
				text, err := readElementText(decoder)
				topic.Notes = text
				return err
			})
		case "img":
			if src := attrValue(se, "src"); src != "" {
				topic.Images = append(topic.Images, src)
			}
			return decoder.Skip()
		case "children":
			return eachChild(decoder, func(group xml.StartElement) error {
				if group.Name.Local != "topics" {
					return decoder.Skip()
				}
				groupType := attrValue(group, "type")
				return eachChild(decoder, func(child xml.StartElement) error {
					if child.Name.Local != "topic" {
						return decoder.Skip()
					}
					sub, err := parseTopic(decoder, child, depth+1, topic.ID, groupType)
					descendants = append(descendants, sub...)
					return err
				})
			})
		}
		return decoder.Skip()
	})

	return append([]models.TopicOutline{topic}, descendants...), err
}

// eachChild calls fn for every child element of the element whose start
// tag was just read. fn must consume the child through its end tag.
func eachChild(decoder *xml.Decoder, fn func(xml.StartElement) error) error {
	for {
		token, err := decoder.Token()
		if err != nil {
			return err
		}
		switch t := token.(type) {
		case xml.StartElement:
			if err := fn(t); err != nil {
				return err
			}
		case xml.EndElement:
			return nil
		}
	}
}

// readElementText returns the character data of the element whose start tag
// was just read, including that of nested elements.
func readElementText(decoder *xml.Decoder) (string, error) {
	var sb strings.Builder
	depth := 1
	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			return sb.String(), err
		}
		switch t := token.(type) {
		case xml.CharData:
			sb.Write(t)
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		}
	}
	return sb.String(), nil
}

func attrValue(se xml.StartElement, local string) string {
	for _, attr := range se.Attr {
		if attr.Name.Local == local {
			return attr.Value
		}
	}
	return ""
}
