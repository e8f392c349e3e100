package models

import "encoding/xml"

// NamespaceMeta is the default namespace of meta.xml.
const NamespaceMeta = "urn:xmind:xmap:xmlns:meta:2.0"

// Meta holds document-level metadata.
type Meta struct {
	XMLName xml.Name `xml:"urn:xmind:xmap:xmlns:meta:2.0 meta" json:"-"`
	Version string   `xml:"version,attr" json:"version"`
	Author  *Author  `xml:"Author,omitempty" json:"author,omitempty"`
	Create  Stamp    `xml:"Create" json:"create"`
	Creator Creator  `xml:"Creator" json:"creator"`
}

// Author identifies the person who wrote the workbook.
type Author struct {
	Name  string `xml:"Name" json:"name"`
	Email string `xml:"Email,omitempty" json:"email,omitempty"`
	Org   string `xml:"Org,omitempty" json:"org,omitempty"`
}

// Stamp holds an RFC 3339 timestamp.
type Stamp struct {
	Time string `xml:"Time" json:"time"`
}

// Creator identifies the producing software.
type Creator struct {
	Name    string `xml:"Name" json:"name"`
	Version string `xml:"Version" json:"version"`
}
