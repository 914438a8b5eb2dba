// Package opml reads feed subscriptions from OPML exports (Feedly, Inoreader)
// and watches the file for changes.
package opml

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
)

// Entry is one subscribed feed found in an OPML document.
type Entry struct {
	Name     string
	URL      string
	Category string
}

type document struct {
	Body struct {
		Outlines []outline `xml:"outline"`
	} `xml:"body"`
}

type outline struct {
	Text     string    `xml:"text,attr"`
	Title    string    `xml:"title,attr"`
	XMLURL   string    `xml:"xmlUrl,attr"`
	Outlines []outline `xml:"outline"`
}

// Parse returns every feed outline in document order. An outline without
// xmlUrl is a folder; its text becomes the category of the feeds below it.
func Parse(r io.Reader) ([]Entry, error) {
	var doc document
	dec := xml.NewDecoder(r)
	dec.Strict = false
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode opml: %w", err)
	}

	var entries []Entry
	for _, o := range doc.Body.Outlines {
		entries = walk(entries, o, "")
	}
	return entries, nil
}

func walk(entries []Entry, o outline, parentCategory string) []Entry {
	url := strings.TrimSpace(o.XMLURL)
	category := parentCategory
	if url != "" {
		entries = append(entries, Entry{Name: outlineName(o), URL: url, Category: parentCategory})
	} else if o.Text != "" {
		category = o.Text
	}
	for _, child := range o.Outlines {
		entries = walk(entries, child, category)
	}
	return entries
}

func outlineName(o outline) string {
	switch {
	case o.Title != "":
		return o.Title
	case o.Text != "":
		return o.Text
	default:
		return "Unknown"
	}
}

// ParseFile parses the OPML file at path. A missing file yields an error
// matching os.ErrNotExist.
func ParseFile(path string) ([]Entry, error) {
	f, err := os.Open(path) // #nosec G304 -- operator-configured path
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return Parse(f)
}
