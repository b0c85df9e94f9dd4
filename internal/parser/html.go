package parser

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// HTMLPart is a piece of a data cell: plain text or a <code> element.
type HTMLPart struct {
	Text string
	Code bool
}

// HTMLCell is one <th> or <td>.
type HTMLCell struct {
	Header bool
	Parts  []HTMLPart
}

// HTMLRow is one <tr>. RowSpan is the rowspan of the row's first <td>, or 0.
type HTMLRow struct {
	Cells   []HTMLCell
	RowSpan int
}

// ParseHTMLTable reads the rows of the hand-written HTML tables embedded in
// custom conversion blocks. Header cells keep only their text; data cells
// may contain text and <code> elements and nothing else.
func ParseHTMLTable(raw string) ([]HTMLRow, error) {
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var rows []HTMLRow
	var walkErr error
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if walkErr != nil {
			return
		}
		if n.Type == html.ElementNode && n.Data == "tr" {
			row, err := readRow(n)
			if err != nil {
				walkErr = err
				return
			}
			rows = append(rows, row)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	if walkErr != nil {
		return nil, walkErr
	}
	return rows, nil
}

func readRow(tr *html.Node) (HTMLRow, error) {
	var row HTMLRow
	seenTD := false
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.Data {
		case "th":
			row.Cells = append(row.Cells, HTMLCell{Header: true, Parts: []HTMLPart{{Text: textContent(c)}}})
		case "td":
			if !seenTD {
				seenTD = true
				if v, ok := attr(c, "rowspan"); ok {
					n, err := strconv.Atoi(v)
					if err != nil {
						return row, fmt.Errorf("invalid rowspan %q", v)
					}
					row.RowSpan = n
				}
			}
			cell, err := readDataCell(c)
			if err != nil {
				return row, err
			}
			row.Cells = append(row.Cells, cell)
		default:
			return row, fmt.Errorf("unexpected element <%s> in table row", c.Data)
		}
	}
	return row, nil
}

func readDataCell(td *html.Node) (HTMLCell, error) {
	var cell HTMLCell
	for c := td.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case c.Type == html.TextNode:
			if strings.TrimSpace(c.Data) == "" {
				continue
			}
			cell.Parts = append(cell.Parts, HTMLPart{Text: c.Data})
		case c.Type == html.ElementNode && c.Data == "code":
			cell.Parts = append(cell.Parts, HTMLPart{Text: DecodeCode(textContent(c)), Code: true})
		case c.Type == html.CommentNode:
		default:
			return cell, fmt.Errorf("unexpected node <%s> in table cell", c.Data)
		}
	}
	return cell, nil
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// textContent concatenates the text below n without trimming it.
func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return buf.String()
}
