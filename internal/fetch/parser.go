package fetch

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/fortuna/fastbreak/internal/table"
)

var errNoMatch = errors.New("selector matched no element")

// ParseTable locates the first element matching the CSS selector and
// parses it into a raw table. Tables the source serves inside HTML
// comments (a sports-reference quirk) are unwrapped before matching.
//
// Header names come from the last <thead> row when one exists; tables
// without a <thead> get positional placeholder names, and callers recover
// the real header from the first data row.
func ParseTable(htmlContent, selector string) (*table.Table, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	sel := doc.Find(selector).First()
	if sel.Length() == 0 {
		sel = findInComments(doc, selector)
	}
	if sel == nil || sel.Length() == 0 {
		return nil, errNoMatch
	}
	return tableFromSelection(sel)
}

// findInComments re-parses comment nodes that hide a table and retries the
// selector inside each.
func findInComments(doc *goquery.Document, selector string) *goquery.Selection {
	var found *goquery.Selection
	doc.Find("*").Contents().EachWithBreak(func(_ int, s *goquery.Selection) bool {
		node := s.Get(0)
		if node.Type != html.CommentNode || !strings.Contains(node.Data, "<table") {
			return true
		}
		inner, err := goquery.NewDocumentFromReader(strings.NewReader(node.Data))
		if err != nil {
			return true
		}
		if m := inner.Find(selector).First(); m.Length() > 0 {
			found = m
			return false
		}
		return true
	})
	return found
}

func tableFromSelection(sel *goquery.Selection) (*table.Table, error) {
	columns := headerColumns(sel)

	var bodyRows *goquery.Selection
	if tbody := sel.Find("tbody").First(); tbody.Length() > 0 {
		bodyRows = tbody.Find("tr")
	} else {
		bodyRows = sel.Find("tr")
	}

	var cellRows [][]string
	width := len(columns)
	bodyRows.Each(func(_ int, tr *goquery.Selection) {
		var cells []string
		tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, strings.TrimSpace(cell.Text()))
		})
		if len(cells) == 0 {
			return
		}
		// A headerless table's header row is its widest row seen so far.
		if len(cells) > width {
			width = len(cells)
		}
		cellRows = append(cellRows, cells)
	})

	// No thead: synthesize positional names so the caller can recover the
	// real header from the embedded first row.
	if len(columns) == 0 {
		columns = make([]string, width)
		for i := range columns {
			columns[i] = fmt.Sprintf("c%d", i)
		}
	} else {
		// Blank header cells (layout spacers) get unique placeholders;
		// they carry no values and are pruned as all-empty columns.
		for i, col := range columns {
			if col == "" {
				columns[i] = fmt.Sprintf("c%d", i)
			}
		}
	}

	out := table.New(columns...)
	for _, cells := range cellRows {
		row := make(table.Row, len(columns))
		for i, col := range columns {
			if i < len(cells) {
				row[col] = cells[i]
			}
		}
		out.Append(row)
	}
	return out, nil
}

func headerColumns(sel *goquery.Selection) []string {
	var columns []string
	sel.Find("thead tr").Last().Find("th, td").Each(func(_ int, cell *goquery.Selection) {
		columns = append(columns, strings.TrimSpace(cell.Text()))
	})
	return columns
}
