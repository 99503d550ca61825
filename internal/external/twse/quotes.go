package twse

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"

	"github.com/wonny/flipwatch/internal/contracts"
)

// 每日收盤行情 컬럼명
const (
	colCode   = "證券代號"
	colClose  = "收盤價"
	colSign   = "漲跌(+/-)"
	colChange = "漲跌價差"
)

// columns holds the header positions of the per-security quotes table
type columns struct {
	code, close, sign, change int
}

// fallbackColumns is the long-standing MI_INDEX layout
var fallbackColumns = columns{code: 0, close: 8, sign: 9, change: 10}

// parseQuotesHTML extracts market rows from the MI_INDEX html page.
// found is false when the page has no per-security quotes table.
func parseQuotesHTML(html string) (rows []contracts.MarketRow, found bool, err error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, false, err
	}

	rows = make([]contracts.MarketRow, 0)

	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		header, cols, ok := findHeader(table)
		if !ok {
			return true
		}
		found = true

		header.NextAll().Each(func(_ int, tr *goquery.Selection) {
			if row, ok := parseQuoteRow(tr.Find("td"), cols); ok {
				rows = append(rows, row)
			}
		})
		// thead 안에 헤더가 있으면 데이터는 tbody에
		if header.Parent().Is("thead") {
			table.Find("tbody tr").Each(func(_ int, tr *goquery.Selection) {
				if row, ok := parseQuoteRow(tr.Find("td"), cols); ok {
					rows = append(rows, row)
				}
			})
		}
		return false
	})

	return rows, found, nil
}

// findHeader locates the header row containing the security code column
func findHeader(table *goquery.Selection) (*goquery.Selection, columns, bool) {
	var header *goquery.Selection
	cols := fallbackColumns

	table.Find("tr").EachWithBreak(func(_ int, tr *goquery.Selection) bool {
		cells := tr.Find("th, td")
		idx := map[string]int{}
		cells.Each(func(i int, cell *goquery.Selection) {
			idx[strings.TrimSpace(cell.Text())] = i
		})
		if _, ok := idx[colCode]; !ok {
			return true
		}
		header = tr
		if i, ok := idx[colClose]; ok {
			cols.close = i
		}
		if i, ok := idx[colSign]; ok {
			cols.sign = i
		}
		if i, ok := idx[colChange]; ok {
			cols.change = i
		}
		cols.code = idx[colCode]
		return false
	})

	return header, cols, header != nil
}

// parseQuoteRow converts one data row.
// previous close = close - change for "+", close + change for "-", close when unchanged.
// "--" closes and ex-rights rows ("X") keep an unknown change so the screener skips them.
func parseQuoteRow(cells *goquery.Selection, cols columns) (contracts.MarketRow, bool) {
	maxCol := cols.code
	for _, c := range []int{cols.close, cols.sign, cols.change} {
		if c > maxCol {
			maxCol = c
		}
	}
	if cells.Length() <= maxCol {
		return contracts.MarketRow{}, false
	}

	code := strings.TrimSpace(cells.Eq(cols.code).Text())
	if code == "" {
		return contracts.MarketRow{}, false
	}

	row := contracts.MarketRow{SecurityID: code}

	closePrice, ok := parseNumber(cells.Eq(cols.close).Text())
	if !ok {
		return row, true
	}
	row.Close = closePrice

	change, ok := parseNumber(cells.Eq(cols.change).Text())
	if !ok {
		return row, true
	}

	switch sign := strings.TrimSpace(cells.Eq(cols.sign).Text()); sign {
	case "+":
		row.Change = contracts.PreviousCloseChange(closePrice.Sub(change))
	case "-":
		row.Change = contracts.PreviousCloseChange(closePrice.Add(change))
	case "":
		if change.IsZero() {
			row.Change = contracts.PreviousCloseChange(closePrice)
		}
	}

	return row, true
}

// parseNumber parses "1,234.50"; "--" and blanks are not numbers
func parseNumber(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" || s == "--" || s == "-" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
