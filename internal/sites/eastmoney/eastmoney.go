// Package eastmoney profiles the Eastmoney pc_hsf10 financial page
// (财务分析). Each statement lives behind its own tab; the page is a
// hash-routed SPA that renders each table after the tab click.
package eastmoney

import (
	"fmt"
	"regexp"
	"strings"

	"finsheet/internal/scrape"
	"finsheet/internal/sites"
	"finsheet/internal/table"
)

func init() {
	sites.Register(&Profile{})
}

const baseURL = "https://emweb.securities.eastmoney.com/pc_hsf10/pages/index.html"

var (
	prefixedRe = regexp.MustCompile(`^(SZ|SH)\d{6}$`)
	bareRe     = regexp.MustCompile(`^\d{6}$`)
)

// Profile implements sites.Profile for Eastmoney.
type Profile struct{}

func (p *Profile) Name() string { return "eastmoney" }

func (p *Profile) MatchURL(rawURL string) bool {
	return strings.Contains(rawURL, "emweb.securities.eastmoney.com")
}

// ResolveTicker maps a stock code to the financial-analysis page URL.
// Accepted forms: SH/SZ prefix plus six digits, or six bare digits.
// Bare codes starting with 0, 1 or 3 list in Shenzhen, the rest in
// Shanghai.
func (p *Profile) ResolveTicker(ticker string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(ticker))

	switch {
	case prefixedRe.MatchString(code):
	case bareRe.MatchString(code):
		prefix := "SH"
		if code[0] == '0' || code[0] == '1' || code[0] == '3' {
			prefix = "SZ"
		}
		code = prefix + code
	default:
		return "", fmt.Errorf("invalid stock code %q: want SH/SZ prefix or six digits", ticker)
	}

	return URLFor(code), nil
}

// URLFor builds the page URL for an already-prefixed code.
func URLFor(code string) string {
	return fmt.Sprintf("%s?type=web&code=%s&color=b#/cwfx", baseURL, code)
}

// panelDef declares one statement tab. All four tables render dates
// across the header and indicator names down the first column, and
// page horizontally through a next button.
var panelDefs = []struct {
	key      string
	label    string
	selector string // tab element; empty means the default view
}{
	{key: "zyzb", label: "主要指标", selector: ""},
	{key: "zcfzb", label: "资产负债表", selector: "#zcfzb"},
	{key: "lrb", label: "利润表", selector: "#lrb"},
	{key: "xjllb", label: "现金流量表", selector: "#xjllb"},
}

// Panels returns the fixed descriptor list for the 财务分析 view.
// 主要指标 is the landing tab and needs no activation click.
func (p *Profile) Panels() []scrape.Panel {
	panels := make([]scrape.Panel, 0, len(panelDefs))
	for _, d := range panelDefs {
		root := fmt.Sprintf(".%s_table", d.key)
		panels = append(panels, scrape.Panel{
			Key:      d.key,
			Label:    d.label,
			Selector: d.selector,
			Ready: scrape.ReadyCondition{
				TableSelector:   root + " .report_table .table1",
				MinRows:         2,
				LoadingSelector: root + " .loading",
			},
			Table: table.Spec{
				Selector:   root + " .report_table .table1",
				Transposed: true,
			},
			NextPage: root + " .next",
		})
	}
	return panels
}
