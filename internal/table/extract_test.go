package table

import (
	"errors"
	"testing"
)

const plainTable = `<div><table>
<tr><th>日期</th><th>营业总收入</th><th>净利润</th></tr>
<tr><td>2023-01-01</td><td>1.2亿</td><td>3456万</td></tr>
<tr><td>2023-02-01</td><td>1.5亿</td><td>--</td></tr>
</table></div>`

func TestExtractPlainGrid(t *testing.T) {
	tbl, err := Extract(plainTable, Spec{})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if got := len(tbl.Rows); got != 2 {
		t.Fatalf("rows = %d, want 2", got)
	}
	if got := len(tbl.Columns); got != 3 {
		t.Fatalf("columns = %d, want 3", got)
	}
	if tbl.Rows[0][0].Kind != Date {
		t.Errorf("date axis cell kind = %v, want Date", tbl.Rows[0][0].Kind)
	}
	if got := tbl.Rows[0][1].Number.String(); got != "120000000" {
		t.Errorf("normalized 1.2亿 = %s, want 120000000", got)
	}
	if tbl.Rows[1][2].Kind != Missing {
		t.Errorf("-- cell kind = %v, want Missing", tbl.Rows[1][2].Kind)
	}
}

const transposedPage1 = `<table class="table1">
<tr><th>指标</th><th>2023-03-31</th><th>2022-12-31</th></tr>
<tr><td>营业总收入</td><td>1.2亿</td><td>4.8亿</td></tr>
<tr><td>净利润</td><td>3456万</td><td>1.1亿</td></tr>
</table>`

const transposedPage2 = `<table class="table1">
<tr><th>指标</th><th>2022-12-31</th><th>2022-09-30</th></tr>
<tr><td>营业总收入</td><td>4.8亿</td><td>3.6亿</td></tr>
<tr><td>净利润</td><td>1.1亿</td><td>8000万</td></tr>
</table>`

func TestExtractTransposed(t *testing.T) {
	tbl, err := Extract(transposedPage1, Spec{Selector: ".table1", Transposed: true})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	wantCols := []string{"指标", "营业总收入", "净利润"}
	for i, w := range wantCols {
		if tbl.Columns[i] != w {
			t.Errorf("column %d = %q, want %q", i, tbl.Columns[i], w)
		}
	}
	if got := len(tbl.Rows); got != 2 {
		t.Fatalf("rows = %d, want 2", got)
	}
	// One row per report period, date axis down the first column.
	if got := tbl.Rows[0][0].Date.Format(DateLayout); got != "2023-03-31" {
		t.Errorf("row 0 date = %s, want 2023-03-31", got)
	}
	if got := tbl.Rows[1][1].Number.String(); got != "480000000" {
		t.Errorf("row 1 revenue = %s, want 480000000", got)
	}
}

func TestExtractPagesOverlapDedup(t *testing.T) {
	tbl, err := ExtractPages([]string{transposedPage1, transposedPage2},
		Spec{Selector: ".table1", Transposed: true})
	if err != nil {
		t.Fatalf("ExtractPages: %v", err)
	}

	// 2022-12-31 appears on both pages; the merged grid must carry it
	// once, with three periods total.
	if got := len(tbl.Rows); got != 3 {
		t.Fatalf("rows = %d, want 3", got)
	}
	wantDates := []string{"2023-03-31", "2022-12-31", "2022-09-30"}
	for i, w := range wantDates {
		if got := tbl.Rows[i][0].Date.Format(DateLayout); got != w {
			t.Errorf("row %d date = %s, want %s", i, got, w)
		}
	}
	if got := tbl.Rows[2][2].Number.String(); got != "80000000" {
		t.Errorf("last period 净利润 = %s, want 80000000", got)
	}
}

func TestExtractPagesFullyOverlappingPage(t *testing.T) {
	tbl, err := ExtractPages([]string{transposedPage1, transposedPage1},
		Spec{Selector: ".table1", Transposed: true})
	if err != nil {
		t.Fatalf("ExtractPages: %v", err)
	}
	if got := len(tbl.Rows); got != 2 {
		t.Errorf("rows = %d, want 2 (duplicate page contributes nothing)", got)
	}
}

func TestExtractErrors(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		spec   Spec
		want   error
	}{
		{
			name:   "no table element",
			markup: `<div>nothing here</div>`,
			spec:   Spec{},
			want:   ErrEmptyTable,
		},
		{
			name:   "header only",
			markup: `<table><tr><th>日期</th><th>值</th></tr></table>`,
			spec:   Spec{},
			want:   ErrEmptyTable,
		},
		{
			name:   "ragged row",
			markup: `<table><tr><th>日期</th><th>值</th></tr><tr><td>2023-01-01</td></tr></table>`,
			spec:   Spec{},
			want:   ErrRaggedGrid,
		},
		{
			name:   "unparseable date axis",
			markup: `<table><tr><th>日期</th><th>值</th></tr><tr><td>n/a</td><td>1</td></tr></table>`,
			spec:   Spec{},
			want:   ErrDateCoercion,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Extract(tt.markup, tt.spec)
			if !errors.Is(err, tt.want) {
				t.Errorf("Extract error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestExtractPagesEmptyInput(t *testing.T) {
	if _, err := ExtractPages(nil, Spec{}); !errors.Is(err, ErrEmptyTable) {
		t.Errorf("error = %v, want ErrEmptyTable", err)
	}
}

func TestCollectionRejectsDuplicateNames(t *testing.T) {
	col := &Collection{Source: "SH605136"}
	a, err := Extract(plainTable, Spec{})
	if err != nil {
		t.Fatal(err)
	}
	a.Name = "资产负债表"
	if err := col.Add(a); err != nil {
		t.Fatalf("first Add: %v", err)
	}
	b := *a
	if err := col.Add(&b); err == nil {
		t.Error("second Add with same name should fail")
	}
}
