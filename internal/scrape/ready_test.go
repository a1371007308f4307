package scrape

import (
	"context"
	"errors"
	"testing"
	"time"
)

const readyMarkup = `<div class="zyzb_table"><div class="report_table"><table class="table1">
<tr><th>指标</th><th>2023-03-31</th></tr>
<tr><td>营业总收入</td><td>1.2亿</td></tr>
<tr><td>净利润</td><td>3456万</td></tr>
</table></div></div>`

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		cond   ReadyCondition
		ready  bool
	}{
		{
			name:   "ready",
			markup: readyMarkup,
			cond:   ReadyCondition{TableSelector: ".zyzb_table .table1", MinRows: 3},
			ready:  true,
		},
		{
			name:   "table absent",
			markup: `<div class="empty"></div>`,
			cond:   ReadyCondition{TableSelector: ".zyzb_table .table1"},
			ready:  false,
		},
		{
			name:   "too few rows",
			markup: readyMarkup,
			cond:   ReadyCondition{TableSelector: ".zyzb_table .table1", MinRows: 10},
			ready:  false,
		},
		{
			name:   "loading indicator present",
			markup: `<div class="loading"></div>` + readyMarkup,
			cond:   ReadyCondition{TableSelector: ".zyzb_table .table1", LoadingSelector: ".loading"},
			ready:  false,
		},
		{
			name:   "header text present",
			markup: readyMarkup,
			cond:   ReadyCondition{TableSelector: ".zyzb_table .table1", HeaderText: "指标"},
			ready:  true,
		},
		{
			name:   "header text missing",
			markup: readyMarkup,
			cond:   ReadyCondition{TableSelector: ".zyzb_table .table1", HeaderText: "现金流"},
			ready:  false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Evaluate(tt.markup, tt.cond)
			if r.Ready != tt.ready {
				t.Errorf("Ready = %v (%s), want %v", r.Ready, r.Reason, tt.ready)
			}
			if !r.Ready && r.Reason == "" {
				t.Error("not-ready result must carry a reason")
			}
		})
	}
}

func TestWaitStabilizes(t *testing.T) {
	// The table grows for two polls, then holds still. Wait must only
	// return once the row count repeats.
	snapshots := []string{
		`<table class="t"><tr><th>h</th></tr></table>`,
		`<table class="t"><tr><th>h</th></tr><tr><td>2023-01-01</td></tr></table>`,
		readyMarkupT,
		readyMarkupT,
	}
	i := 0
	snap := func(context.Context) (string, error) {
		if i < len(snapshots)-1 {
			i++
		}
		return snapshots[i-1], nil
	}

	p := Poller{Interval: time.Millisecond, Timeout: time.Second}
	got, err := p.Wait(context.Background(), snap, ReadyCondition{TableSelector: ".t"})
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if got != readyMarkupT {
		t.Errorf("Wait returned a non-final snapshot")
	}
}

const readyMarkupT = `<table class="t"><tr><th>h</th></tr><tr><td>2023-01-01</td></tr><tr><td>2023-02-01</td></tr></table>`

func TestWaitTimeout(t *testing.T) {
	snap := func(context.Context) (string, error) {
		return `<div class="loading"></div>`, nil
	}
	p := Poller{Interval: time.Millisecond, Timeout: 20 * time.Millisecond}
	_, err := p.Wait(context.Background(), snap, ReadyCondition{TableSelector: ".t"})
	if !errors.Is(err, ErrLoadTimeout) {
		t.Errorf("error = %v, want ErrLoadTimeout", err)
	}
}

func TestWaitCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	snap := func(context.Context) (string, error) { return "<div></div>", nil }
	p := Poller{Interval: 10 * time.Millisecond, Timeout: time.Minute}
	_, err := p.Wait(ctx, snap, ReadyCondition{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestWaitChange(t *testing.T) {
	old := region(readyMarkupT, ".t")
	changed := `<table class="t"><tr><th>h</th></tr><tr><td>2022-12-31</td></tr></table>`

	i := 0
	snap := func(context.Context) (string, error) {
		i++
		if i < 3 {
			return readyMarkupT, nil
		}
		return changed, nil
	}

	p := Poller{Interval: time.Millisecond, Timeout: time.Second}
	got, err := p.WaitChange(context.Background(), snap, ".t", old)
	if err != nil {
		t.Fatalf("WaitChange: %v", err)
	}
	if got != changed {
		t.Error("WaitChange returned before the region changed")
	}
}

func TestWaitChangeTimeout(t *testing.T) {
	old := region(readyMarkupT, ".t")
	snap := func(context.Context) (string, error) { return readyMarkupT, nil }

	p := Poller{Interval: time.Millisecond, Timeout: 20 * time.Millisecond}
	_, err := p.WaitChange(context.Background(), snap, ".t", old)
	if !errors.Is(err, ErrLoadTimeout) {
		t.Errorf("error = %v, want ErrLoadTimeout", err)
	}
}
