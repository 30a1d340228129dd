// Copyright (c) 2025 sfquery
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"atomicgo.dev/cursor"
	"github.com/pterm/pterm"
	"golang.org/x/term"

	"sfquery/cli/internal/export"
	"sfquery/cli/internal/query"
	"sfquery/cli/internal/terminal"
)

// progress is a stick-style spinner drawn in a pterm area that disappears when
// stopped. It only draws when stdout is a terminal.
type progress struct {
	mu      sync.Mutex
	enabled bool
	area    *pterm.AreaPrinter
	stop    chan struct{}
	wg      sync.WaitGroup
}

func newProgress() *progress {
	return &progress{enabled: term.IsTerminal(int(os.Stdout.Fd()))}
}

// Start shows text next to a spinner until Stop is called.
func (p *progress) Start(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.enabled || p.area != nil {
		return
	}
	cursor.Hide()
	area, err := pterm.DefaultArea.WithRemoveWhenDone(true).Start()
	if err != nil {
		cursor.Show()
		return
	}
	p.area = area
	p.stop = make(chan struct{})
	p.wg.Add(1)
	go func(area *pterm.AreaPrinter, stop chan struct{}) {
		defer p.wg.Done()
		frames := []string{"|", "/", "-", "\\"}
		t := time.NewTicker(120 * time.Millisecond)
		defer t.Stop()
		for i := 0; ; i++ {
			area.Update(fmt.Sprintf("%s %s", frames[i%len(frames)], text))
			select {
			case <-t.C:
			case <-stop:
				return
			}
		}
	}(area, p.stop)
}

// Stop removes the spinner. It is safe to call when nothing is running.
func (p *progress) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.area == nil {
		return
	}
	close(p.stop)
	p.wg.Wait()
	_ = p.area.Stop()
	p.area = nil
	cursor.Show()
}

// renderRecords prints records as a table, columns in the given order or
// sorted. Long cells are cut to keep rows on one line where possible.
func renderRecords(records []query.Record, order []string) error {
	if len(records) == 0 {
		pterm.Info.Println("No records found")
		return nil
	}
	cols, err := export.Columns(records, order)
	if err != nil {
		return err
	}
	maxCell := terminal.Width() / len(cols)
	if maxCell < 12 {
		maxCell = 12
	}

	data := pterm.TableData{cols}
	for _, r := range records {
		row := make([]string, len(cols))
		for i, c := range cols {
			row[i] = truncate(export.FormatValue(r[c]), maxCell)
		}
		data = append(data, row)
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		return err
	}
	pterm.Println()
	pterm.Printf("%d record(s)\n", len(records))
	return nil
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len([]rune(s)) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}
