package stablematch

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Render writes both preference tables to w. Ineligible entries are marked
// with "x" after the difference.
func (pr *Preferences) Render(w io.Writer) error {
	blocks := []struct {
		title  string
		self   []float64
		other  []float64
		orders [][]Rank
	}{
		{"Proposer preferences", pr.ProposerValues, pr.AcceptorValues, pr.Proposers},
		{"Acceptor preferences", pr.AcceptorValues, pr.ProposerValues, pr.Acceptors},
	}
	for _, b := range blocks {
		if _, err := fmt.Fprintln(w, renderRanks(b.title, b.self, b.other, b.orders)); err != nil {
			return err
		}
	}
	return nil
}

func renderRanks(title string, self, other []float64, orders [][]Rank) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.SetTitle(title)

	width := len(other)
	header := make(table.Row, 0, width+2)
	header = append(header, "#", "value")
	for k := range width {
		header = append(header, "rank "+strconv.Itoa(k+1))
	}
	tw.AppendHeader(header)

	for i, row := range orders {
		r := make(table.Row, 0, width+2)
		r = append(r, i, formatValue(self[i]))
		for _, rank := range row {
			cell := fmt.Sprintf("%s (%s)", formatValue(other[rank.Partner]), formatValue(rank.Diff))
			if !rank.Eligible {
				cell += " x"
			}
			r = append(r, cell)
		}
		tw.AppendRow(r)
	}
	return tw.Render()
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}
