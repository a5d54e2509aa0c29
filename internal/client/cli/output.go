package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dmitrijs2005/blockkeeper/internal/api"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	keyStyle    = lipgloss.NewStyle().Bold(true)
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func printBlocks(w io.Writer, blocks []*api.Block) {
	if len(blocks) == 0 {
		fmt.Fprintln(w, "No blocks")
		return
	}

	t := newTable("ID", "GROUP", "SEQ", "LABEL", "CONTENT")
	for _, b := range blocks {
		t.Row(b.ID, strconv.FormatInt(b.GroupKey, 10), strconv.FormatInt(b.SeqNum, 10), b.Label, oneLine(b.Content))
	}
	fmt.Fprintln(w, t.Render())
}

func printGroups(w io.Writer, keys []int64) {
	if len(keys) == 0 {
		fmt.Fprintln(w, "No groups")
		return
	}
	for _, k := range keys {
		fmt.Fprintln(w, k)
	}
}

func printUser(w io.Writer, u *api.User) {
	field := func(k, v string) {
		if v != "" {
			fmt.Fprintf(w, "%s %s\n", keyStyle.Render(k+":"), v)
		}
	}
	field("ID", u.ID)
	field("Email", u.Email)
	field("Name", u.Name)
	field("Picture", u.Picture)
	field("Blocks", strconv.Itoa(u.BlockCount))
}

func printReport(w io.Writer, r *api.CheckConsistencyResponse) {
	if len(r.Dangling) == 0 && len(r.Orphaned) == 0 {
		fmt.Fprintln(w, "Consistent")
		return
	}
	if len(r.Dangling) > 0 {
		fmt.Fprintf(w, "Dangling: %s\n", strings.Join(r.Dangling, ", "))
	}
	if len(r.Orphaned) > 0 {
		fmt.Fprintf(w, "Orphaned: %s\n", strings.Join(r.Orphaned, ", "))
	}
	if r.Repaired {
		fmt.Fprintln(w, "Repaired")
	}
}

// oneLine keeps table rows single-line.
func oneLine(s string) string {
	s = strings.ReplaceAll(s, "\n", " ⏎ ")
	if len([]rune(s)) > 60 {
		return string([]rune(s)[:59]) + "…"
	}
	return s
}
