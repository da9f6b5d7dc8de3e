package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/sw33tLie/granfondo/pkg/result"
	"github.com/sw33tLie/granfondo/pkg/sink"
)

type divisionStats struct {
	finished, dnf, dns int
}

func (s divisionStats) total() int { return s.finished + s.dnf + s.dns }

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats <file>",
	Short: "Prints finisher, DNF and DNS counts per division for a result file.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := sink.Load(args[0])
		if err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("result file not found: %s", args[0])
			}
			return err
		}

		if len(records) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No records in the file to generate stats.")
			return nil
		}

		byDivision := map[string]*divisionStats{}
		for _, r := range records {
			d := r.Division
			if d == "" {
				d = "(unknown)"
			}
			s, ok := byDivision[d]
			if !ok {
				s = &divisionStats{}
				byDivision[d] = s
			}
			switch r.Status {
			case result.StatusFinished:
				s.finished++
			case result.StatusDNF:
				s.dnf++
			case result.StatusDNS:
				s.dns++
			}
		}

		divisions := make([]string, 0, len(byDivision))
		for d := range byDivision {
			divisions = append(divisions, d)
		}
		sort.Strings(divisions)

		t := newTable(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"Division", "Finished", "DNF", "DNS", "Total"})
		var total divisionStats
		for _, d := range divisions {
			s := byDivision[d]
			t.AppendRow(table.Row{d, s.finished, s.dnf, s.dns, s.total()})
			total.finished += s.finished
			total.dnf += s.dnf
			total.dns += s.dns
		}
		t.AppendFooter(table.Row{"Total", total.finished, total.dnf, total.dns, total.total()})
		t.Render()

		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
