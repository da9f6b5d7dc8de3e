package cmd

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// eventsCmd represents the events command
var eventsCmd = &cobra.Command{
	Use:   "events [location]",
	Short: "Lists the events granfondo knows how to scrape.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := loadDirectory()
		if err != nil {
			return err
		}

		var locations []string
		if len(args) == 1 {
			if !dir.HasLocation(args[0]) {
				_, err := dir.Resolve(args[0], "")
				return err
			}
			locations = []string{args[0]}
		} else {
			locations = dir.Locations()
		}

		t := newTable(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"Location", "Year", "Event", "Provider", "Name"})
		for _, l := range locations {
			for _, y := range dir.Years(l) {
				ev, err := dir.Resolve(l, y)
				if err != nil {
					return err
				}
				t.AppendRow(table.Row{ev.Location, ev.Year, ev.ID, ev.Provider, ev.Name})
			}
		}
		t.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
}
