package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sw33tLie/granfondo/internal/utils"
	"github.com/sw33tLie/granfondo/pkg/result"
	"github.com/sw33tLie/granfondo/pkg/sink"
)

// fixupCmd represents the fixup command
var fixupCmd = &cobra.Command{
	Use:   "fixup <file>",
	Short: "Marks riders taken off the course as DNF in a result file.",
	Long: `Some timing providers publish riders removed from the course under a pseudo
division (코스제외자 by default). fixup moves them back to their real division,
marks them DNF and keeps the marker in the comment field. The file is
rewritten in place.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		format, err := sink.FormatFromPath(path)
		if err != nil {
			return err
		}
		noStatus, _ := cmd.Flags().GetBool("no-status")

		records, err := sink.Load(path)
		if err != nil {
			return err
		}

		marker := viper.GetString("fixup.marker")
		division := viper.GetString("fixup.division")
		fixed, n := result.ExcludeCourse(records, marker, division)
		if n == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "No %s records in %s\n", marker, path)
			return nil
		}

		if err := sink.WriteFile(path, format, sink.CSVOptions{OmitStatus: noStatus}, fixed); err != nil {
			return fmt.Errorf("rewriting %s: %w", path, err)
		}
		utils.Log.Infof("Rewrote %d %s records in %s as %s DNF", n, marker, path, division)
		fmt.Fprintf(cmd.OutOrStdout(), "Updated %d records\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fixupCmd)

	fixupCmd.Flags().String("marker", "", "Division label that marks riders taken off the course (default from config, 코스제외자)")
	fixupCmd.Flags().String("division", "", "Division to move marked riders to (default from config, 그란폰도)")
	fixupCmd.Flags().Bool("no-status", false, "Write CSV files without the Status column")

	viper.BindPFlag("fixup.marker", fixupCmd.Flags().Lookup("marker"))
	viper.BindPFlag("fixup.division", fixupCmd.Flags().Lookup("division"))
}
