package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sw33tLie/granfondo/internal/utils"
	"github.com/sw33tLie/granfondo/pkg/events"
	"github.com/sw33tLie/granfondo/pkg/providers"
	"github.com/sw33tLie/granfondo/pkg/runner"
	"github.com/sw33tLie/granfondo/pkg/sink"
	"github.com/sw33tLie/granfondo/pkg/whttp"
)

const (
	defaultStartBib = 1
	defaultEndBib   = 9999
)

// scrapeCmd represents the scrape command
var scrapeCmd = &cobra.Command{
	Use:   "scrape <location> [year] [startBib] [endBib]",
	Short: "Scrapes every bib in a range for an event and saves the results.",
	Long: `Scrapes every bib in a range for an event and saves the results.

Without a year, every known year of the location is scraped, each into its
own file. Bibs default to 1-9999.

Examples:
  granfondo scrape 홍천 2025 1 9999
  granfondo scrape 정선 2025 --period 150
  granfondo scrape 트렉가평자라섬 --format csv`,
	Args: cobra.RangeArgs(1, 4),
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	scrapeCmd.Flags().IntP("period", "p", 0, "Minimum milliseconds between requests (0 = provider default)")
	scrapeCmd.Flags().StringP("format", "f", "json", "Output format: json or csv")
	scrapeCmd.Flags().StringP("output", "o", "", "Output file (default <location>_<year>.<format>)")
	scrapeCmd.Flags().Bool("no-status", false, "Write CSV without the Status column")
	scrapeCmd.Flags().Int("timeout", 30, "HTTP timeout in seconds")
	scrapeCmd.Flags().String("provider", "", "Provider override; with marazone, locations missing from the event list are scraped for the current year")

	viper.BindPFlag("period", scrapeCmd.Flags().Lookup("period"))
	viper.BindPFlag("format", scrapeCmd.Flags().Lookup("format"))
	viper.BindPFlag("timeout", scrapeCmd.Flags().Lookup("timeout"))
}

func runScrape(cmd *cobra.Command, args []string) error {
	location := strings.TrimSpace(args[0])
	providerName, _ := cmd.Flags().GetString("provider")
	output, _ := cmd.Flags().GetString("output")
	noStatus, _ := cmd.Flags().GetBool("no-status")

	startBib, endBib := defaultStartBib, defaultEndBib
	var err error
	if len(args) > 2 {
		if startBib, err = strconv.Atoi(args[2]); err != nil {
			return fmt.Errorf("invalid start bib %q", args[2])
		}
	}
	if len(args) > 3 {
		if endBib, err = strconv.Atoi(args[3]); err != nil {
			return fmt.Errorf("invalid end bib %q", args[3])
		}
	}

	format, err := sink.ParseFormat(viper.GetString("format"))
	if err != nil {
		return err
	}
	period := time.Duration(viper.GetInt("period")) * time.Millisecond

	// Checked before any output file is opened, since opening truncates it.
	if err := (runner.Job{StartBib: startBib, EndBib: endBib, Period: period}).Validate(); err != nil {
		return err
	}

	dir, err := loadDirectory()
	if err != nil {
		return err
	}
	registry, err := newRegistry()
	if err != nil {
		return err
	}

	var years []string
	if len(args) > 1 {
		years = []string{strings.TrimSpace(args[1])}
	} else {
		years = dir.Years(location)
		if len(years) == 0 && !isAdHoc(providerName) {
			_, err := dir.Resolve(location, "")
			return err
		}
		if len(years) == 0 {
			years = []string{strconv.Itoa(time.Now().Year())}
		}
	}
	if output != "" && len(years) > 1 {
		return fmt.Errorf("--output needs a single year, %s has %d", location, len(years))
	}

	// Resolve everything up front so a typo fails before the first request.
	type plan struct {
		ev events.Event
		p  providers.Provider
	}
	var plans []plan
	for _, year := range years {
		ev, err := resolveEvent(dir, location, year, providerName)
		if err != nil {
			return err
		}
		p, err := registry.ForEvent(ev)
		if err != nil {
			return err
		}
		plans = append(plans, plan{ev, p})
	}

	for _, pl := range plans {
		out := output
		if out == "" {
			out = sink.DefaultPath(pl.ev.Location, pl.ev.Year, format)
		}
		job := runner.Job{Event: pl.ev, StartBib: startBib, EndBib: endBib, Period: period}
		if err := scrapeEvent(cmd, job, pl.p, format, out, noStatus); err != nil {
			return err
		}
	}
	return nil
}

func isAdHoc(providerName string) bool {
	return strings.EqualFold(providerName, "marazone")
}

// resolveEvent looks the event up in the directory. Marazone only needs a
// competition title, so with that provider an unknown location is scraped
// as "<location>그란폰도".
func resolveEvent(dir *events.Directory, location, year, providerName string) (events.Event, error) {
	ev, err := dir.Resolve(location, year)
	if err == nil {
		if providerName != "" {
			ev.Provider = strings.ToLower(providerName)
		}
		return ev, nil
	}
	if !isAdHoc(providerName) || dir.HasLocation(location) {
		return events.Event{}, err
	}
	return events.Event{
		ID:       location + "그란폰도",
		Year:     year,
		Name:     location + "그란폰도",
		Location: location,
		Provider: "marazone",
	}, nil
}

func scrapeEvent(cmd *cobra.Command, job runner.Job, p providers.Provider, format sink.Format, out string, noStatus bool) error {
	runID := uuid.NewString()
	logger := utils.Log.WithFields(logrus.Fields{
		"run":      runID,
		"event":    job.Event.ID,
		"provider": p.Name(),
	})

	client, err := whttp.NewClient(whttp.ClientOptions{
		Proxy:   viper.GetString("proxy"),
		Timeout: time.Duration(viper.GetInt("timeout")) * time.Second,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	s, err := sink.New(format, out, sink.CSVOptions{OmitStatus: noStatus})
	if err != nil {
		return err
	}
	defer s.Close()

	logger.Infof("Results will be saved to: %s", out)
	_, err = runner.Run(context.Background(), runner.Config{
		Job:      job,
		Provider: p,
		Fetcher:  client,
		Sink:     s,
		Progress: cmd.OutOrStdout(),
		Log:      logger,
		RunID:    runID,
	})
	return err
}
