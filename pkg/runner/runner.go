// Package runner drives a scrape: one bib at a time, paced, with every
// persistable record flushed to the sink as soon as it is known.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/sw33tLie/granfondo/pkg/events"
	"github.com/sw33tLie/granfondo/pkg/providers"
	"github.com/sw33tLie/granfondo/pkg/result"
	"github.com/sw33tLie/granfondo/pkg/sink"
	"github.com/sw33tLie/granfondo/pkg/whttp"
)

// Logger abstracts logging so callers can use logrus, stdlib log, or any
// other logger that satisfies this interface.
type Logger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

// nopLogger silently discards all messages.
type nopLogger struct{}

func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}
func (nopLogger) Debugf(string, ...interface{}) {}

// Fetcher performs exactly one HTTP exchange. *whttp.Client satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, req *whttp.WHTTPReq) (*whttp.WHTTPRes, error)
}

// Job is the read-only description of one scrape.
type Job struct {
	Event    events.Event
	StartBib int
	EndBib   int
	// Period is the minimum time between the starts of two consecutive
	// bibs. Zero means the provider default.
	Period time.Duration
}

// Config holds everything Run needs.
type Config struct {
	Job      Job
	Provider providers.Provider
	Fetcher  Fetcher
	Sink     sink.Sink
	Progress io.Writer // defaults to os.Stdout
	Log      Logger    // optional; nil = no logging
	RunID    string    // generated when empty

	// Now and Sleep default to the wall clock.
	Now   func() time.Time
	Sleep func(time.Duration)
}

// Summary is what Run reports once the range is exhausted.
type Summary struct {
	RunID     string
	Processed int
	Persisted int
	Finished  int
	DNF       int
	DNS       int
	NotFound  int
	Errors    int
	Duration  time.Duration
}

// Pace is how long to wait after a bib that took elapsed, so that bibs start
// at most once per period.
func Pace(period, elapsed time.Duration) time.Duration {
	if d := period - elapsed; d > 0 {
		return d
	}
	return 0
}

func (c *Config) validate() error {
	switch {
	case c.Provider == nil:
		return errors.New("no provider")
	case c.Fetcher == nil:
		return errors.New("no fetcher")
	case c.Sink == nil:
		return errors.New("no sink")
	}
	return c.Job.Validate()
}

// Validate checks the bib range and period. Callers that open files before
// running should call it first.
func (j Job) Validate() error {
	switch {
	case j.StartBib < 1:
		return fmt.Errorf("start bib must be >= 1, got %d", j.StartBib)
	case j.EndBib < j.StartBib:
		return fmt.Errorf("end bib %d is before start bib %d", j.EndBib, j.StartBib)
	case j.Period < 0:
		return fmt.Errorf("negative period %s", j.Period)
	}
	return nil
}

// Run scrapes Job.StartBib..Job.EndBib in order. Per-bib failures are logged
// and recorded as empty results; a sink failure stops the run.
func Run(ctx context.Context, cfg Config) (*Summary, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid scrape: %w", err)
	}

	log := cfg.Log
	if log == nil {
		log = nopLogger{}
	}
	progress := cfg.Progress
	if progress == nil {
		progress = os.Stdout
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	sleep := cfg.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	period := cfg.Job.Period
	if period == 0 {
		period = cfg.Provider.DefaultPeriod()
	}

	job := cfg.Job
	summary := &Summary{RunID: cfg.RunID}
	if summary.RunID == "" {
		summary.RunID = uuid.NewString()
	}

	log.Infof("Scraping %s %s (%s, event %s) bibs %d-%d every %s into %s",
		job.Event.Location, job.Event.Year, cfg.Provider.Name(), job.Event.ID,
		job.StartBib, job.EndBib, period, cfg.Sink.Path())

	began := now()
	var persisted []result.Record

	for bib := job.StartBib; bib <= job.EndBib; bib++ {
		if err := ctx.Err(); err != nil {
			summary.Duration = now().Sub(began)
			return summary, err
		}
		start := now()

		rec, err := ScrapeOne(ctx, cfg.Provider, cfg.Fetcher, job.Event, bib)
		summary.Processed++
		if err != nil {
			summary.Errors++
			log.Warnf("Error processing BIB #%d: %v", bib, err)
		}

		log.Debugf("BIB #%d took %s", bib, now().Sub(start))
		fmt.Fprintln(progress, rec.ProgressLine())

		if rec.Persistable() {
			persisted = append(persisted, rec)
			if err := cfg.Sink.Save(persisted); err != nil {
				log.Errorf("Could not save BIB #%d to %s: %v", bib, cfg.Sink.Path(), err)
				summary.Duration = now().Sub(began)
				return summary, fmt.Errorf("saving BIB #%d: %w", bib, err)
			}
			summary.Persisted++
			switch rec.Status {
			case result.StatusFinished:
				summary.Finished++
			case result.StatusDNF:
				summary.DNF++
			case result.StatusDNS:
				summary.DNS++
			}
		} else if err == nil {
			summary.NotFound++
		}

		sleep(Pace(period, now().Sub(start)))
	}

	summary.Duration = now().Sub(began)
	log.Infof("Scraping completed for %s %s: %d processed, %d saved (%d finished, %d DNF, %d DNS), %d not found, %d errors in %s",
		job.Event.Location, job.Event.Year, summary.Processed, summary.Persisted,
		summary.Finished, summary.DNF, summary.DNS, summary.NotFound, summary.Errors,
		summary.Duration.Round(time.Millisecond))
	return summary, nil
}

// ScrapeOne fetches and normalizes a single bib. On any failure it returns
// the empty record for the bib together with the error.
func ScrapeOne(ctx context.Context, p providers.Provider, f Fetcher, ev events.Event, bibNo int) (result.Record, error) {
	req, err := p.BuildRequest(ev, bibNo)
	if err != nil {
		return result.Empty(bibNo), fmt.Errorf("building request: %w", err)
	}
	res, err := f.Fetch(ctx, req)
	if err != nil {
		return result.Empty(bibNo), err
	}
	raw, err := p.Parse(res.BodyString)
	if err != nil {
		return result.Empty(bibNo), fmt.Errorf("parsing response: %w", err)
	}
	return result.Normalize(bibNo, raw), nil
}
