package internal

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/starford/ontrack/internal/report"
	"github.com/starford/ontrack/internal/track"
)

// ReportOptions selects what a report covers and how it is rendered.
type ReportOptions struct {
	Filter track.Filter
	Sort   string
	Order  string
	XLSX   bool
}

// Validate checks the filter, sort key, and order.
func (ro ReportOptions) Validate() error {
	if err := ro.Filter.Validate(); err != nil {
		return err
	}
	if _, err := track.ParseSortKey(ro.Sort); err != nil {
		return err
	}
	_, err := track.ParseOrder(ro.Order)
	return err
}

// Report writes the roster summary and cohort trend to the configured output.
func Report(ctx context.Context, ro ReportOptions, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	if err := ro.Validate(); err != nil {
		return err
	}
	key, _ := track.ParseSortKey(ro.Sort)
	asc, _ := track.ParseOrder(ro.Order)

	logger := newLogger(os.Stderr, app.config.App.LogLevel)
	c, err := app.open(logger)
	if err != nil {
		return err
	}
	defer c.Close()

	sum, err := c.svc.Students(ctx, ro.Filter)
	if err != nil {
		return err
	}
	trend, err := c.svc.Trend(ctx, key, asc)
	if err != nil {
		return err
	}

	if ro.XLSX {
		return report.WriteXLSX(app.out, *sum, trend)
	}
	return report.WriteText(app.out, *sum, trend)
}

// ReportFile writes an Excel report to path. The options are checked before
// the file is created, and a partly written file is removed on failure.
func ReportFile(ctx context.Context, ro ReportOptions, path string, opts ...Option) (err error) {
	if err := ro.Validate(); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close report: %w", cerr)
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	ro.XLSX = true
	return Report(ctx, ro, append(opts, WithOutput(f))...)
}

// Import validates a dataset file and copies it into the data directory
// under name, or under the file's base name when name is empty.
func Import(ctx context.Context, path, name string, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read dataset: %w", err)
	}
	if name == "" {
		name = filepath.Base(path)
	}

	logger := newLogger(os.Stderr, app.config.App.LogLevel)
	c, err := app.open(logger)
	if err != nil {
		return err
	}
	defer c.Close()

	n, err := c.svc.Import(ctx, name, data)
	if err != nil {
		return fmt.Errorf("import %s: %w", path, err)
	}
	logger.Info("dataset imported", slog.String("name", name), slog.Int("students", n))
	_, err = fmt.Fprintf(app.out, "imported %d students into %s\n", n, name)
	return err
}
