package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/vsinha/kitchen/pkg/domain/entities"
	"github.com/vsinha/kitchen/pkg/interfaces/cli/output"
	"go.uber.org/zap"
)

// ReportConfig holds configuration for the report command
type ReportConfig struct {
	Month     int
	Year      int
	Format    string
	OutputDir string
	Verbose   bool
	Out       io.Writer
}

// ReportCommand regenerates a month's report and prints its breakdown
type ReportCommand struct {
	config ReportConfig
	app    *App
	now    func() time.Time
}

// NewReportCommand creates a new report command
func NewReportCommand(config ReportConfig, app *App) *ReportCommand {
	return &ReportCommand{config: config, app: app, now: time.Now}
}

// Execute runs the report command. A zero month or year means the current one.
func (c *ReportCommand) Execute(ctx context.Context) error {
	month, year := c.period()
	if err := entities.ValidatePeriod(month, year); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	startTime := time.Now()
	detail, err := c.app.Services.Reporting.DetailedMonthlyReport(ctx, month, year)
	if err != nil {
		return fmt.Errorf("error building report: %w", err)
	}

	if c.config.Verbose {
		c.app.Logger.Info("report built",
			zap.Int("month", month),
			zap.Int("year", year),
			zap.Duration("elapsed", time.Since(startTime)),
		)
	}

	err = output.Generate(detail, output.Config{
		Format:    c.config.Format,
		OutputDir: c.config.OutputDir,
		Verbose:   c.config.Verbose,
		Out:       c.config.Out,
	})
	if err != nil {
		return fmt.Errorf("error generating output: %w", err)
	}
	return nil
}

func (c *ReportCommand) period() (int, int) {
	now := c.now().UTC()
	month, year := c.config.Month, c.config.Year
	if month == 0 {
		month = int(now.Month())
	}
	if year == 0 {
		year = now.Year()
	}
	return month, year
}
