package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/vsinha/kitchen/pkg/infrastructure/config"
	"github.com/vsinha/kitchen/pkg/infrastructure/logging"
	"github.com/vsinha/kitchen/pkg/interfaces/cli/commands"
	"go.uber.org/zap"
)

const usage = `Kitchen - inventory, meals and portion tracking service

USAGE:
    kitchen serve  [-config file]
    kitchen seed   [-config file] -ingredients <file> -meals <file> [-verbose]
    kitchen report [-config file] [-month m] [-year y] [-format text|json|csv] [-output dir] [-verbose]

CSV FILE FORMATS:

ingredients.csv:
    name,quantity,min_quantity
    potatoes,1000,200

meals.csv (one row per ingredient line):
    meal,description,ingredient,grams_per_portion
    Soup,Potato soup,potatoes,200
    Soup,,onions,50

Settings come from the -config YAML file, .env and the environment
(DATABASE_URL, JWT_SECRET, STORE_DRIVER, HTTP_PORT, ...).
`

func main() {
	if len(os.Args) < 2 || os.Args[1] == "-help" || os.Args[1] == "help" {
		fmt.Print(usage)
		return
	}

	if err := run(os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(command string, args []string) error {
	flags := flag.NewFlagSet(command, flag.ExitOnError)
	configFile := flags.String("config", "", "Path to YAML config file (optional)")

	var (
		ingredientsFile = flags.String("ingredients", "", "Path to ingredients CSV file")
		mealsFile       = flags.String("meals", "", "Path to meals CSV file")
		month           = flags.Int("month", 0, "Report month (default: current)")
		year            = flags.Int("year", 0, "Report year (default: current)")
		format          = flags.String("format", "text", "Output format: text, json, csv")
		outputDir       = flags.String("output", "", "Output directory for results (optional)")
		verbose         = flags.Bool("verbose", false, "Enable verbose output")
	)

	switch command {
	case "serve", "seed", "report":
	default:
		return fmt.Errorf("unknown command %q\n\n%s", command, usage)
	}
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := commands.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to start", zap.Error(err))
		return err
	}
	defer app.Close()

	switch command {
	case "serve":
		return commands.NewServeCommand(commands.ServeConfig{}, app).Execute(ctx)
	case "seed":
		_, err := commands.NewSeedCommand(commands.SeedConfig{
			IngredientsFile: *ingredientsFile,
			MealsFile:       *mealsFile,
			Verbose:         *verbose,
		}, app).Execute(ctx)
		return err
	default:
		return commands.NewReportCommand(commands.ReportConfig{
			Month:     *month,
			Year:      *year,
			Format:    *format,
			OutputDir: *outputDir,
			Verbose:   *verbose,
		}, app).Execute(ctx)
	}
}
