package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/vsinha/kitchen/pkg/application/services/catalog"
	"github.com/vsinha/kitchen/pkg/domain/entities"
	"github.com/vsinha/kitchen/pkg/infrastructure/repositories/csv"
	"go.uber.org/zap"
)

// SeedConfig holds configuration for the seed command
type SeedConfig struct {
	IngredientsFile string
	MealsFile       string
	Verbose         bool
	Out             io.Writer
}

// SeedResult counts what a seed run created and skipped
type SeedResult struct {
	IngredientsCreated int
	IngredientsSkipped int
	MealsCreated       int
	MealsSkipped       int
}

// SeedCommand loads ingredients and meals from CSV files. Rows whose name
// already exists are skipped, so running it twice is harmless.
type SeedCommand struct {
	config SeedConfig
	app    *App
	loader *csv.Loader
}

// NewSeedCommand creates a new seed command
func NewSeedCommand(config SeedConfig, app *App) *SeedCommand {
	if config.Out == nil {
		config.Out = os.Stdout
	}
	return &SeedCommand{config: config, app: app, loader: csv.NewLoader()}
}

// Execute runs the seed command
func (c *SeedCommand) Execute(ctx context.Context) (*SeedResult, error) {
	if c.config.IngredientsFile == "" && c.config.MealsFile == "" {
		return nil, fmt.Errorf("validation error: must specify -ingredients and/or -meals")
	}

	result := &SeedResult{}

	if c.config.IngredientsFile != "" {
		records, err := c.loader.LoadIngredients(c.config.IngredientsFile)
		if err != nil {
			return nil, fmt.Errorf("error loading ingredients: %w", err)
		}
		if err := c.seedIngredients(ctx, records, result); err != nil {
			return nil, err
		}
	}

	if c.config.MealsFile != "" {
		records, err := c.loader.LoadMeals(c.config.MealsFile)
		if err != nil {
			return nil, fmt.Errorf("error loading meals: %w", err)
		}
		if err := c.seedMeals(ctx, records, result); err != nil {
			return nil, err
		}
	}

	fmt.Fprintf(c.config.Out, "✅ Seed complete:\n")
	fmt.Fprintf(c.config.Out, "  Ingredients: %d created, %d skipped\n", result.IngredientsCreated, result.IngredientsSkipped)
	fmt.Fprintf(c.config.Out, "  Meals: %d created, %d skipped\n", result.MealsCreated, result.MealsSkipped)
	return result, nil
}

func (c *SeedCommand) seedIngredients(ctx context.Context, records []csv.IngredientRecord, result *SeedResult) error {
	for _, record := range records {
		_, err := c.app.Store.Ingredients().GetIngredientByName(ctx, record.Name)
		exists, err := found(err)
		if err != nil {
			return fmt.Errorf("failed to look up ingredient %s: %w", record.Name, err)
		}
		if exists {
			result.IngredientsSkipped++
			c.verbose("skipped existing ingredient %s", record.Name)
			continue
		}

		if _, err := c.app.Services.Stock.Create(ctx, record.Name, record.Quantity, record.MinQuantity); err != nil {
			return fmt.Errorf("failed to create ingredient %s: %w", record.Name, err)
		}
		result.IngredientsCreated++
		c.verbose("created ingredient %s", record.Name)
	}
	return nil
}

func (c *SeedCommand) seedMeals(ctx context.Context, records []csv.MealRecord, result *SeedResult) error {
	for _, record := range records {
		_, err := c.app.Store.Recipes().GetRecipeByName(ctx, record.Name)
		exists, err := found(err)
		if err != nil {
			return fmt.Errorf("failed to look up meal %s: %w", record.Name, err)
		}
		if exists {
			result.MealsSkipped++
			c.verbose("skipped existing meal %s", record.Name)
			continue
		}

		lines, err := c.resolveLines(ctx, record)
		if err != nil {
			return err
		}

		input := catalog.RecipeInput{Name: record.Name, Description: record.Description, Lines: lines}
		if _, err := c.app.Services.Catalog.Create(ctx, input, 0); err != nil {
			return fmt.Errorf("failed to create meal %s: %w", record.Name, err)
		}
		result.MealsCreated++
		c.verbose("created meal %s with %d ingredients", record.Name, len(lines))
	}
	return nil
}

func (c *SeedCommand) resolveLines(ctx context.Context, record csv.MealRecord) ([]entities.RecipeLine, error) {
	lines := make([]entities.RecipeLine, 0, len(record.Lines))
	for _, line := range record.Lines {
		ingredient, err := c.app.Store.Ingredients().GetIngredientByName(ctx, line.IngredientName)
		if err != nil {
			if errors.Is(err, entities.ErrNotFound) {
				return nil, fmt.Errorf("meal %s uses unknown ingredient %s", record.Name, line.IngredientName)
			}
			return nil, fmt.Errorf("failed to look up ingredient %s: %w", line.IngredientName, err)
		}
		lines = append(lines, entities.RecipeLine{IngredientID: ingredient.ID, GramsPerPortion: line.GramsPerPortion})
	}
	return lines, nil
}

func (c *SeedCommand) verbose(format string, args ...interface{}) {
	if c.config.Verbose {
		c.app.Logger.Info(fmt.Sprintf(format, args...), zap.String("command", "seed"))
	}
}

// found turns a by-name lookup into an existence check
func found(err error) (bool, error) {
	if err == nil {
		return true, nil
	}
	if errors.Is(err, entities.ErrNotFound) {
		return false, nil
	}
	return false, err
}
