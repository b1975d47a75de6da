package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/vsinha/kitchen/pkg/application/dto"
)

// Config holds configuration for output generation
type Config struct {
	Format    string
	OutputDir string
	Verbose   bool
	// Out receives text output and JSON when OutputDir is empty; nil means stdout
	Out io.Writer
}

func (c Config) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

// Generate writes a detailed monthly report in the configured format
func Generate(detail *dto.MonthlyReportDetail, config Config) error {
	switch config.Format {
	case "text":
		return generateTextOutput(detail, config)
	case "json":
		return generateJSONOutput(detail, config)
	case "csv":
		return generateCSVOutput(detail, config)
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

// generateTextOutput creates human-readable text output
func generateTextOutput(detail *dto.MonthlyReportDetail, config Config) error {
	w := config.out()
	report := detail.Report

	fmt.Fprintf(w, "📊 Kitchen Report %s %d\n", detail.MonthName, report.Year)
	fmt.Fprintf(w, "==============================\n\n")

	fmt.Fprintf(w, "Portions Served: %d\n", report.TotalPortionsServed)
	fmt.Fprintf(w, "Portions Possible: %d\n", report.TotalPortionsPossible)
	fmt.Fprintf(w, "Difference: %s%%\n\n", report.DifferencePercentage.StringFixed(2))

	if len(detail.Meals) > 0 {
		fmt.Fprintf(w, "🍲 Meals:\n")
		fmt.Fprintf(w, "%-8s %-30s %-10s %-12s\n", "ID", "Meal", "Portions", "Days Served")
		fmt.Fprintf(w, "%-8s %-30s %-10s %-12s\n", "--------", "------------------------------", "----------", "------------")

		for _, meal := range detail.Meals {
			fmt.Fprintf(w, "%-8d %-30s %-10d %-12d\n",
				meal.RecipeID,
				meal.RecipeName,
				meal.TotalPortions,
				len(meal.Daily))
		}
		fmt.Fprintln(w)
	}

	if len(detail.Ingredients) > 0 {
		fmt.Fprintf(w, "📦 Ingredients:\n")
		fmt.Fprintf(w, "%-8s %-30s %-14s %-14s\n", "ID", "Ingredient", "Used (g)", "Delivered (g)")
		fmt.Fprintf(w, "%-8s %-30s %-14s %-14s\n", "--------", "------------------------------", "--------------", "--------------")

		for _, ingredient := range detail.Ingredients {
			fmt.Fprintf(w, "%-8d %-30s %-14s %-14s\n",
				ingredient.IngredientID,
				ingredient.IngredientName,
				ingredient.TotalUsage.StringFixed(2),
				ingredient.TotalDelivery.StringFixed(2))
		}
		fmt.Fprintln(w)
	}

	return nil
}

type reportDocument struct {
	Month                 int               `json:"month"`
	MonthName             string            `json:"month_name"`
	Year                  int               `json:"year"`
	TotalPortionsServed   int64             `json:"total_portions_served"`
	TotalPortionsPossible int64             `json:"total_portions_possible"`
	DifferencePercentage  decimal.Decimal   `json:"difference_percentage"`
	Meals                 []mealDocument    `json:"meals_data"`
	Ingredients           []ingredientEntry `json:"ingredients_data"`
}

type mealDocument struct {
	MealID        int64      `json:"meal_id"`
	MealName      string     `json:"meal_name"`
	TotalPortions int64      `json:"total_portions"`
	Daily         []dayEntry `json:"daily_data"`
}

type dayEntry struct {
	Date     string `json:"date"`
	Portions int64  `json:"portions"`
}

type ingredientEntry struct {
	IngredientID   int64           `json:"ingredient_id"`
	IngredientName string          `json:"ingredient_name"`
	TotalUsage     decimal.Decimal `json:"total_usage"`
	TotalDelivery  decimal.Decimal `json:"total_delivery"`
}

func newReportDocument(detail *dto.MonthlyReportDetail) reportDocument {
	doc := reportDocument{
		Month:                 detail.Report.Month,
		MonthName:             detail.MonthName,
		Year:                  detail.Report.Year,
		TotalPortionsServed:   detail.Report.TotalPortionsServed,
		TotalPortionsPossible: detail.Report.TotalPortionsPossible,
		DifferencePercentage:  detail.Report.DifferencePercentage,
		Meals:                 make([]mealDocument, 0, len(detail.Meals)),
		Ingredients:           make([]ingredientEntry, 0, len(detail.Ingredients)),
	}
	for _, meal := range detail.Meals {
		days := make([]dayEntry, 0, len(meal.Daily))
		for _, day := range meal.Daily {
			days = append(days, dayEntry{Date: day.Date.Format("2006-01-02"), Portions: day.Portions})
		}
		doc.Meals = append(doc.Meals, mealDocument{
			MealID:        int64(meal.RecipeID),
			MealName:      meal.RecipeName,
			TotalPortions: meal.TotalPortions,
			Daily:         days,
		})
	}
	for _, ingredient := range detail.Ingredients {
		doc.Ingredients = append(doc.Ingredients, ingredientEntry{
			IngredientID:   int64(ingredient.IngredientID),
			IngredientName: ingredient.IngredientName,
			TotalUsage:     ingredient.TotalUsage,
			TotalDelivery:  ingredient.TotalDelivery,
		})
	}
	return doc
}

// generateJSONOutput creates JSON output
func generateJSONOutput(detail *dto.MonthlyReportDetail, config Config) error {
	jsonData, err := json.MarshalIndent(newReportDocument(detail), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if config.OutputDir == "" {
		fmt.Fprintln(config.out(), string(jsonData))
		return nil
	}

	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	filename := filepath.Join(config.OutputDir, reportFilename(detail, ".json"))
	if err := os.WriteFile(filename, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write JSON file: %w", err)
	}

	if config.Verbose {
		fmt.Fprintf(config.out(), "💾 JSON report saved to: %s\n", filename)
	}
	return nil
}

// generateCSVOutput writes one file per section of the report
func generateCSVOutput(detail *dto.MonthlyReportDetail, config Config) error {
	if config.OutputDir == "" {
		return fmt.Errorf("output directory required for CSV format")
	}

	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	mealsFile := filepath.Join(config.OutputDir, reportFilename(detail, "_meals.csv"))
	if err := writeMealsCSV(detail.Meals, mealsFile); err != nil {
		return fmt.Errorf("failed to write meals CSV: %w", err)
	}

	ingredientsFile := filepath.Join(config.OutputDir, reportFilename(detail, "_ingredients.csv"))
	if err := writeIngredientsCSV(detail.Ingredients, ingredientsFile); err != nil {
		return fmt.Errorf("failed to write ingredients CSV: %w", err)
	}

	if config.Verbose {
		fmt.Fprintf(config.out(), "💾 CSV report saved to:\n")
		fmt.Fprintf(config.out(), "  Meals: %s\n", mealsFile)
		fmt.Fprintf(config.out(), "  Ingredients: %s\n", ingredientsFile)
	}

	return nil
}

func reportFilename(detail *dto.MonthlyReportDetail, suffix string) string {
	return fmt.Sprintf("report_%04d_%02d%s", detail.Report.Year, detail.Report.Month, suffix)
}

// writeMealsCSV writes one row per meal and day served
func writeMealsCSV(meals []dto.MealSummary, filename string) error {
	rows := [][]string{{"meal_id", "meal_name", "date", "portions"}}
	for _, meal := range meals {
		for _, day := range meal.Daily {
			rows = append(rows, []string{
				strconv.FormatInt(int64(meal.RecipeID), 10),
				meal.RecipeName,
				day.Date.Format("2006-01-02"),
				strconv.FormatInt(day.Portions, 10),
			})
		}
	}
	return writeCSV(rows, filename)
}

func writeIngredientsCSV(ingredients []dto.IngredientSummary, filename string) error {
	rows := [][]string{{"ingredient_id", "ingredient_name", "total_usage", "total_delivery"}}
	for _, ingredient := range ingredients {
		rows = append(rows, []string{
			strconv.FormatInt(int64(ingredient.IngredientID), 10),
			ingredient.IngredientName,
			ingredient.TotalUsage.String(),
			ingredient.TotalDelivery.String(),
		})
	}
	return writeCSV(rows, filename)
}

func writeCSV(rows [][]string, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.WriteAll(rows); err != nil {
		return err
	}
	return file.Close()
}
