package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vsinha/kitchen/pkg/application/dto"
	"github.com/vsinha/kitchen/pkg/domain/entities"
)

func sampleDetail() *dto.MonthlyReportDetail {
	day := time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)
	return &dto.MonthlyReportDetail{
		Report: entities.MonthlyReport{
			Month:                 3,
			Year:                  2024,
			TotalPortionsServed:   6,
			TotalPortionsPossible: 8,
			DifferencePercentage:  decimal.NewFromInt(25),
		},
		MonthName: "March",
		Meals: []dto.MealSummary{
			{
				RecipeID:      1,
				RecipeName:    "Soup",
				TotalPortions: 6,
				Daily:         []dto.DailyPortions{{Date: day, Portions: 6}},
			},
		},
		Ingredients: []dto.IngredientSummary{
			{IngredientID: 2, IngredientName: "onions", TotalUsage: decimal.NewFromInt(300), TotalDelivery: decimal.NewFromInt(500)},
		},
	}
}

func TestGenerateText(t *testing.T) {
	var buf bytes.Buffer
	if err := Generate(sampleDetail(), Config{Format: "text", Out: &buf}); err != nil {
		t.Fatalf("Failed to generate text output: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"March 2024", "Portions Served: 6", "Difference: 25.00%", "Soup", "onions", "300.00"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected text output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestGenerateJSONToWriter(t *testing.T) {
	var buf bytes.Buffer
	if err := Generate(sampleDetail(), Config{Format: "json", Out: &buf}); err != nil {
		t.Fatalf("Failed to generate JSON output: %v", err)
	}

	var doc struct {
		Month     int    `json:"month"`
		MonthName string `json:"month_name"`
		Meals     []struct {
			MealName string `json:"meal_name"`
			Daily    []struct {
				Date string `json:"date"`
			} `json:"daily_data"`
		} `json:"meals_data"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("Expected valid JSON, got %v", err)
	}
	if doc.Month != 3 || doc.MonthName != "March" {
		t.Errorf("Expected March (3), got %s (%d)", doc.MonthName, doc.Month)
	}
	if len(doc.Meals) != 1 || doc.Meals[0].Daily[0].Date != "2024-03-04" {
		t.Errorf("Unexpected meals: %+v", doc.Meals)
	}
}

func TestGenerateJSONToFile(t *testing.T) {
	dir := t.TempDir()
	if err := Generate(sampleDetail(), Config{Format: "json", OutputDir: dir, Out: &bytes.Buffer{}}); err != nil {
		t.Fatalf("Failed to generate JSON output: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "report_2024_03.json")); err != nil {
		t.Errorf("Expected JSON report file, got %v", err)
	}
}

func TestGenerateCSV(t *testing.T) {
	if err := Generate(sampleDetail(), Config{Format: "csv"}); err == nil {
		t.Error("Expected an error without an output directory")
	}

	dir := t.TempDir()
	if err := Generate(sampleDetail(), Config{Format: "csv", OutputDir: dir}); err != nil {
		t.Fatalf("Failed to generate CSV output: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "report_2024_03_meals.csv"))
	if err != nil {
		t.Fatalf("Failed to read meals CSV: %v", err)
	}
	want := "meal_id,meal_name,date,portions\n1,Soup,2024-03-04,6\n"
	if string(data) != want {
		t.Errorf("Expected %q, got %q", want, string(data))
	}

	data, err = os.ReadFile(filepath.Join(dir, "report_2024_03_ingredients.csv"))
	if err != nil {
		t.Fatalf("Failed to read ingredients CSV: %v", err)
	}
	if !strings.Contains(string(data), "2,onions,300,500") {
		t.Errorf("Expected onions row, got %q", string(data))
	}
}

func TestGenerateUnsupportedFormat(t *testing.T) {
	if err := Generate(sampleDetail(), Config{Format: "pdf"}); err == nil {
		t.Error("Expected an error for an unsupported format")
	}
}
