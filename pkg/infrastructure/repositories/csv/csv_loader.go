package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"
)

// IngredientRecord is one row of an ingredients file
type IngredientRecord struct {
	Name        string
	Quantity    decimal.Decimal
	MinQuantity decimal.Decimal
}

// MealLineRecord is one ingredient of a meal, referenced by name
type MealLineRecord struct {
	IngredientName  string
	GramsPerPortion decimal.Decimal
}

// MealRecord is a meal assembled from consecutive rows of a meals file
type MealRecord struct {
	Name        string
	Description string
	Lines       []MealLineRecord
}

var (
	ingredientHeader = []string{"name", "quantity", "min_quantity"}
	mealHeader       = []string{"meal", "description", "ingredient", "grams_per_portion"}
)

// Loader handles loading seed data from CSV files
type Loader struct{}

// NewLoader creates a new CSV loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadIngredients loads ingredients from a CSV file
func (l *Loader) LoadIngredients(filename string) ([]IngredientRecord, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open ingredients file %s: %w", filename, err)
	}
	defer file.Close()

	return l.ReadIngredients(file)
}

// ReadIngredients parses an ingredients CSV with the header name,quantity,min_quantity
func (l *Loader) ReadIngredients(r io.Reader) ([]IngredientRecord, error) {
	records, err := readRecords(r, "ingredients", ingredientHeader)
	if err != nil {
		return nil, err
	}

	ingredients := make([]IngredientRecord, 0, len(records))
	for i, record := range records {
		ingredient, err := parseIngredient(record)
		if err != nil {
			return nil, fmt.Errorf("ingredients CSV row %d: %w", i+2, err)
		}
		ingredients = append(ingredients, ingredient)
	}

	return ingredients, nil
}

// LoadMeals loads meals from a CSV file
func (l *Loader) LoadMeals(filename string) ([]MealRecord, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open meals file %s: %w", filename, err)
	}
	defer file.Close()

	return l.ReadMeals(file)
}

// ReadMeals parses a meals CSV with the header meal,description,ingredient,grams_per_portion.
// Each row is one ingredient line; rows sharing a meal name form one meal and the
// first non-empty description wins. A row with an empty ingredient declares a
// meal without lines.
func (l *Loader) ReadMeals(r io.Reader) ([]MealRecord, error) {
	records, err := readRecords(r, "meals", mealHeader)
	if err != nil {
		return nil, err
	}

	var meals []MealRecord
	index := make(map[string]int)
	for i, record := range records {
		name := strings.TrimSpace(record[0])
		if name == "" {
			return nil, fmt.Errorf("meals CSV row %d: meal name is required", i+2)
		}

		pos, ok := index[strings.ToLower(name)]
		if !ok {
			pos = len(meals)
			index[strings.ToLower(name)] = pos
			meals = append(meals, MealRecord{Name: name})
		}
		meal := &meals[pos]
		if meal.Description == "" {
			meal.Description = strings.TrimSpace(record[1])
		}

		ingredient := strings.TrimSpace(record[2])
		if ingredient == "" {
			continue
		}
		grams, err := decimal.NewFromString(strings.TrimSpace(record[3]))
		if err != nil {
			return nil, fmt.Errorf("meals CSV row %d: invalid grams_per_portion: %s", i+2, record[3])
		}
		meal.Lines = append(meal.Lines, MealLineRecord{IngredientName: ingredient, GramsPerPortion: grams})
	}

	return meals, nil
}

// readRecords reads every row, checks the header and returns the data rows
func readRecords(r io.Reader, kind string, expectedHeader []string) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s CSV: %w", kind, err)
	}

	if len(records) < 2 {
		return nil, fmt.Errorf("%s CSV must have header and at least one data row", kind)
	}

	header := records[0]
	if !validateHeader(header, expectedHeader) {
		return nil, fmt.Errorf("%s CSV header mismatch. Expected: %v, Got: %v", kind, expectedHeader, header)
	}

	for i, record := range records[1:] {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("%s CSV row %d: expected %d columns, got %d", kind, i+2, len(expectedHeader), len(record))
		}
	}

	return records[1:], nil
}

func validateHeader(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}

	for i, col := range expected {
		if strings.ToLower(strings.TrimSpace(actual[i])) != col {
			return false
		}
	}

	return true
}

func parseIngredient(record []string) (IngredientRecord, error) {
	name := strings.TrimSpace(record[0])
	if name == "" {
		return IngredientRecord{}, fmt.Errorf("name is required")
	}

	quantity, err := decimal.NewFromString(strings.TrimSpace(record[1]))
	if err != nil {
		return IngredientRecord{}, fmt.Errorf("invalid quantity: %s", record[1])
	}

	minQuantity := decimal.Zero
	if v := strings.TrimSpace(record[2]); v != "" {
		minQuantity, err = decimal.NewFromString(v)
		if err != nil {
			return IngredientRecord{}, fmt.Errorf("invalid min_quantity: %s", record[2])
		}
	}

	return IngredientRecord{Name: name, Quantity: quantity, MinQuantity: minQuantity}, nil
}
