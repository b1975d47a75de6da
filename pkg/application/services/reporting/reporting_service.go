// Package reporting aggregates serving and delivery history into monthly
// reports and per-day series.
package reporting

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vsinha/kitchen/pkg/application/dto"
	"github.com/vsinha/kitchen/pkg/application/services/catalog"
	"github.com/vsinha/kitchen/pkg/domain/entities"
	"github.com/vsinha/kitchen/pkg/domain/repositories"
	domain "github.com/vsinha/kitchen/pkg/domain/services"
	"github.com/vsinha/kitchen/pkg/infrastructure/events"
	"go.uber.org/zap"
)

// MaxRangeDays bounds the days covered by one daily series request
const MaxRangeDays = 366

// DefaultSuspiciousThreshold is the difference percentage above which a month is flagged
var DefaultSuspiciousThreshold = decimal.NewFromInt(15)

// SuspicionNotifier is told about reports whose difference exceeds the threshold
type SuspicionNotifier interface {
	SuspiciousUsage(ctx context.Context, report entities.MonthlyReport) error
}

// Service builds reports
type Service struct {
	store      repositories.Store
	calculator *domain.PortionCalculator
	notifier   SuspicionNotifier
	publisher  events.Publisher
	logger     *zap.Logger
	threshold  decimal.Decimal
	now        func() time.Time
}

// NewService creates a reporting service. A non-positive threshold falls back
// to DefaultSuspiciousThreshold.
func NewService(store repositories.Store, calculator *domain.PortionCalculator, notifier SuspicionNotifier, publisher events.Publisher, threshold decimal.Decimal, logger *zap.Logger) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if !threshold.IsPositive() {
		threshold = DefaultSuspiciousThreshold
	}
	return &Service{
		store:      store,
		calculator: calculator,
		notifier:   notifier,
		publisher:  publisher,
		logger:     logger,
		threshold:  threshold,
		now:        time.Now,
	}
}

// WithClock replaces the service clock
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// BuildMonthlyReport computes and stores the report for a month, replacing
// any earlier version. Served portions come from the month's history while
// possible portions are computed against current stock.
func (s *Service) BuildMonthlyReport(ctx context.Context, month, year int) (*entities.MonthlyReport, error) {
	if err := entities.ValidatePeriod(month, year); err != nil {
		return nil, err
	}
	from, to := entities.MonthBounds(month, year)

	served, err := s.store.History().PortionsServed(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to sum servings: %w", err)
	}

	recipes, err := s.store.Recipes().ListRecipes(ctx, repositories.Page{})
	if err != nil {
		return nil, fmt.Errorf("failed to list meals: %w", err)
	}
	lookup, err := catalog.Snapshot(ctx, s.store.Ingredients())
	if err != nil {
		return nil, err
	}
	possible := s.calculator.TotalPossible(recipes, lookup)

	report := &entities.MonthlyReport{
		Month:                 month,
		Year:                  year,
		TotalPortionsServed:   served,
		TotalPortionsPossible: possible,
		DifferencePercentage:  entities.DifferencePercentage(possible, served),
	}
	if err := s.store.Reports().UpsertReport(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to store report: %w", err)
	}

	s.logger.Info("monthly report generated",
		zap.Int("month", month),
		zap.Int("year", year),
		zap.Int64("served", served),
		zap.Int64("possible", possible),
		zap.String("difference", report.DifferencePercentage.StringFixed(2)),
	)
	s.publisher.Publish(events.NewReportGenerated(*report))

	if report.DifferencePercentage.GreaterThan(s.threshold) && s.notifier != nil {
		if err := s.notifier.SuspiciousUsage(ctx, *report); err != nil {
			s.logger.Warn("failed to emit suspicious usage alert", zap.Int64("report_id", int64(report.ID)), zap.Error(err))
		}
	}

	return report, nil
}

// GetMonthlyReport returns the stored report, building it when absent
func (s *Service) GetMonthlyReport(ctx context.Context, month, year int) (*entities.MonthlyReport, error) {
	if err := entities.ValidatePeriod(month, year); err != nil {
		return nil, err
	}
	report, err := s.store.Reports().GetReport(ctx, month, year)
	if err == nil {
		return report, nil
	}
	if !errors.Is(err, entities.ErrNotFound) {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}
	return s.BuildMonthlyReport(ctx, month, year)
}

// DetailedMonthlyReport regenerates the month's report and breaks it down by
// meal and by ingredient
func (s *Service) DetailedMonthlyReport(ctx context.Context, month, year int) (*dto.MonthlyReportDetail, error) {
	report, err := s.BuildMonthlyReport(ctx, month, year)
	if err != nil {
		return nil, err
	}
	from, to := entities.MonthBounds(month, year)
	history := s.store.History()

	byRecipe, err := history.PortionsByRecipe(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to sum servings by meal: %w", err)
	}
	meals := make([]dto.MealSummary, 0, len(byRecipe))
	for _, entry := range byRecipe {
		recipe, err := s.store.Recipes().GetRecipe(ctx, entry.RecipeID)
		if err != nil {
			return nil, err
		}
		daily, err := history.DailyPortions(ctx, entry.RecipeID, from, to)
		if err != nil {
			return nil, fmt.Errorf("failed to read daily servings: %w", err)
		}
		meals = append(meals, dto.MealSummary{
			RecipeID:      recipe.ID,
			RecipeName:    recipe.Name,
			TotalPortions: entry.Portions,
			Daily:         fillCounts(daily, from, to),
		})
	}
	sort.SliceStable(meals, func(i, j int) bool {
		return meals[i].TotalPortions > meals[j].TotalPortions
	})

	movements, err := history.IngredientMovements(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to sum ingredient movements: %w", err)
	}
	ingredients := make([]dto.IngredientSummary, 0, len(movements))
	for _, movement := range movements {
		ingredient, err := s.store.Ingredients().GetIngredient(ctx, movement.IngredientID)
		if err != nil {
			return nil, err
		}
		ingredients = append(ingredients, dto.IngredientSummary{
			IngredientID:   ingredient.ID,
			IngredientName: ingredient.Name,
			TotalUsage:     movement.Used,
			TotalDelivery:  movement.Delivered,
		})
	}
	sort.SliceStable(ingredients, func(i, j int) bool {
		return ingredients[i].TotalUsage.GreaterThan(ingredients[j].TotalUsage)
	})

	return &dto.MonthlyReportDetail{
		Report:      *report,
		MonthName:   time.Month(month).String(),
		Meals:       meals,
		Ingredients: ingredients,
	}, nil
}

// IngredientUsage returns daily usage and deliveries of an ingredient for every
// day from start to end inclusive. Zero dates default to today.
func (s *Service) IngredientUsage(ctx context.Context, id entities.IngredientID, start, end time.Time) (*dto.IngredientUsageSeries, error) {
	from, to, err := s.dayRange(start, end)
	if err != nil {
		return nil, err
	}
	ingredient, err := s.store.Ingredients().GetIngredient(ctx, id)
	if err != nil {
		return nil, err
	}

	usage, err := s.store.History().DailyIngredientUsage(ctx, id, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to read ingredient usage: %w", err)
	}
	deliveries, err := s.store.History().DailyDeliveries(ctx, id, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to read deliveries: %w", err)
	}

	return &dto.IngredientUsageSeries{
		IngredientID:   ingredient.ID,
		IngredientName: ingredient.Name,
		Usage:          fillAmounts(usage, from, to),
		Deliveries:     fillAmounts(deliveries, from, to),
	}, nil
}

// MealServings returns portions served of a meal for every day from start to
// end inclusive. Zero dates default to today.
func (s *Service) MealServings(ctx context.Context, id entities.RecipeID, start, end time.Time) (*dto.MealServingSeries, error) {
	from, to, err := s.dayRange(start, end)
	if err != nil {
		return nil, err
	}
	recipe, err := s.store.Recipes().GetRecipe(ctx, id)
	if err != nil {
		return nil, err
	}

	daily, err := s.store.History().DailyPortions(ctx, id, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to read daily servings: %w", err)
	}

	return &dto.MealServingSeries{
		RecipeID:   recipe.ID,
		RecipeName: recipe.Name,
		Servings:   fillCounts(daily, from, to),
	}, nil
}

// dayRange turns an inclusive date range into [from, to) at UTC midnights
func (s *Service) dayRange(start, end time.Time) (time.Time, time.Time, error) {
	today := truncateDay(s.now())
	if start.IsZero() {
		start = today
	}
	if end.IsZero() {
		end = today
	}
	from, last := truncateDay(start), truncateDay(end)
	if from.After(last) {
		return time.Time{}, time.Time{}, entities.NewValidationError(
			fmt.Sprintf("start date %s is after end date %s", from.Format(time.DateOnly), last.Format(time.DateOnly)))
	}
	if !last.Before(from.AddDate(0, 0, MaxRangeDays)) {
		return time.Time{}, time.Time{}, entities.NewValidationError(
			fmt.Sprintf("date range %s to %s exceeds %d days", from.Format(time.DateOnly), last.Format(time.DateOnly), MaxRangeDays))
	}
	return from, last.AddDate(0, 0, 1), nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func fillCounts(rows []repositories.DailyCount, from, to time.Time) []dto.DailyPortions {
	byDay := make(map[time.Time]int64, len(rows))
	for _, row := range rows {
		byDay[truncateDay(row.Day)] += row.Total
	}
	series := make([]dto.DailyPortions, 0)
	for day := from; day.Before(to); day = day.AddDate(0, 0, 1) {
		series = append(series, dto.DailyPortions{Date: day, Portions: byDay[day]})
	}
	return series
}

func fillAmounts(rows []repositories.DailyAmount, from, to time.Time) []dto.DailyGrams {
	byDay := make(map[time.Time]decimal.Decimal, len(rows))
	for _, row := range rows {
		day := truncateDay(row.Day)
		byDay[day] = byDay[day].Add(row.Total)
	}
	series := make([]dto.DailyGrams, 0)
	for day := from; day.Before(to); day = day.AddDate(0, 0, 1) {
		series = append(series, dto.DailyGrams{Date: day, Grams: byDay[day]})
	}
	return series
}
