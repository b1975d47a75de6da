package api

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/vsinha/kitchen/pkg/application/dto"
	"github.com/vsinha/kitchen/pkg/domain/entities"
)

// Gram amounts leave the API as JSON numbers
func grams(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

type ingredientView struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Quantity    float64   `json:"quantity"`
	MinQuantity float64   `json:"min_quantity"`
	IsLow       bool      `json:"is_low"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func newIngredientView(i *entities.Ingredient) ingredientView {
	return ingredientView{
		ID:          int64(i.ID),
		Name:        i.Name,
		Quantity:    grams(i.Quantity),
		MinQuantity: grams(i.MinQuantity),
		IsLow:       i.IsLow(),
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	}
}

func newIngredientViews(ingredients []*entities.Ingredient) []ingredientView {
	views := make([]ingredientView, 0, len(ingredients))
	for _, i := range ingredients {
		views = append(views, newIngredientView(i))
	}
	return views
}

type deliveryView struct {
	ID           int64     `json:"id"`
	IngredientID int64     `json:"ingredient_id"`
	Quantity     float64   `json:"quantity"`
	DeliveryDate time.Time `json:"delivery_date"`
	CreatedBy    int64     `json:"created_by"`
}

func newDeliveryView(d *entities.Delivery) deliveryView {
	return deliveryView{
		ID:           int64(d.ID),
		IngredientID: int64(d.IngredientID),
		Quantity:     grams(d.Quantity),
		DeliveryDate: d.DeliveredAt,
		CreatedBy:    int64(d.CreatedBy),
	}
}

type mealIngredientView struct {
	IngredientID int64   `json:"ingredient_id"`
	Quantity     float64 `json:"quantity"`
}

type mealView struct {
	ID          int64                `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	CreatedBy   int64                `json:"created_by"`
	CreatedAt   time.Time            `json:"created_at"`
	Ingredients []mealIngredientView `json:"ingredients"`
}

func newMealView(r *entities.Recipe) mealView {
	lines := make([]mealIngredientView, 0, len(r.Lines))
	for _, line := range r.Lines {
		lines = append(lines, mealIngredientView{
			IngredientID: int64(line.IngredientID),
			Quantity:     grams(line.GramsPerPortion),
		})
	}
	return mealView{
		ID:          int64(r.ID),
		Name:        r.Name,
		Description: r.Description,
		CreatedBy:   int64(r.CreatedBy),
		CreatedAt:   r.CreatedAt,
		Ingredients: lines,
	}
}

type limitingView struct {
	IngredientID   int64   `json:"ingredient_id"`
	IngredientName string  `json:"ingredient_name"`
	Available      float64 `json:"available"`
	Required       float64 `json:"required_per_portion"`
	MaxPortions    int64   `json:"max_portions"`
}

func newLimitingViews(limiting []entities.LimitingIngredient) []limitingView {
	views := make([]limitingView, 0, len(limiting))
	for _, l := range limiting {
		views = append(views, limitingView{
			IngredientID:   int64(l.IngredientID),
			IngredientName: l.Name,
			Available:      grams(l.Available),
			Required:       grams(l.GramsPerPortion),
			MaxPortions:    l.MaxPortions,
		})
	}
	return views
}

type portionsView struct {
	MealID              int64          `json:"meal_id"`
	MealName            string         `json:"meal_name"`
	AvailablePortions   int64          `json:"available_portions"`
	LimitingIngredients []limitingView `json:"limiting_ingredients"`
}

func newPortionsView(a entities.PortionAvailability) portionsView {
	return portionsView{
		MealID:              int64(a.RecipeID),
		MealName:            a.RecipeName,
		AvailablePortions:   a.AvailablePortions,
		LimitingIngredients: newLimitingViews(a.Limiting),
	}
}

type impactView struct {
	MealID             int64   `json:"meal_id"`
	MealName           string  `json:"meal_name"`
	QuantityPerPortion float64 `json:"quantity_per_portion"`
	MaxFromIngredient  int64   `json:"max_portions_from_ingredient"`
	AvailablePortions  int64   `json:"available_portions"`
	IsLimiting         bool    `json:"is_limiting"`
}

func newImpactViews(impacts []entities.IngredientImpact) []impactView {
	views := make([]impactView, 0, len(impacts))
	for _, i := range impacts {
		views = append(views, impactView{
			MealID:             int64(i.RecipeID),
			MealName:           i.RecipeName,
			QuantityPerPortion: grams(i.GramsPerPortion),
			MaxFromIngredient:  i.MaxFromIngredient,
			AvailablePortions:  i.AvailablePortions,
			IsLimiting:         i.IsLimiting,
		})
	}
	return views
}

type servingView struct {
	ID       int64     `json:"id"`
	MealID   int64     `json:"meal_id"`
	Portions int64     `json:"portions"`
	ServedBy int64     `json:"served_by"`
	ServedAt time.Time `json:"served_at"`
}

func newServingView(s *entities.Serving) servingView {
	return servingView{
		ID:       int64(s.ID),
		MealID:   int64(s.RecipeID),
		Portions: s.Portions,
		ServedBy: int64(s.ServedBy),
		ServedAt: s.ServedAt,
	}
}

func newServingViews(servings []*entities.Serving) []servingView {
	views := make([]servingView, 0, len(servings))
	for _, s := range servings {
		views = append(views, newServingView(s))
	}
	return views
}

type reportView struct {
	ID                    int64     `json:"id"`
	Month                 int       `json:"month"`
	Year                  int       `json:"year"`
	TotalPortionsServed   int64     `json:"total_portions_served"`
	TotalPortionsPossible int64     `json:"total_portions_possible"`
	DifferencePercentage  float64   `json:"difference_percentage"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

func newReportView(r *entities.MonthlyReport) reportView {
	return reportView{
		ID:                    int64(r.ID),
		Month:                 r.Month,
		Year:                  r.Year,
		TotalPortionsServed:   r.TotalPortionsServed,
		TotalPortionsPossible: r.TotalPortionsPossible,
		DifferencePercentage:  r.DifferencePercentage.InexactFloat64(),
		CreatedAt:             r.CreatedAt,
		UpdatedAt:             r.UpdatedAt,
	}
}

type dailyPortionsView struct {
	Date     string `json:"date"`
	Portions int64  `json:"portions"`
}

type dailyGramsView struct {
	Date     string  `json:"date"`
	Quantity float64 `json:"quantity"`
}

const dateLayout = "2006-01-02"

func newDailyPortionsViews(days []dto.DailyPortions) []dailyPortionsView {
	views := make([]dailyPortionsView, 0, len(days))
	for _, d := range days {
		views = append(views, dailyPortionsView{Date: d.Date.Format(dateLayout), Portions: d.Portions})
	}
	return views
}

func newDailyGramsViews(days []dto.DailyGrams) []dailyGramsView {
	views := make([]dailyGramsView, 0, len(days))
	for _, d := range days {
		views = append(views, dailyGramsView{Date: d.Date.Format(dateLayout), Quantity: grams(d.Grams)})
	}
	return views
}

type mealSummaryView struct {
	MealID        int64               `json:"meal_id"`
	MealName      string              `json:"meal_name"`
	TotalPortions int64               `json:"total_portions"`
	DailyData     []dailyPortionsView `json:"daily_data"`
}

type ingredientSummaryView struct {
	IngredientID   int64   `json:"ingredient_id"`
	IngredientName string  `json:"ingredient_name"`
	TotalUsage     float64 `json:"total_usage"`
	TotalDelivery  float64 `json:"total_delivery"`
}

type detailedReportView struct {
	Month                 int                     `json:"month"`
	MonthName             string                  `json:"month_name"`
	Year                  int                     `json:"year"`
	TotalPortionsServed   int64                   `json:"total_portions_served"`
	TotalPortionsPossible int64                   `json:"total_portions_possible"`
	DifferencePercentage  float64                 `json:"difference_percentage"`
	MealsData             []mealSummaryView       `json:"meals_data"`
	IngredientsData       []ingredientSummaryView `json:"ingredients_data"`
}

func newDetailedReportView(d *dto.MonthlyReportDetail) detailedReportView {
	meals := make([]mealSummaryView, 0, len(d.Meals))
	for _, m := range d.Meals {
		meals = append(meals, mealSummaryView{
			MealID:        int64(m.RecipeID),
			MealName:      m.RecipeName,
			TotalPortions: m.TotalPortions,
			DailyData:     newDailyPortionsViews(m.Daily),
		})
	}
	ingredients := make([]ingredientSummaryView, 0, len(d.Ingredients))
	for _, i := range d.Ingredients {
		ingredients = append(ingredients, ingredientSummaryView{
			IngredientID:   int64(i.IngredientID),
			IngredientName: i.IngredientName,
			TotalUsage:     grams(i.TotalUsage),
			TotalDelivery:  grams(i.TotalDelivery),
		})
	}
	return detailedReportView{
		Month:                 d.Report.Month,
		MonthName:             d.MonthName,
		Year:                  d.Report.Year,
		TotalPortionsServed:   d.Report.TotalPortionsServed,
		TotalPortionsPossible: d.Report.TotalPortionsPossible,
		DifferencePercentage:  d.Report.DifferencePercentage.InexactFloat64(),
		MealsData:             meals,
		IngredientsData:       ingredients,
	}
}

type usageView struct {
	IngredientID   int64            `json:"ingredient_id"`
	IngredientName string           `json:"ingredient_name"`
	UsageData      []dailyGramsView `json:"usage_data"`
	DeliveryData   []dailyGramsView `json:"delivery_data"`
}

type mealServingsView struct {
	MealID      int64               `json:"meal_id"`
	MealName    string              `json:"meal_name"`
	ServingData []dailyPortionsView `json:"serving_data"`
}

type alertView struct {
	ID                  int64     `json:"id"`
	Message             string    `json:"message"`
	AlertType           string    `json:"alert_type"`
	IsRead              bool      `json:"is_read"`
	RelatedIngredientID *int64    `json:"related_ingredient_id"`
	RelatedReportID     *int64    `json:"related_report_id"`
	CreatedAt           time.Time `json:"created_at"`
}

func newAlertView(a *entities.Alert) alertView {
	v := alertView{
		ID:        int64(a.ID),
		Message:   a.Message,
		AlertType: a.Kind.String(),
		IsRead:    a.IsRead,
		CreatedAt: a.CreatedAt,
	}
	if a.RelatedIngredientID != nil {
		id := int64(*a.RelatedIngredientID)
		v.RelatedIngredientID = &id
	}
	if a.RelatedReportID != nil {
		id := int64(*a.RelatedReportID)
		v.RelatedReportID = &id
	}
	return v
}

type userView struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func newUserView(u *entities.User) userView {
	return userView{
		ID:        int64(u.ID),
		Username:  u.Username,
		Email:     u.Email,
		FullName:  u.FullName,
		Role:      u.Role.String(),
		IsActive:  u.Active,
		CreatedAt: u.CreatedAt,
	}
}
