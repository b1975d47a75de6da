package postgres

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/vsinha/kitchen/pkg/domain/entities"
)

type ingredientModel struct {
	ID          int64           `gorm:"primaryKey"`
	Name        string          `gorm:"type:varchar(255);not null;uniqueIndex"`
	Quantity    decimal.Decimal `gorm:"type:numeric(14,3);not null;default:0"`
	MinQuantity decimal.Decimal `gorm:"type:numeric(14,3);not null;default:0"`
	CreatedAt   time.Time       `gorm:"autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime"`
}

func (ingredientModel) TableName() string {
	return "ingredients"
}

type recipeModel struct {
	ID          int64             `gorm:"primaryKey"`
	Name        string            `gorm:"type:varchar(255);not null;uniqueIndex"`
	Description string            `gorm:"type:text"`
	CreatedBy   *int64            `gorm:"index"`
	Lines       []recipeLineModel `gorm:"foreignKey:MealID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time         `gorm:"autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"autoUpdateTime"`
}

func (recipeModel) TableName() string {
	return "meals"
}

type recipeLineModel struct {
	ID              int64           `gorm:"primaryKey"`
	MealID          int64           `gorm:"not null;uniqueIndex:idx_meal_ingredient"`
	IngredientID    int64           `gorm:"not null;uniqueIndex:idx_meal_ingredient;index"`
	Ingredient      ingredientModel `gorm:"constraint:OnDelete:RESTRICT"`
	GramsPerPortion decimal.Decimal `gorm:"column:quantity;type:numeric(14,3);not null"`
}

func (recipeLineModel) TableName() string {
	return "meal_ingredients"
}

type servingModel struct {
	ID        int64       `gorm:"primaryKey"`
	MealID    int64       `gorm:"not null;index"`
	Meal      recipeModel `gorm:"constraint:OnDelete:RESTRICT"`
	Portions  int64       `gorm:"not null"`
	ServedAt  time.Time   `gorm:"not null;index"`
	ServedBy  *int64      `gorm:"index"`
	CreatedAt time.Time   `gorm:"autoCreateTime"`
}

func (servingModel) TableName() string {
	return "meal_servings"
}

type deliveryModel struct {
	ID           int64           `gorm:"primaryKey"`
	IngredientID int64           `gorm:"not null;index"`
	Ingredient   ingredientModel `gorm:"constraint:OnDelete:RESTRICT"`
	Quantity     decimal.Decimal `gorm:"type:numeric(14,3);not null"`
	DeliveryDate time.Time       `gorm:"not null;index"`
	CreatedBy    *int64
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}

func (deliveryModel) TableName() string {
	return "ingredient_deliveries"
}

type reportModel struct {
	ID                    int64           `gorm:"primaryKey"`
	Month                 int             `gorm:"not null;uniqueIndex:idx_report_period"`
	Year                  int             `gorm:"not null;uniqueIndex:idx_report_period"`
	TotalPortionsServed   int64           `gorm:"not null;default:0"`
	TotalPortionsPossible int64           `gorm:"not null;default:0"`
	DifferencePercentage  decimal.Decimal `gorm:"type:numeric(10,4);not null;default:0"`
	CreatedAt             time.Time       `gorm:"autoCreateTime"`
	UpdatedAt             time.Time       `gorm:"autoUpdateTime"`
}

func (reportModel) TableName() string {
	return "monthly_reports"
}

type alertModel struct {
	ID                  int64     `gorm:"primaryKey"`
	Message             string    `gorm:"not null"`
	AlertType           string    `gorm:"type:varchar(32);not null;index"`
	IsRead              bool      `gorm:"not null;default:false;index"`
	RelatedIngredientID *int64    `gorm:"index"`
	RelatedReportID     *int64    `gorm:"index"`
	CreatedAt           time.Time `gorm:"autoCreateTime;index"`
}

func (alertModel) TableName() string {
	return "alerts"
}

type userModel struct {
	ID             int64  `gorm:"primaryKey"`
	Username       string `gorm:"type:varchar(255);not null;uniqueIndex"`
	Email          string `gorm:"type:varchar(255);not null;uniqueIndex"`
	HashedPassword string `gorm:"not null"`
	FullName       string
	Role           string    `gorm:"type:varchar(16);not null;default:'chef'"`
	IsActive       bool      `gorm:"not null;default:true"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
}

func (userModel) TableName() string {
	return "users"
}

func allModels() []interface{} {
	return []interface{}{
		&userModel{},
		&ingredientModel{},
		&recipeModel{},
		&recipeLineModel{},
		&servingModel{},
		&deliveryModel{},
		&reportModel{},
		&alertModel{},
	}
}

func optionalID(id int64) *int64 {
	if id == 0 {
		return nil
	}
	return &id
}

func idOrZero(id *int64) int64 {
	if id == nil {
		return 0
	}
	return *id
}

func toIngredientModel(i *entities.Ingredient) ingredientModel {
	return ingredientModel{
		ID:          int64(i.ID),
		Name:        i.Name,
		Quantity:    i.Quantity,
		MinQuantity: i.MinQuantity,
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	}
}

func (m ingredientModel) toEntity() *entities.Ingredient {
	return &entities.Ingredient{
		ID:          entities.IngredientID(m.ID),
		Name:        m.Name,
		Quantity:    m.Quantity,
		MinQuantity: m.MinQuantity,
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}
}

func toRecipeModel(r *entities.Recipe) recipeModel {
	lines := make([]recipeLineModel, 0, len(r.Lines))
	for _, line := range r.Lines {
		lines = append(lines, recipeLineModel{
			MealID:          int64(r.ID),
			IngredientID:    int64(line.IngredientID),
			GramsPerPortion: line.GramsPerPortion,
		})
	}
	return recipeModel{
		ID:          int64(r.ID),
		Name:        r.Name,
		Description: r.Description,
		CreatedBy:   optionalID(int64(r.CreatedBy)),
		Lines:       lines,
		CreatedAt:   r.CreatedAt,
	}
}

func (m recipeModel) toEntity() *entities.Recipe {
	lines := make([]entities.RecipeLine, 0, len(m.Lines))
	for _, line := range m.Lines {
		lines = append(lines, entities.RecipeLine{
			IngredientID:    entities.IngredientID(line.IngredientID),
			GramsPerPortion: line.GramsPerPortion,
		})
	}
	return &entities.Recipe{
		ID:          entities.RecipeID(m.ID),
		Name:        m.Name,
		Description: m.Description,
		CreatedBy:   entities.UserID(idOrZero(m.CreatedBy)),
		Lines:       lines,
		CreatedAt:   m.CreatedAt.UTC(),
	}
}

func (m servingModel) toEntity() *entities.Serving {
	return &entities.Serving{
		ID:       entities.ServingID(m.ID),
		RecipeID: entities.RecipeID(m.MealID),
		Portions: m.Portions,
		ServedAt: m.ServedAt.UTC(),
		ServedBy: entities.UserID(idOrZero(m.ServedBy)),
	}
}

func (m deliveryModel) toEntity() *entities.Delivery {
	return &entities.Delivery{
		ID:           entities.DeliveryID(m.ID),
		IngredientID: entities.IngredientID(m.IngredientID),
		Quantity:     m.Quantity,
		DeliveredAt:  m.DeliveryDate.UTC(),
		CreatedBy:    entities.UserID(idOrZero(m.CreatedBy)),
	}
}

func (m reportModel) toEntity() *entities.MonthlyReport {
	return &entities.MonthlyReport{
		ID:                    entities.ReportID(m.ID),
		Month:                 m.Month,
		Year:                  m.Year,
		TotalPortionsServed:   m.TotalPortionsServed,
		TotalPortionsPossible: m.TotalPortionsPossible,
		DifferencePercentage:  m.DifferencePercentage,
		CreatedAt:             m.CreatedAt.UTC(),
		UpdatedAt:             m.UpdatedAt.UTC(),
	}
}

func toAlertModel(a *entities.Alert) alertModel {
	m := alertModel{
		ID:        int64(a.ID),
		Message:   a.Message,
		AlertType: a.Kind.String(),
		IsRead:    a.IsRead,
		CreatedAt: a.CreatedAt,
	}
	if a.RelatedIngredientID != nil {
		id := int64(*a.RelatedIngredientID)
		m.RelatedIngredientID = &id
	}
	if a.RelatedReportID != nil {
		id := int64(*a.RelatedReportID)
		m.RelatedReportID = &id
	}
	return m
}

func (m alertModel) toEntity() (*entities.Alert, error) {
	kind, err := entities.ParseAlertKind(m.AlertType)
	if err != nil {
		return nil, err
	}
	a := &entities.Alert{
		ID:        entities.AlertID(m.ID),
		Kind:      kind,
		Message:   m.Message,
		IsRead:    m.IsRead,
		CreatedAt: m.CreatedAt.UTC(),
	}
	if m.RelatedIngredientID != nil {
		id := entities.IngredientID(*m.RelatedIngredientID)
		a.RelatedIngredientID = &id
	}
	if m.RelatedReportID != nil {
		id := entities.ReportID(*m.RelatedReportID)
		a.RelatedReportID = &id
	}
	return a, nil
}

func toUserModel(u *entities.User) userModel {
	return userModel{
		ID:             int64(u.ID),
		Username:       u.Username,
		Email:          u.Email,
		HashedPassword: u.PasswordHash,
		FullName:       u.FullName,
		Role:           u.Role.String(),
		IsActive:       u.Active,
		CreatedAt:      u.CreatedAt,
	}
}

func (m userModel) toEntity() (*entities.User, error) {
	role, err := entities.ParseRole(m.Role)
	if err != nil {
		return nil, err
	}
	return &entities.User{
		ID:           entities.UserID(m.ID),
		Username:     m.Username,
		Email:        m.Email,
		PasswordHash: m.HashedPassword,
		FullName:     m.FullName,
		Role:         role,
		Active:       m.IsActive,
		CreatedAt:    m.CreatedAt.UTC(),
	}, nil
}
