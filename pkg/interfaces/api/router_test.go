package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/vsinha/kitchen/pkg/application/services/alerting"
	"github.com/vsinha/kitchen/pkg/application/services/auth"
	"github.com/vsinha/kitchen/pkg/application/services/catalog"
	"github.com/vsinha/kitchen/pkg/application/services/reporting"
	"github.com/vsinha/kitchen/pkg/application/services/serving"
	"github.com/vsinha/kitchen/pkg/application/services/stock"
	"github.com/vsinha/kitchen/pkg/application/services/sweep"
	"github.com/vsinha/kitchen/pkg/domain/entities"
	domain "github.com/vsinha/kitchen/pkg/domain/services"
	"github.com/vsinha/kitchen/pkg/infrastructure/realtime"
	testhelpers "github.com/vsinha/kitchen/pkg/infrastructure/testing"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type testServer struct {
	router  *gin.Engine
	kitchen *testhelpers.Kitchen
	auth    *auth.Service
	chef    string
	manager string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	now := testhelpers.FixedClock(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))
	kitchen := testhelpers.BuildSoupKitchen(t, now)
	logger := zap.NewNop()
	calculator := domain.NewPortionCalculator(domain.DefaultPortionPolicy())

	alerts := alerting.NewService(kitchen.Store.Alerts(), nil, logger)
	authService := auth.NewService(kitchen.Store.Users(), "router-secret", time.Hour, logger).WithCost(bcrypt.MinCost)
	services := Services{
		Auth:      authService,
		Stock:     stock.NewService(kitchen.Store, alerts, nil, logger),
		Catalog:   catalog.NewService(kitchen.Store, calculator, logger),
		Serving:   serving.NewService(kitchen.Store, calculator, alerts, nil, logger),
		Reporting: reporting.NewService(kitchen.Store, calculator, alerts, nil, reporting.DefaultSuspiciousThreshold, logger),
		Alerts:    alerts,
		Sweeper:   sweep.NewSweeper(kitchen.Store.Ingredients(), alerts, 0, logger),
		Hub:       realtime.NewHub(logger),
	}

	chefToken, err := authService.IssueToken(kitchen.Chef)
	if err != nil {
		t.Fatalf("Failed to issue chef token: %v", err)
	}
	managerToken, err := authService.IssueToken(kitchen.Manager)
	if err != nil {
		t.Fatalf("Failed to issue manager token: %v", err)
	}

	return &testServer{
		router:  NewRouter(services, logger),
		kitchen: kitchen,
		auth:    authService,
		chef:    chefToken,
		manager: managerToken,
	}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("Failed to decode %q: %v", w.Body.String(), err)
	}
}

func TestAuthentication(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name     string
		token    string
		expected int
	}{
		{"missing token", "", http.StatusUnauthorized},
		{"garbage token", "not-a-jwt", http.StatusUnauthorized},
		{"chef token", s.chef, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodGet, "/api/v1/ingredients", tt.token, nil)
			if w.Code != tt.expected {
				t.Errorf("Expected status %d, got %d: %s", tt.expected, w.Code, w.Body.String())
			}
		})
	}
}

func TestRoleChecksRunBeforeLookups(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
	}{
		{"adjust unknown ingredient", http.MethodPost, "/api/v1/ingredients/999/adjust", gin.H{"delta": -5}},
		{"delete unknown meal", http.MethodDelete, "/api/v1/meals/999", nil},
		{"servings of unknown user", http.MethodGet, "/api/v1/meal-servings/by-user/999", nil},
		{"list users", http.MethodGet, "/api/v1/users", nil},
		{"mark unknown alert", http.MethodPut, "/api/v1/reports/alerts/999/mark-read", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, tt.method, tt.path, s.chef, tt.body)
			if w.Code != http.StatusForbidden {
				t.Errorf("Expected 403 for chef, got %d: %s", w.Code, w.Body.String())
			}
		})
	}

	w := s.do(t, http.MethodDelete, "/api/v1/meals/999", s.manager, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for manager, got %d", w.Code)
	}
}

func TestServeMeal(t *testing.T) {
	s := newTestServer(t)
	soup := s.kitchen.Recipes["soup"]

	w := s.do(t, http.MethodPost, "/api/v1/meal-servings", s.chef, gin.H{"meal_id": soup.ID, "portions": 2})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var served servingView
	decode(t, w, &served)
	if served.Portions != 2 || served.ServedBy != int64(s.kitchen.Chef.ID) {
		t.Errorf("Expected 2 portions served by the chef, got %+v", served)
	}

	w = s.do(t, http.MethodPost, "/api/v1/meal-servings", s.chef, gin.H{"meal_id": soup.ID, "portions": 1})
	if w.Code != http.StatusConflict {
		t.Fatalf("Expected 409, got %d: %s", w.Code, w.Body.String())
	}
	var refused struct {
		Detail insufficientStockView `json:"detail"`
	}
	decode(t, w, &refused)
	if refused.Detail.AvailablePortions != 0 || refused.Detail.RequestedPortions != 1 {
		t.Errorf("Expected 0 available of 1 requested, got %+v", refused.Detail)
	}
	if len(refused.Detail.LimitingIngredients) == 0 || refused.Detail.LimitingIngredients[0].IngredientName != "onions" {
		t.Errorf("Expected onions to be limiting, got %+v", refused.Detail.LimitingIngredients)
	}

	if got := s.kitchen.Quantity(t, "onions"); !got.Equal(testhelpers.Grams(20)) {
		t.Errorf("Expected 20g onions left, got %s", got)
	}

	w = s.do(t, http.MethodPost, "/api/v1/meal-servings", s.chef, gin.H{"meal_id": soup.ID, "portions": 0})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for zero portions, got %d", w.Code)
	}
}

func TestIngredientEndpoints(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/ingredients", s.manager, gin.H{"name": "basil", "quantity": 40.5, "min_quantity": 10})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var basil ingredientView
	decode(t, w, &basil)
	if basil.Quantity != 40.5 {
		t.Errorf("Expected 40.5g, got %v", basil.Quantity)
	}

	tests := []struct {
		name     string
		method   string
		path     string
		body     interface{}
		expected int
	}{
		{"duplicate name", http.MethodPost, "/api/v1/ingredients", gin.H{"name": "basil", "quantity": 1}, http.StatusConflict},
		{"negative quantity", http.MethodPost, "/api/v1/ingredients", gin.H{"name": "thyme", "quantity": -1}, http.StatusBadRequest},
		{"malformed id", http.MethodGet, "/api/v1/ingredients/abc", nil, http.StatusBadRequest},
		{"unknown id", http.MethodGet, "/api/v1/ingredients/999", nil, http.StatusNotFound},
		{"overdraw correction", http.MethodPost, "/api/v1/ingredients/" + itoa(basil.ID) + "/adjust", gin.H{"delta": -41}, http.StatusBadRequest},
		{"spoilage correction", http.MethodPost, "/api/v1/ingredients/" + itoa(basil.ID) + "/adjust", gin.H{"delta": -35, "reason": "spoiled"}, http.StatusOK},
		{"delete referenced", http.MethodDelete, "/api/v1/ingredients/" + itoa(int64(s.kitchen.Ingredients["onions"].ID)), nil, http.StatusConflict},
		{"delivery", http.MethodPost, "/api/v1/ingredients/delivery", gin.H{"ingredient_id": basil.ID, "quantity": 100}, http.StatusCreated},
		{"delivery of nothing", http.MethodPost, "/api/v1/ingredients/delivery", gin.H{"ingredient_id": basil.ID, "quantity": 0}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, tt.method, tt.path, s.manager, tt.body)
			if w.Code != tt.expected {
				t.Errorf("Expected status %d, got %d: %s", tt.expected, w.Code, w.Body.String())
			}
		})
	}

	w = s.do(t, http.MethodGet, "/api/v1/ingredients/"+itoa(basil.ID), s.chef, nil)
	decode(t, w, &basil)
	if basil.Quantity != 105.5 || basil.IsLow {
		t.Errorf("Expected 105.5g and not low, got %+v", basil)
	}

	w = s.do(t, http.MethodGet, "/api/v1/ingredients/delivery?ingredient_id="+itoa(basil.ID), s.chef, nil)
	var deliveries []deliveryView
	decode(t, w, &deliveries)
	if len(deliveries) != 1 || deliveries[0].Quantity != 100 {
		t.Errorf("Expected one delivery of 100g, got %+v", deliveries)
	}
}

func TestMealEndpoints(t *testing.T) {
	s := newTestServer(t)
	rice := s.kitchen.Ingredients["rice"]

	w := s.do(t, http.MethodGet, "/api/v1/meals/portions", s.chef, nil)
	var portions []portionsView
	decode(t, w, &portions)
	available := make(map[string]int64)
	for _, p := range portions {
		available[p.MealName] = p.AvailablePortions
	}
	if available["soup"] != 2 || available["pilaf"] != 6 {
		t.Errorf("Expected soup 2 and pilaf 6, got %v", available)
	}

	w = s.do(t, http.MethodPost, "/api/v1/meals", s.manager, gin.H{
		"name":        "plain rice",
		"ingredients": []gin.H{{"ingredient_id": rice.ID, "quantity": 250}},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var meal mealView
	decode(t, w, &meal)

	w = s.do(t, http.MethodPut, "/api/v1/meals/"+itoa(meal.ID), s.manager, gin.H{"description": "steamed"})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	decode(t, w, &meal)
	if meal.Description != "steamed" || len(meal.Ingredients) != 1 {
		t.Errorf("Expected description update to keep the ingredient list, got %+v", meal)
	}

	w = s.do(t, http.MethodGet, "/api/v1/meal-servings/calculate-portions/"+itoa(meal.ID), s.chef, nil)
	var calc portionsView
	decode(t, w, &calc)
	if calc.AvailablePortions != 8 {
		t.Errorf("Expected 8 portions of plain rice, got %d", calc.AvailablePortions)
	}

	w = s.do(t, http.MethodPost, "/api/v1/meals", s.manager, gin.H{
		"name":        "double rice",
		"ingredients": []gin.H{{"ingredient_id": rice.ID, "quantity": 100}, {"ingredient_id": rice.ID, "quantity": 50}},
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for a repeated ingredient, got %d", w.Code)
	}
}

func TestReportEndpoints(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name     string
		path     string
		expected int
	}{
		{"invalid month", "/api/v1/reports/monthly/2025/13", http.StatusBadRequest},
		{"non numeric year", "/api/v1/reports/monthly/next/3", http.StatusBadRequest},
		{"lazy report", "/api/v1/reports/monthly/2025/3", http.StatusOK},
		{"detailed report", "/api/v1/reports/monthly/2025/3/detailed", http.StatusOK},
		{"usage", "/api/v1/reports/ingredient/" + itoa(int64(s.kitchen.Ingredients["onions"].ID)) + "/usage?start_date=2025-03-01&end_date=2025-03-07", http.StatusOK},
		{"reversed range", "/api/v1/reports/meal/" + itoa(int64(s.kitchen.Recipes["soup"].ID)) + "/servings?start_date=2025-03-07&end_date=2025-03-01", http.StatusBadRequest},
		{"bad date", "/api/v1/reports/meal/1/servings?start_date=yesterday", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodGet, tt.path, s.chef, nil)
			if w.Code != tt.expected {
				t.Errorf("Expected status %d, got %d: %s", tt.expected, w.Code, w.Body.String())
			}
		})
	}

	w := s.do(t, http.MethodGet, "/api/v1/reports/ingredient/"+itoa(int64(s.kitchen.Ingredients["onions"].ID))+"/usage?start_date=2025-03-01&end_date=2025-03-07", s.chef, nil)
	var usage usageView
	decode(t, w, &usage)
	if len(usage.UsageData) != 7 || len(usage.DeliveryData) != 7 {
		t.Errorf("Expected 7 days of usage and deliveries, got %d and %d", len(usage.UsageData), len(usage.DeliveryData))
	}
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)
	admin := entities.Principal{Role: entities.RoleAdmin}
	if _, err := s.auth.CreateUser(context.Background(), admin, auth.UserInput{
		Username: "sous", Email: "sous@kitchen.test", Password: "sous-password", Role: entities.RoleChef,
	}); err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}

	login := func(username, password string) *httptest.ResponseRecorder {
		form := url.Values{"username": {username}, "password": {password}}
		req := httptest.NewRequest(http.MethodPost, "/api/v1/login/access-token", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)
		return w
	}

	w := login("sous", "sous-password")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var token struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	decode(t, w, &token)
	if token.TokenType != "bearer" || token.AccessToken == "" {
		t.Fatalf("Expected a bearer token, got %+v", token)
	}

	w = s.do(t, http.MethodGet, "/api/v1/users/me", token.AccessToken, nil)
	var me userView
	decode(t, w, &me)
	if me.Username != "sous" || me.Role != "chef" {
		t.Errorf("Expected sous as chef, got %+v", me)
	}

	if w := login("sous", "wrong-password"); w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for a wrong password, got %d", w.Code)
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/health", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if w.Header().Get(requestIDHeader) == "" {
		t.Error("Expected a request id header")
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func TestSubscribeResolvesRole(t *testing.T) {
	s := newTestServer(t)
	server := httptest.NewServer(s.router)
	defer server.Close()

	tests := []struct {
		name     string
		query    string
		expected string
	}{
		{"no token", "", "Connected to real-time updates. Role: guest"},
		{"bad token", "?token=garbage", "Connected to real-time updates. Role: guest"},
		{"manager token", "?token=" + s.manager, "Connected to real-time updates. Role: manager"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/tablet-1" + tt.query
			conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
			if err != nil {
				t.Fatalf("Failed to dial: %v", err)
			}
			defer conn.Close()

			_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
			_, greeting, err := conn.ReadMessage()
			if err != nil {
				t.Fatalf("Failed to read greeting: %v", err)
			}
			if string(greeting) != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, greeting)
			}
		})
	}
}
