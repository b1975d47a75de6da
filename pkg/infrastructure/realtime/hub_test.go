package realtime

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/vsinha/kitchen/pkg/domain/entities"
	"github.com/vsinha/kitchen/pkg/infrastructure/events"
	"go.uber.org/zap"
)

func startHub(t *testing.T, principal entities.Principal) (*Hub, *websocket.Conn) {
	t.Helper()
	hub := NewHub(zap.NewNop())
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.Accept(w, r, "client-1", principal)
	}))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Failed to dial hub: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return hub, conn
}

func readText(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read message: %v", err)
	}
	return string(data)
}

func TestHub_GreetsAndAcknowledges(t *testing.T) {
	_, conn := startHub(t, entities.Guest())

	if got := readText(t, conn); got != "Connected to real-time updates. Role: guest" {
		t.Errorf("Unexpected greeting: %q", got)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte("hello")); err != nil {
		t.Fatalf("Failed to write: %v", err)
	}
	if got := readText(t, conn); got != "Message received" {
		t.Errorf("Expected acknowledgement, got %q", got)
	}
}

func TestHub_BroadcastsDomainEvents(t *testing.T) {
	hub, conn := startHub(t, entities.Principal{UserID: 1, Username: "cook", Role: entities.RoleChef})
	if got := readText(t, conn); !strings.HasSuffix(got, "Role: chef") {
		t.Fatalf("Unexpected greeting: %q", got)
	}

	onions := entities.Ingredient{ID: 4, Name: "onions", Quantity: decimal.RequireFromString("20.5"), MinQuantity: decimal.NewFromInt(50)}
	tests := []struct {
		name     string
		event    events.Event
		wantType string
		wantKey  string
	}{
		{"inventory", events.NewInventoryUpdated(onions, "serving"), "inventory_update", "quantity"},
		{"low stock", events.NewStockLow(onions), "low_stock_alert", "current_quantity"},
		{"alert", events.NewAlertRaised(entities.Alert{ID: 9, Kind: entities.AlertUsageSuspicious, Message: "check"}), "alert", "alert_type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !hub.CanHandle(tt.event.Type()) {
				t.Fatalf("Expected hub to handle %s", tt.event.Type())
			}
			if err := hub.Handle(tt.event); err != nil {
				t.Fatalf("Handle failed: %v", err)
			}

			var msg struct {
				Type string                 `json:"type"`
				Data map[string]interface{} `json:"data"`
			}
			if err := json.Unmarshal([]byte(readText(t, conn)), &msg); err != nil {
				t.Fatalf("Expected JSON message: %v", err)
			}
			if msg.Type != tt.wantType {
				t.Errorf("Expected type %s, got %s", tt.wantType, msg.Type)
			}
			if _, ok := msg.Data[tt.wantKey]; !ok {
				t.Errorf("Expected data to contain %s, got %v", tt.wantKey, msg.Data)
			}
			if _, ok := msg.Data["timestamp"]; !ok {
				t.Errorf("Expected a timestamp, got %v", msg.Data)
			}
		})
	}

	if hub.CanHandle(events.ServingRecordedEvent) {
		t.Error("Expected serving events not to be pushed")
	}
}

func TestToMessage_InventoryShape(t *testing.T) {
	event := events.NewInventoryUpdated(entities.Ingredient{ID: 2, Name: "rice", Quantity: decimal.RequireFromString("1100.25")}, "delivery")
	msg, ok := ToMessage(event)
	if !ok {
		t.Fatal("Expected inventory event to map to a message")
	}
	data := msg.Data.(map[string]interface{})
	if data["ingredient_id"] != int64(2) || data["ingredient_name"] != "rice" || data["quantity"] != 1100.25 {
		t.Errorf("Unexpected data: %v", data)
	}

	alert, _ := ToMessage(events.NewAlertRaised(entities.Alert{ID: 1, Kind: entities.AlertIngredientLow, Message: "low"}))
	if _, ok := alert.Data.(map[string]interface{})["related_id"]; ok {
		t.Error("Expected related_id to be omitted when there is no related entity")
	}
}

func TestHub_UnregistersOnDisconnect(t *testing.T) {
	hub, conn := startHub(t, entities.Guest())
	readText(t, conn)
	if hub.Count() != 1 {
		t.Fatalf("Expected 1 client, got %d", hub.Count())
	}

	conn.Close()
	deadline := time.Now().Add(2 * time.Second)
	for hub.Count() != 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if hub.Count() != 0 {
		t.Errorf("Expected client to be removed after disconnect, got %d", hub.Count())
	}
}
