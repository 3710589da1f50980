package controller_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/wikizap/wikizap-backend/internal/cache"
	"github.com/wikizap/wikizap-backend/internal/controller"
	"github.com/wikizap/wikizap-backend/internal/events"
	"github.com/wikizap/wikizap-backend/internal/model"
	"github.com/wikizap/wikizap-backend/internal/service"
)

// --- Mock Repositories ---

type mockConfigRepo struct {
	byPhone map[string]*model.ProviderConfig
}

func (m *mockConfigRepo) GetByUserID(userID string) (*model.ProviderConfig, error) {
	return nil, nil
}

func (m *mockConfigRepo) GetByPhoneNumberID(phoneNumberID string) (*model.ProviderConfig, error) {
	return m.byPhone[phoneNumberID], nil
}

func (m *mockConfigRepo) Upsert(cfg *model.ProviderConfig) error { return nil }

type mockQueueRepo struct {
	sentRows []*model.QueuedMessage
}

func (m *mockQueueRepo) CreateBatch(messages []*model.QueuedMessage) error { return nil }
func (m *mockQueueRepo) GetByID(id string) (*model.QueuedMessage, error)  { return nil, nil }
func (m *mockQueueRepo) MarkProcessing(id string) error                   { return nil }
func (m *mockQueueRepo) MarkSent(id, metaMessageID string) error          { return nil }
func (m *mockQueueRepo) MarkFailed(id, errorMessage string) error         { return nil }

func (m *mockQueueRepo) ListSentByPhoneCore(userID, phoneCore string) ([]*model.QueuedMessage, error) {
	var matched []*model.QueuedMessage
	for _, row := range m.sentRows {
		if row.UserID == userID && strings.Contains(row.ContactPhone, phoneCore) {
			matched = append(matched, row)
		}
	}
	return matched, nil
}

func (m *mockQueueRepo) UpdateStatusByMetaID(userID, metaMessageID, status, errorMessage string) error {
	return nil
}

type mockConversationRepo struct {
	inserted []*model.Conversation
}

func (m *mockConversationRepo) Insert(c *model.Conversation) error {
	m.inserted = append(m.inserted, c)
	return nil
}

func (m *mockConversationRepo) HasInboundForCampaign(userID, campaignID, phoneCore string) (bool, error) {
	return false, nil
}

func (m *mockConversationRepo) ListByUser(userID string, offset, limit int) ([]*model.Conversation, int, error) {
	return nil, 0, nil
}

func (m *mockConversationRepo) MarkRead(userID, id string) error { return nil }

func newWebhookController(conversations *mockConversationRepo, verifyToken string) *controller.WebhookController {
	campaignID := "camp-1"
	correlator := &service.CorrelatorService{
		Configs: &mockConfigRepo{
			byPhone: map[string]*model.ProviderConfig{
				"555000111": {ID: "cfg-1", UserID: "u1", Provider: model.ProviderCloudAPI},
			},
		},
		Queue: &mockQueueRepo{
			sentRows: []*model.QueuedMessage{
				{ID: "msg-1", UserID: "u1", CampaignID: &campaignID, ContactPhone: "5511987654321", Status: "sent"},
			},
		},
		Conversations: conversations,
		Dedup:         cache.NoopDedup{},
		Events:        events.NoopPublisher{},
	}
	return &controller.WebhookController{Correlator: correlator, VerifyToken: verifyToken}
}

// --- Verification handshake ---

func TestVerifyEchoesChallenge(t *testing.T) {
	ctrl := newWebhookController(&mockConversationRepo{}, "secret")

	req := httptest.NewRequest("GET", "/webhooks/whatsapp?hub.mode=subscribe&hub.verify_token=secret&hub.challenge=12345", nil)
	w := httptest.NewRecorder()
	ctrl.Verify(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "12345" {
		t.Errorf("expected challenge echoed back, got %q", string(body))
	}
}

func TestVerifyRejectsWrongToken(t *testing.T) {
	ctrl := newWebhookController(&mockConversationRepo{}, "secret")

	req := httptest.NewRequest("GET", "/webhooks/whatsapp?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=12345", nil)
	w := httptest.NewRecorder()
	ctrl.Verify(w, req)

	if w.Result().StatusCode != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Result().StatusCode)
	}
}

func TestVerifyRejectsMissingMode(t *testing.T) {
	ctrl := newWebhookController(&mockConversationRepo{}, "")

	req := httptest.NewRequest("GET", "/webhooks/whatsapp?hub.verify_token=anything&hub.challenge=12345", nil)
	w := httptest.NewRecorder()
	ctrl.Verify(w, req)

	if w.Result().StatusCode != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Result().StatusCode)
	}
}

// --- Event deliveries ---

func decodeAck(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	var res map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return res
}

func TestReceiveAcknowledgesEmptyBody(t *testing.T) {
	ctrl := newWebhookController(&mockConversationRepo{}, "")

	req := httptest.NewRequest("POST", "/webhooks/whatsapp", strings.NewReader("   "))
	w := httptest.NewRecorder()
	ctrl.Receive(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if res := decodeAck(t, resp); res["success"] != true {
		t.Errorf("expected success ack, got %v", res)
	}
}

func TestReceiveAcknowledgesMalformedBody(t *testing.T) {
	ctrl := newWebhookController(&mockConversationRepo{}, "")

	req := httptest.NewRequest("POST", "/webhooks/whatsapp", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	ctrl.Receive(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 even for malformed body, got %d", resp.StatusCode)
	}
	if res := decodeAck(t, resp); res["success"] != true {
		t.Errorf("expected success ack, got %v", res)
	}
}

func TestReceiveProcessesEnvelope(t *testing.T) {
	conversations := &mockConversationRepo{}
	ctrl := newWebhookController(conversations, "")

	payload := map[string]interface{}{
		"object": "whatsapp_business_account",
		"entry": []map[string]interface{}{{
			"id": "waba-1",
			"changes": []map[string]interface{}{{
				"field": "messages",
				"value": map[string]interface{}{
					"metadata": map[string]string{"phone_number_id": "555000111"},
					"contacts": []map[string]interface{}{{
						"wa_id":   "5511987654321",
						"profile": map[string]string{"name": "Ana"},
					}},
					"messages": []map[string]interface{}{{
						"from": "5511987654321",
						"id":   "wamid.abc",
						"type": "text",
						"text": map[string]string{"body": "oi"},
					}},
				},
			}},
		}},
	}
	b, _ := json.Marshal(payload)

	req := httptest.NewRequest("POST", "/webhooks/whatsapp", bytes.NewReader(b))
	req = req.WithContext(context.Background())
	w := httptest.NewRecorder()
	ctrl.Receive(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Result().StatusCode)
	}
	if len(conversations.inserted) != 1 {
		t.Fatalf("expected 1 conversation inserted, got %d", len(conversations.inserted))
	}
	conv := conversations.inserted[0]
	if conv.CampaignID == nil || *conv.CampaignID != "camp-1" {
		t.Errorf("expected conversation linked to camp-1, got %+v", conv.CampaignID)
	}
	if conv.MessageContent != "oi" {
		t.Errorf("expected message content %q, got %q", "oi", conv.MessageContent)
	}
}

func TestReceiveAutomationRejectsEmptyBody(t *testing.T) {
	ctrl := newWebhookController(&mockConversationRepo{}, "")

	req := httptest.NewRequest("POST", "/webhooks/automation", strings.NewReader(""))
	w := httptest.NewRecorder()
	ctrl.ReceiveAutomation(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if res := decodeAck(t, resp); res["error"] != "Empty body" {
		t.Errorf("expected empty body error, got %v", res)
	}
}

func TestReceiveAutomationRejectsInvalidJSON(t *testing.T) {
	ctrl := newWebhookController(&mockConversationRepo{}, "")

	req := httptest.NewRequest("POST", "/webhooks/automation", strings.NewReader("{broken"))
	w := httptest.NewRecorder()
	ctrl.ReceiveAutomation(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if res := decodeAck(t, resp); res["error"] != "Invalid JSON" {
		t.Errorf("expected invalid JSON error, got %v", res)
	}
}

func TestReceiveAutomationProcessesFlattenedValue(t *testing.T) {
	conversations := &mockConversationRepo{}
	ctrl := newWebhookController(conversations, "")

	payload := map[string]interface{}{
		"metadata": map[string]string{"phone_number_id": "555000111"},
		"messages": []map[string]interface{}{{
			"from": "5511987654321",
			"id":   "wamid.flat",
			"type": "text",
			"text": map[string]string{"body": "quero saber mais"},
		}},
	}
	b, _ := json.Marshal(payload)

	req := httptest.NewRequest("POST", "/webhooks/automation", bytes.NewReader(b))
	w := httptest.NewRecorder()
	ctrl.ReceiveAutomation(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	res := decodeAck(t, resp)
	if res["success"] != true {
		t.Errorf("expected success, got %v", res)
	}
	if processed, ok := res["processed"].(float64); !ok || processed != 1 {
		t.Errorf("expected 1 processed value, got %v", res["processed"])
	}
	if len(conversations.inserted) != 1 {
		t.Errorf("expected 1 conversation inserted, got %d", len(conversations.inserted))
	}
}
