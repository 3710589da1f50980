package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/wikizap/wikizap-backend/internal/errors"
	"github.com/wikizap/wikizap-backend/internal/model"
	"github.com/wikizap/wikizap-backend/internal/service"
	"github.com/wikizap/wikizap-backend/internal/template"
)

// --- Mocks shared by the service tests ---

type mockConfigRepo struct {
	configs  map[string]*model.ProviderConfig // by user id
	byPhone  map[string]*model.ProviderConfig // by phone number id
	upserted *model.ProviderConfig
}

func (m *mockConfigRepo) GetByUserID(userID string) (*model.ProviderConfig, error) {
	return m.configs[userID], nil
}

func (m *mockConfigRepo) GetByPhoneNumberID(phoneNumberID string) (*model.ProviderConfig, error) {
	return m.byPhone[phoneNumberID], nil
}

func (m *mockConfigRepo) Upsert(cfg *model.ProviderConfig) error {
	m.upserted = cfg
	return nil
}

type mockQueueRepo struct {
	mu        sync.Mutex
	seq       int
	messages  map[string]*model.QueuedMessage
	order     []string
	sentRows  []*model.QueuedMessage // canned ListSentByPhoneCore result
	statusLog map[string][2]string   // meta id -> {status, error}
}

func newMockQueueRepo() *mockQueueRepo {
	return &mockQueueRepo{
		messages:  map[string]*model.QueuedMessage{},
		statusLog: map[string][2]string{},
	}
}

func (m *mockQueueRepo) CreateBatch(messages []*model.QueuedMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, msg := range messages {
		m.seq++
		msg.ID = fmt.Sprintf("msg-%d", m.seq)
		msg.Status = "pending"
		m.messages[msg.ID] = msg
		m.order = append(m.order, msg.ID)
	}
	return nil
}

func (m *mockQueueRepo) GetByID(id string) (*model.QueuedMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.messages[id], nil
}

func (m *mockQueueRepo) MarkProcessing(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages[id].Status = "processing"
	return nil
}

func (m *mockQueueRepo) MarkSent(id, metaMessageID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages[id].Status = "sent"
	m.messages[id].MetaMessageID = &metaMessageID
	return nil
}

func (m *mockQueueRepo) MarkFailed(id, errorMessage string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages[id].Status = "failed"
	m.messages[id].ErrorMessage = &errorMessage
	return nil
}

func (m *mockQueueRepo) ListSentByPhoneCore(userID, phoneCore string) ([]*model.QueuedMessage, error) {
	return m.sentRows, nil
}

func (m *mockQueueRepo) UpdateStatusByMetaID(userID, metaMessageID, status, errorMessage string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statusLog[metaMessageID] = [2]string{status, errorMessage}
	return nil
}

type sentCall struct {
	To           string
	TemplateName string
	Language     string
	Params       []string
	TextBody     string
}

type mockSender struct {
	mu       sync.Mutex
	calls    []sentCall
	failFor  map[string]string // to -> error message
	nextID   int
}

func (m *mockSender) SendTemplate(ctx context.Context, token, phoneNumberID, to, templateName, languageCode string, params []string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, sentCall{To: to, TemplateName: templateName, Language: languageCode, Params: params})
	if msg, ok := m.failFor[to]; ok {
		return "", errors.New(msg)
	}
	m.nextID++
	return fmt.Sprintf("wamid.%d", m.nextID), nil
}

func (m *mockSender) SendText(ctx context.Context, token, phoneNumberID, to, body string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, sentCall{To: to, TextBody: body})
	if msg, ok := m.failFor[to]; ok {
		return "", errors.New(msg)
	}
	m.nextID++
	return fmt.Sprintf("wamid.%d", m.nextID), nil
}

func cloudAPIConfig(userID string) *model.ProviderConfig {
	return &model.ProviderConfig{
		UserID:                userID,
		Provider:              model.ProviderCloudAPI,
		CloudAPIAccessToken:   "tok",
		CloudAPIPhoneNumberID: "555000",
	}
}

func newDispatcher(configs *mockConfigRepo, queue *mockQueueRepo, sender *mockSender) *service.DispatcherService {
	return &service.DispatcherService{
		Configs:            configs,
		Queue:              queue,
		Sender:             sender,
		DefaultCountryCode: "55",
		TemplateLanguage:   "pt_BR",
		SendDelay:          0,
	}
}

// --- Tests ---

func TestDispatchEmptyRecipients(t *testing.T) {
	d := newDispatcher(&mockConfigRepo{}, newMockQueueRepo(), &mockSender{})

	_, err := d.Dispatch(context.Background(), service.DispatchRequest{UserID: "u1"})
	require.ErrorIs(t, err, appErrors.ErrEmptyRecipientList)
}

func TestDispatchProviderNotConfigured(t *testing.T) {
	d := newDispatcher(&mockConfigRepo{configs: map[string]*model.ProviderConfig{}}, newMockQueueRepo(), &mockSender{})

	_, err := d.Dispatch(context.Background(), service.DispatchRequest{
		UserID:     "u1",
		Recipients: []service.Recipient{{Name: "Alice", Phone: "11987654321"}},
	})
	var notConfigured *appErrors.ErrProviderNotConfigured
	require.ErrorAs(t, err, &notConfigured)
}

func TestDispatchMissingCredentials(t *testing.T) {
	cfg := cloudAPIConfig("u1")
	cfg.CloudAPIAccessToken = ""
	d := newDispatcher(&mockConfigRepo{configs: map[string]*model.ProviderConfig{"u1": cfg}}, newMockQueueRepo(), &mockSender{})

	_, err := d.Dispatch(context.Background(), service.DispatchRequest{
		UserID:     "u1",
		Recipients: []service.Recipient{{Name: "Alice", Phone: "11987654321"}},
	})
	var notConfigured *appErrors.ErrProviderNotConfigured
	require.ErrorAs(t, err, &notConfigured)
}

func TestDispatchUnsupportedProvider(t *testing.T) {
	cfg := &model.ProviderConfig{UserID: "u1", Provider: "evolution", EvolutionInstanceName: "inst"}
	d := newDispatcher(&mockConfigRepo{configs: map[string]*model.ProviderConfig{"u1": cfg}}, newMockQueueRepo(), &mockSender{})

	_, err := d.Dispatch(context.Background(), service.DispatchRequest{
		UserID:     "u1",
		Recipients: []service.Recipient{{Name: "Alice", Phone: "11987654321"}},
	})
	var unsupported *appErrors.ErrUnsupportedProvider
	require.ErrorAs(t, err, &unsupported)
}

func TestDispatchPartialFailure(t *testing.T) {
	queue := newMockQueueRepo()
	sender := &mockSender{failFor: map[string]string{
		"5511000000002": "(#131026) Message undeliverable",
	}}
	configs := &mockConfigRepo{configs: map[string]*model.ProviderConfig{"u1": cloudAPIConfig("u1")}}
	d := newDispatcher(configs, queue, sender)

	result, err := d.Dispatch(context.Background(), service.DispatchRequest{
		UserID:     "u1",
		CampaignID: "c1",
		Recipients: []service.Recipient{
			{Name: "Um", Phone: "11000000001"},
			{Name: "Dois", Phone: "11000000002"},
			{Name: "Três", Phone: "11000000003"},
		},
		TemplateBody: "Hi",
	})
	require.NoError(t, err)

	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 2, result.Sent)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Dois")
	assert.Contains(t, result.Errors[0], "131026")

	first, _ := queue.GetByID("msg-1")
	second, _ := queue.GetByID("msg-2")
	third, _ := queue.GetByID("msg-3")

	assert.Equal(t, "sent", first.Status)
	require.NotNil(t, first.MetaMessageID)

	assert.Equal(t, "failed", second.Status)
	require.NotNil(t, second.ErrorMessage)
	assert.NotEmpty(t, *second.ErrorMessage)

	assert.Equal(t, "sent", third.Status)
}

func TestDispatchFreeText(t *testing.T) {
	queue := newMockQueueRepo()
	sender := &mockSender{}
	configs := &mockConfigRepo{configs: map[string]*model.ProviderConfig{"u1": cloudAPIConfig("u1")}}
	d := newDispatcher(configs, queue, sender)

	result, err := d.Dispatch(context.Background(), service.DispatchRequest{
		UserID:       "u1",
		Recipients:   []service.Recipient{{Name: "Alice", Phone: "11987654321"}},
		TemplateBody: "Hi",
		// Mappings are irrelevant without a template name.
		VariableMappings: []template.VariableMapping{{Variable: "{{1}}", Source: "custom", CustomValue: "x"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Sent)

	require.Len(t, sender.calls, 1)
	assert.Equal(t, "Hi", sender.calls[0].TextBody)
	assert.Empty(t, sender.calls[0].TemplateName)
	assert.Equal(t, "5511987654321", sender.calls[0].To)
}

func TestDispatchTemplateVariables(t *testing.T) {
	queue := newMockQueueRepo()
	sender := &mockSender{}
	configs := &mockConfigRepo{configs: map[string]*model.ProviderConfig{"u1": cloudAPIConfig("u1")}}
	d := newDispatcher(configs, queue, sender)

	_, err := d.Dispatch(context.Background(), service.DispatchRequest{
		UserID:       "u1",
		Recipients:   []service.Recipient{{Name: "Alice", Phone: "11987654321", Email: "alice@example.com"}},
		TemplateName: "promo_julho",
		TemplateBody: "Oi {{1}}, use o cupom {{2}}!",
		VariableMappings: []template.VariableMapping{
			{Variable: "{{2}}", Source: "custom", CustomValue: "WIKI10"},
		},
	})
	require.NoError(t, err)

	require.Len(t, sender.calls, 1)
	call := sender.calls[0]
	assert.Equal(t, "promo_julho", call.TemplateName)
	assert.Equal(t, "pt_BR", call.Language)
	// {{1}} has no mapping and defaults to the contact name.
	assert.Equal(t, []string{"Alice", "WIKI10"}, call.Params)
}

func TestDispatchErrorListCapped(t *testing.T) {
	queue := newMockQueueRepo()
	sender := &mockSender{failFor: map[string]string{}}
	recipients := make([]service.Recipient, 12)
	for i := range recipients {
		phone := fmt.Sprintf("119000000%02d", i)
		recipients[i] = service.Recipient{Name: fmt.Sprintf("c%d", i), Phone: phone}
		sender.failFor["55"+phone] = "boom"
	}
	configs := &mockConfigRepo{configs: map[string]*model.ProviderConfig{"u1": cloudAPIConfig("u1")}}
	d := newDispatcher(configs, queue, sender)

	result, err := d.Dispatch(context.Background(), service.DispatchRequest{
		UserID:       "u1",
		Recipients:   recipients,
		TemplateBody: "Hi",
	})
	require.NoError(t, err)
	assert.Equal(t, 12, result.Failed)
	assert.Len(t, result.Errors, 10)
}
