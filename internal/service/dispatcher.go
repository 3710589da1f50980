// internal/service/dispatcher.go
package service

import (
    "context"
    "fmt"
    "log"
    "time"

    appErrors "github.com/wikizap/wikizap-backend/internal/errors"
    "github.com/wikizap/wikizap-backend/internal/model"
    "github.com/wikizap/wikizap-backend/internal/phone"
    "github.com/wikizap/wikizap-backend/internal/repository"
    "github.com/wikizap/wikizap-backend/internal/template"
)

// Sender is the subset of the WhatsApp client the dispatcher needs.
type Sender interface {
    SendTemplate(ctx context.Context, token, phoneNumberID, to, templateName, languageCode string, params []string) (string, error)
    SendText(ctx context.Context, token, phoneNumberID, to, body string) (string, error)
}

type DispatcherService struct {
    Configs repository.ProviderConfigRepositoryInterface
    Queue   repository.MessageQueueRepositoryInterface
    Sender  Sender

    DefaultCountryCode string
    TemplateLanguage   string
    SendDelay          time.Duration
}

// Recipient is one contact in a dispatch request.
type Recipient struct {
    Name  string `json:"name"`
    Phone string `json:"phone"`
    Email string `json:"email,omitempty"`
}

type DispatchRequest struct {
    UserID           string
    CampaignID       string
    Recipients       []Recipient
    TemplateName     string // empty means free-text send
    TemplateBody     string
    VariableMappings []template.VariableMapping
}

type DispatchResult struct {
    Total  int      `json:"total"`
    Sent   int      `json:"sent"`
    Failed int      `json:"failed"`
    Errors []string `json:"errors"`
}

// Dispatch queues one message per recipient and sends them one by one in
// order. A send failure only marks that recipient's message failed; the rest
// of the batch keeps going. Sends are sequential on purpose: the Cloud API
// rate-limits per number, hence the fixed delay between messages.
func (s *DispatcherService) Dispatch(ctx context.Context, req DispatchRequest) (*DispatchResult, error) {
    if len(req.Recipients) == 0 {
        return nil, appErrors.ErrEmptyRecipientList
    }

    cfg, err := s.Configs.GetByUserID(req.UserID)
    if err != nil {
        return nil, err
    }
    if cfg == nil {
        return nil, appErrors.NewProviderNotConfigured(req.UserID)
    }
    if cfg.Provider != model.ProviderCloudAPI {
        return nil, appErrors.NewUnsupportedProvider(cfg.Provider)
    }
    if cfg.CloudAPIAccessToken == "" || cfg.CloudAPIPhoneNumberID == "" {
        return nil, appErrors.NewProviderNotConfigured(req.UserID)
    }

    var campaignID *string
    if req.CampaignID != "" {
        campaignID = &req.CampaignID
    }
    var templateName *string
    if req.TemplateName != "" {
        templateName = &req.TemplateName
    }

    messages := make([]*model.QueuedMessage, 0, len(req.Recipients))
    for _, recipient := range req.Recipients {
        messages = append(messages, &model.QueuedMessage{
            UserID:       req.UserID,
            CampaignID:   campaignID,
            ContactPhone: recipient.Phone,
            ContactName:  recipient.Name,
            ContactEmail: recipient.Email,
            TemplateName: templateName,
            TemplateBody: req.TemplateBody,
        })
    }
    if err := s.Queue.CreateBatch(messages); err != nil {
        return nil, fmt.Errorf("failed to queue messages: %w", err)
    }

    log.Println("queued", len(messages), "messages for campaign", req.CampaignID)

    result := &DispatchResult{Total: len(messages), Errors: []string{}}

    for _, msg := range messages {
        if err := s.sendOne(ctx, cfg.CloudAPIAccessToken, cfg.CloudAPIPhoneNumberID, msg, req.VariableMappings); err != nil {
            if markErr := s.Queue.MarkFailed(msg.ID, err.Error()); markErr != nil {
                log.Println("failed to mark message failed:", msg.ID, markErr)
            }
            result.Failed++
            result.Errors = append(result.Errors, fmt.Sprintf("%s: %s", msg.ContactName, err.Error()))
        } else {
            result.Sent++
        }

        // Small delay between messages to stay under provider rate limits.
        time.Sleep(s.SendDelay)
    }

    if len(result.Errors) > 10 {
        result.Errors = result.Errors[:10]
    }

    log.Printf("campaign %s dispatch complete: sent=%d failed=%d", req.CampaignID, result.Sent, result.Failed)

    return result, nil
}

func (s *DispatcherService) sendOne(ctx context.Context, token, phoneNumberID string, msg *model.QueuedMessage, mappings []template.VariableMapping) error {
    if err := s.Queue.MarkProcessing(msg.ID); err != nil {
        return fmt.Errorf("failed to mark processing: %w", err)
    }

    to := phone.DispatchNumber(msg.ContactPhone, s.DefaultCountryCode)

    var metaID string
    var err error
    if msg.TemplateName != nil {
        contact := template.ContactData{
            Name:  msg.ContactName,
            Phone: msg.ContactPhone,
            Email: msg.ContactEmail,
        }
        params := template.ResolveVariables(msg.TemplateBody, mappings, contact)
        metaID, err = s.Sender.SendTemplate(ctx, token, phoneNumberID, to, *msg.TemplateName, s.TemplateLanguage, params)
    } else {
        metaID, err = s.Sender.SendText(ctx, token, phoneNumberID, to, msg.TemplateBody)
    }
    if err != nil {
        log.Println("send failed for", to, ":", err)
        return err
    }

    if err := s.Queue.MarkSent(msg.ID, metaID); err != nil {
        log.Println("failed to mark message sent:", msg.ID, err)
    }
    return nil
}
