// internal/service/correlator.go
package service

import (
    "context"
    "log"
    "time"

    "github.com/wikizap/wikizap-backend/internal/cache"
    "github.com/wikizap/wikizap-backend/internal/events"
    "github.com/wikizap/wikizap-backend/internal/model"
    "github.com/wikizap/wikizap-backend/internal/phone"
    "github.com/wikizap/wikizap-backend/internal/repository"
    "github.com/wikizap/wikizap-backend/internal/webhook"
)

// CorrelatorService matches inbound WhatsApp events to the campaigns that
// produced them. Discards are silent: the webhook response never reflects
// internal outcomes, so nothing here returns an error to the caller.
type CorrelatorService struct {
    Configs       repository.ProviderConfigRepositoryInterface
    Queue         repository.MessageQueueRepositoryInterface
    Conversations repository.ConversationRepositoryInterface
    Dedup         cache.Dedup
    Events        events.Publisher
}

// ProcessValue handles one webhook value object: its new messages first,
// then its delivery status updates. Per-event failures are logged and the
// rest of the batch keeps going.
func (s *CorrelatorService) ProcessValue(ctx context.Context, value webhook.ChangeValue) {
    phoneNumberID := value.Metadata.PhoneNumberID

    var userID string
    if phoneNumberID != "" {
        cfg, err := s.Configs.GetByPhoneNumberID(phoneNumberID)
        if err != nil {
            log.Println("failed to resolve config for phone number id", phoneNumberID, ":", err)
        } else if cfg != nil {
            userID = cfg.UserID
        }
    }

    if userID == "" && (len(value.Messages) > 0 || len(value.Statuses) > 0) {
        log.Println("no user found for phone number id:", phoneNumberID, "- discarding", len(value.Messages), "messages and", len(value.Statuses), "statuses")
        return
    }

    for _, msg := range value.Messages {
        s.processMessage(ctx, userID, value, msg)
    }

    for _, status := range value.Statuses {
        s.applyStatus(userID, status)
    }
}

func (s *CorrelatorService) processMessage(ctx context.Context, userID string, value webhook.ChangeValue, msg webhook.Message) {
    firstSeen, err := s.Dedup.FirstSeen(ctx, msg.ID)
    if err != nil {
        // Dedup is best-effort; treat the event as new when Redis is down.
        log.Println("dedup check failed for", msg.ID, ":", err)
    } else if !firstSeen {
        log.Println("duplicate webhook event, skipping:", msg.ID)
        return
    }

    messageType := msg.Type
    if messageType == "" {
        messageType = "text"
    }
    content, mediaRef := webhook.ExtractContent(msg)
    contactName := webhook.ContactName(value.Contacts, msg.From)

    core := phone.MatchingCore(msg.From)

    candidates, err := s.Queue.ListSentByPhoneCore(userID, core)
    if err != nil {
        log.Println("failed to list outbound candidates for", msg.From, ":", err)
        return
    }
    if len(candidates) == 0 {
        log.Println("no campaign found for contact:", msg.From, "- skipping message")
        return
    }

    // Newest campaign first: the earliest one without a reply yet wins.
    var campaignID, originalMessageID *string
    for _, candidate := range candidates {
        if candidate.CampaignID == nil {
            continue
        }
        answered, err := s.Conversations.HasInboundForCampaign(userID, *candidate.CampaignID, core)
        if err != nil {
            log.Println("failed to check existing response for campaign", *candidate.CampaignID, ":", err)
            continue
        }
        if !answered {
            campaignID = candidate.CampaignID
            id := candidate.ID
            originalMessageID = &id
            break
        }
    }

    if campaignID == nil {
        log.Println("contact already responded to all campaigns:", msg.From)
        return
    }

    conversation := &model.Conversation{
        UserID:            userID,
        ContactPhone:      msg.From,
        MessageID:         msg.ID,
        Direction:         "inbound",
        MessageType:       messageType,
        MessageContent:    content,
        CampaignID:        campaignID,
        OriginalMessageID: originalMessageID,
        Status:            "received",
    }
    if contactName != "" {
        conversation.ContactName = &contactName
    }
    if mediaRef != "" {
        conversation.MediaURL = &mediaRef
    }

    if err := s.Conversations.Insert(conversation); err != nil {
        log.Println("failed to insert conversation for", msg.From, "campaign", *campaignID, ":", err)
        return
    }

    log.Println("first response saved for contact", msg.From, "campaign", *campaignID)

    s.Events.PublishConversation(events.ConversationEvent{
        ConversationID: conversation.ID,
        UserID:         userID,
        CampaignID:     *campaignID,
        ContactPhone:   msg.From,
        ContactName:    contactName,
        MessageType:    messageType,
        MessageContent: content,
        ReceivedAt:     time.Now(),
    })
}

func (s *CorrelatorService) applyStatus(userID string, status webhook.Status) {
    if status.ID == "" {
        return
    }

    // failed maps to failed, everything else passes through as-is.
    newStatus := status.Status

    errorMessage := ""
    if len(status.Errors) > 0 {
        errorMessage = status.Errors[0].Message
    }

    if err := s.Queue.UpdateStatusByMetaID(userID, status.ID, newStatus, errorMessage); err != nil {
        log.Println("failed to update message status for", status.ID, ":", err)
    }
}
