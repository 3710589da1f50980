// internal/model/queued_message.go
package model

import "time"

// QueuedMessage is one outbound send attempt: one row per contact per campaign.
// The send loop moves status pending -> processing -> sent/failed; webhook
// status callbacks may later overwrite a sent status with delivered/read/failed.
type QueuedMessage struct {
    ID            string     `db:"id" json:"id"`
    UserID        string     `db:"user_id" json:"user_id"`
    CampaignID    *string    `db:"campaign_id" json:"campaign_id,omitempty"`
    ContactPhone  string     `db:"contact_phone" json:"contact_phone"`
    ContactName   string     `db:"contact_name" json:"contact_name"`
    ContactEmail  string     `db:"contact_email" json:"contact_email"`
    TemplateName  *string    `db:"template_name" json:"template_name,omitempty"`
    TemplateBody  string     `db:"template_body" json:"template_body"`
    Status        string     `db:"status" json:"status"` // pending, processing, sent, failed, delivered, read
    MetaMessageID *string    `db:"meta_message_id" json:"meta_message_id,omitempty"`
    ErrorMessage  *string    `db:"error_message" json:"error_message,omitempty"`
    CreatedAt     time.Time  `db:"created_at" json:"created_at"`
    ProcessedAt   *time.Time `db:"processed_at" json:"processed_at,omitempty"`
    SentAt        *time.Time `db:"sent_at" json:"sent_at,omitempty"`
}
