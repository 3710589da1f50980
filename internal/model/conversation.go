// internal/model/conversation.go
package model

import "time"

// Conversation is one inbound or outbound message in a contact's thread,
// as surfaced to the results inbox.
type Conversation struct {
    ID                string     `db:"id" json:"id"`
    UserID            string     `db:"user_id" json:"user_id"`
    ContactPhone      string     `db:"contact_phone" json:"contact_phone"`
    ContactName       *string    `db:"contact_name" json:"contact_name,omitempty"`
    MessageID         string     `db:"message_id" json:"message_id"`
    Direction         string     `db:"direction" json:"direction"` // inbound, outbound
    MessageType       string     `db:"message_type" json:"message_type"`
    MessageContent    string     `db:"message_content" json:"message_content"`
    MediaURL          *string    `db:"media_url" json:"media_url,omitempty"`
    CampaignID        *string    `db:"campaign_id" json:"campaign_id,omitempty"`
    OriginalMessageID *string    `db:"original_message_id" json:"original_message_id,omitempty"`
    Status            string     `db:"status" json:"status"`
    CreatedAt         time.Time  `db:"created_at" json:"created_at"`
    ReadAt            *time.Time `db:"read_at" json:"read_at,omitempty"`
}
