// internal/model/message_template.go
package model

import "time"

// MessageTemplate mirrors a template registered on the user's WhatsApp
// business account, pulled in by the template sync.
type MessageTemplate struct {
    ID         string    `db:"id" json:"id"`
    UserID     string    `db:"user_id" json:"user_id"`
    MetaID     string    `db:"meta_id" json:"meta_id"`
    Name       string    `db:"name" json:"name"`
    Category   string    `db:"category" json:"category"`
    Language   string    `db:"language" json:"language"`
    Status     string    `db:"status" json:"status"` // APPROVED, PENDING, REJECTED
    BodyText   string    `db:"body_text" json:"body_text"`
    UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}
