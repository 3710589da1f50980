// internal/model/campaign.go
package model

import "time"

type Campaign struct {
    ID            string    `db:"id" json:"id"`
    UserID        string    `db:"user_id" json:"user_id"`
    Name          string    `db:"name" json:"name"`
    TemplateName  *string   `db:"template_name" json:"template_name,omitempty"`
    TotalContacts int       `db:"total_contacts" json:"total_contacts"`
    SentCount     int       `db:"sent_count" json:"sent_count"`
    FailedCount   int       `db:"failed_count" json:"failed_count"`
    CreatedAt     time.Time `db:"created_at" json:"created_at"`
}
