// internal/model/contact.go
package model

import "time"

// Contact is one entry in a user's contact book, imported from the dashboard.
type Contact struct {
    ID        string    `db:"id" json:"id"`
    UserID    string    `db:"user_id" json:"user_id"`
    Name      string    `db:"name" json:"name"`
    Phone     string    `db:"phone" json:"phone"`
    Email     string    `db:"email" json:"email"`
    CreatedAt time.Time `db:"created_at" json:"created_at"`
}
