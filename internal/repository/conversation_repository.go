package repository

import (
    "database/sql"
    "time"

    "github.com/google/uuid"

    "github.com/wikizap/wikizap-backend/internal/model"
)

type ConversationRepositoryInterface interface {
    Insert(c *model.Conversation) error
    HasInboundForCampaign(userID, campaignID, phoneCore string) (bool, error)
    ListByUser(userID string, offset, limit int) ([]*model.Conversation, int, error)
    MarkRead(userID, id string) error
}

type ConversationRepository struct {
    DB *sql.DB
}

func (r *ConversationRepository) Insert(c *model.Conversation) error {
    if c.ID == "" {
        c.ID = uuid.NewString()
    }
    c.CreatedAt = time.Now()
    query := `
        INSERT INTO conversations
        (id, user_id, contact_phone, contact_name, message_id, direction, message_type, message_content,
         media_url, campaign_id, original_message_id, status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
    `
    _, err := r.DB.Exec(query,
        c.ID, c.UserID, c.ContactPhone, c.ContactName, c.MessageID, c.Direction, c.MessageType,
        c.MessageContent, c.MediaURL, c.CampaignID, c.OriginalMessageID, c.Status, c.CreatedAt,
    )
    return err
}

// HasInboundForCampaign reports whether the contact already has an inbound
// turn recorded for the campaign. This backs the first-reply-only policy.
func (r *ConversationRepository) HasInboundForCampaign(userID, campaignID, phoneCore string) (bool, error) {
    query := `
        SELECT 1 FROM conversations
        WHERE user_id=$1 AND campaign_id=$2 AND direction='inbound' AND contact_phone LIKE '%' || $3 || '%'
        LIMIT 1
    `
    var tmp int
    err := r.DB.QueryRow(query, userID, campaignID, phoneCore).Scan(&tmp)
    if err != nil {
        if err == sql.ErrNoRows {
            return false, nil
        }
        return false, err
    }
    return true, nil
}

func (r *ConversationRepository) ListByUser(userID string, offset, limit int) ([]*model.Conversation, int, error) {
    conversations := []*model.Conversation{}
    query := `
        SELECT id, user_id, contact_phone, contact_name, message_id, direction, message_type, message_content,
               media_url, campaign_id, original_message_id, status, created_at, read_at
        FROM conversations WHERE user_id=$1
        ORDER BY created_at DESC LIMIT $2 OFFSET $3
    `
    rows, err := r.DB.Query(query, userID, limit, offset)
    if err != nil {
        return nil, 0, err
    }
    defer rows.Close()

    for rows.Next() {
        c := &model.Conversation{}
        if err := rows.Scan(
            &c.ID, &c.UserID, &c.ContactPhone, &c.ContactName, &c.MessageID, &c.Direction, &c.MessageType,
            &c.MessageContent, &c.MediaURL, &c.CampaignID, &c.OriginalMessageID, &c.Status, &c.CreatedAt, &c.ReadAt,
        ); err != nil {
            return nil, 0, err
        }
        conversations = append(conversations, c)
    }

    var total int
    if err := r.DB.QueryRow(`SELECT COUNT(*) FROM conversations WHERE user_id=$1`, userID).Scan(&total); err != nil {
        return nil, 0, err
    }

    return conversations, total, nil
}

func (r *ConversationRepository) MarkRead(userID, id string) error {
    query := `UPDATE conversations SET read_at=NOW() WHERE id=$1 AND user_id=$2 AND read_at IS NULL`
    _, err := r.DB.Exec(query, id, userID)
    return err
}

var _ ConversationRepositoryInterface = (*ConversationRepository)(nil)
