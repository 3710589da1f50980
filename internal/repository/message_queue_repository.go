package repository

import (
    "database/sql"
    "time"

    "github.com/google/uuid"

    "github.com/wikizap/wikizap-backend/internal/model"
)

type MessageQueueRepositoryInterface interface {
    CreateBatch(messages []*model.QueuedMessage) error
    GetByID(id string) (*model.QueuedMessage, error)
    MarkProcessing(id string) error
    MarkSent(id, metaMessageID string) error
    MarkFailed(id, errorMessage string) error
    ListSentByPhoneCore(userID, phoneCore string) ([]*model.QueuedMessage, error)
    UpdateStatusByMetaID(userID, metaMessageID, status, errorMessage string) error
}

type MessageQueueRepository struct {
    DB *sql.DB
}

// CreateBatch inserts one pending row per recipient in a single transaction
// and fills in the generated ids.
func (r *MessageQueueRepository) CreateBatch(messages []*model.QueuedMessage) error {
    tx, err := r.DB.Begin()
    if err != nil {
        return err
    }

    query := `
        INSERT INTO message_queue
        (id, user_id, campaign_id, contact_phone, contact_name, contact_email, template_name, template_body, status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'pending', $9)
    `
    now := time.Now()
    for _, msg := range messages {
        if msg.ID == "" {
            msg.ID = uuid.NewString()
        }
        msg.Status = "pending"
        msg.CreatedAt = now
        if _, err := tx.Exec(query, msg.ID, msg.UserID, msg.CampaignID, msg.ContactPhone, msg.ContactName, msg.ContactEmail, msg.TemplateName, msg.TemplateBody, msg.CreatedAt); err != nil {
            tx.Rollback()
            return err
        }
    }

    return tx.Commit()
}

func (r *MessageQueueRepository) GetByID(id string) (*model.QueuedMessage, error) {
    query := `
        SELECT id, user_id, campaign_id, contact_phone, contact_name, contact_email, template_name, template_body,
               status, meta_message_id, error_message, created_at, processed_at, sent_at
        FROM message_queue WHERE id=$1
    `
    var msg model.QueuedMessage
    err := r.DB.QueryRow(query, id).Scan(
        &msg.ID, &msg.UserID, &msg.CampaignID, &msg.ContactPhone, &msg.ContactName, &msg.ContactEmail,
        &msg.TemplateName, &msg.TemplateBody, &msg.Status, &msg.MetaMessageID, &msg.ErrorMessage,
        &msg.CreatedAt, &msg.ProcessedAt, &msg.SentAt,
    )
    if err != nil {
        if err == sql.ErrNoRows {
            return nil, nil
        }
        return nil, err
    }
    return &msg, nil
}

func (r *MessageQueueRepository) MarkProcessing(id string) error {
    query := `UPDATE message_queue SET status='processing', processed_at=NOW() WHERE id=$1`
    _, err := r.DB.Exec(query, id)
    return err
}

func (r *MessageQueueRepository) MarkSent(id, metaMessageID string) error {
    query := `UPDATE message_queue SET status='sent', meta_message_id=$1, sent_at=NOW() WHERE id=$2`
    _, err := r.DB.Exec(query, metaMessageID, id)
    return err
}

func (r *MessageQueueRepository) MarkFailed(id, errorMessage string) error {
    query := `UPDATE message_queue SET status='failed', error_message=$1 WHERE id=$2`
    _, err := r.DB.Exec(query, errorMessage, id)
    return err
}

// ListSentByPhoneCore returns the sent messages whose recipient phone ends in
// the given digit core, newest first. These are the correlation candidates
// for an inbound reply from that number.
func (r *MessageQueueRepository) ListSentByPhoneCore(userID, phoneCore string) ([]*model.QueuedMessage, error) {
    query := `
        SELECT id, user_id, campaign_id, contact_phone, contact_name, contact_email, template_name, template_body,
               status, meta_message_id, error_message, created_at, processed_at, sent_at
        FROM message_queue
        WHERE user_id=$1 AND status='sent' AND contact_phone LIKE '%' || $2 || '%'
        ORDER BY sent_at DESC NULLS LAST
    `
    rows, err := r.DB.Query(query, userID, phoneCore)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    messages := []*model.QueuedMessage{}
    for rows.Next() {
        msg := &model.QueuedMessage{}
        if err := rows.Scan(
            &msg.ID, &msg.UserID, &msg.CampaignID, &msg.ContactPhone, &msg.ContactName, &msg.ContactEmail,
            &msg.TemplateName, &msg.TemplateBody, &msg.Status, &msg.MetaMessageID, &msg.ErrorMessage,
            &msg.CreatedAt, &msg.ProcessedAt, &msg.SentAt,
        ); err != nil {
            return nil, err
        }
        messages = append(messages, msg)
    }
    return messages, rows.Err()
}

// UpdateStatusByMetaID applies a webhook status callback to the message the
// provider id belongs to. No-op when the id is unknown.
func (r *MessageQueueRepository) UpdateStatusByMetaID(userID, metaMessageID, status, errorMessage string) error {
    var errVal interface{}
    if errorMessage != "" {
        errVal = errorMessage
    }
    query := `UPDATE message_queue SET status=$1, error_message=$2 WHERE meta_message_id=$3 AND user_id=$4`
    _, err := r.DB.Exec(query, status, errVal, metaMessageID, userID)
    return err
}

var _ MessageQueueRepositoryInterface = (*MessageQueueRepository)(nil)
