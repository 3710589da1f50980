package repository

import (
    "database/sql"
    "fmt"
    "time"

    "github.com/google/uuid"

    appErrors "github.com/wikizap/wikizap-backend/internal/errors"
    "github.com/wikizap/wikizap-backend/internal/model"
)

type CampaignRepositoryInterface interface {
    Create(c *model.Campaign) error
    GetByID(userID, id string) (*model.Campaign, error)
    ListCampaigns(userID string, offset, limit int) ([]*model.Campaign, int, error)
    UpdateCounts(id string, sentCount, failedCount int) error
    GetCampaignStats(campaignID string) (map[string]int, error)
}

type CampaignRepository struct {
    DB *sql.DB
}

func (r *CampaignRepository) Create(c *model.Campaign) error {
    if c.ID == "" {
        c.ID = uuid.NewString()
    }
    c.CreatedAt = time.Now()
    query := `
        INSERT INTO campaigns (id, user_id, name, template_name, total_contacts, sent_count, failed_count, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `
    _, err := r.DB.Exec(query, c.ID, c.UserID, c.Name, c.TemplateName, c.TotalContacts, c.SentCount, c.FailedCount, c.CreatedAt)
    return err
}

func (r *CampaignRepository) GetByID(userID, id string) (*model.Campaign, error) {
    query := `
        SELECT id, user_id, name, template_name, total_contacts, sent_count, failed_count, created_at
        FROM campaigns WHERE id=$1 AND user_id=$2
    `
    var c model.Campaign
    err := r.DB.QueryRow(query, id, userID).Scan(&c.ID, &c.UserID, &c.Name, &c.TemplateName, &c.TotalContacts, &c.SentCount, &c.FailedCount, &c.CreatedAt)
    if err != nil {
        if err == sql.ErrNoRows {
            return nil, appErrors.NewCampaignNotFound(id)
        }
        return nil, err
    }
    return &c, nil
}

func (r *CampaignRepository) ListCampaigns(userID string, offset, limit int) ([]*model.Campaign, int, error) {
    campaigns := []*model.Campaign{}
    query := `
        SELECT id, user_id, name, template_name, total_contacts, sent_count, failed_count, created_at
        FROM campaigns WHERE user_id=$1
        ORDER BY created_at DESC LIMIT $2 OFFSET $3
    `
    rows, err := r.DB.Query(query, userID, limit, offset)
    if err != nil {
        return nil, 0, err
    }
    defer rows.Close()

    for rows.Next() {
        c := &model.Campaign{}
        if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.TemplateName, &c.TotalContacts, &c.SentCount, &c.FailedCount, &c.CreatedAt); err != nil {
            return nil, 0, err
        }
        campaigns = append(campaigns, c)
    }

    var total int
    if err := r.DB.QueryRow(`SELECT COUNT(*) FROM campaigns WHERE user_id=$1`, userID).Scan(&total); err != nil {
        return nil, 0, err
    }

    return campaigns, total, nil
}

// UpdateCounts persists the dispatch aggregates. Counts only ever grow.
func (r *CampaignRepository) UpdateCounts(id string, sentCount, failedCount int) error {
    query := `UPDATE campaigns SET sent_count=$1, failed_count=$2 WHERE id=$3`
    res, err := r.DB.Exec(query, sentCount, failedCount, id)
    if err != nil {
        return err
    }
    if n, err := res.RowsAffected(); err == nil && n == 0 {
        return fmt.Errorf("campaign %s not updated", id)
    }
    return nil
}

func (r *CampaignRepository) GetCampaignStats(campaignID string) (map[string]int, error) {
    query := `SELECT status, COUNT(*) FROM message_queue WHERE campaign_id=$1 GROUP BY status`
    rows, err := r.DB.Query(query, campaignID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    stats := map[string]int{"pending": 0, "processing": 0, "sent": 0, "failed": 0, "delivered": 0, "read": 0}
    for rows.Next() {
        var status string
        var count int
        if err := rows.Scan(&status, &count); err != nil {
            return nil, err
        }
        stats[status] = count
    }
    return stats, nil
}

var _ CampaignRepositoryInterface = (*CampaignRepository)(nil)
