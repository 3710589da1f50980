package repository

import (
    "database/sql"

    "github.com/google/uuid"

    "github.com/wikizap/wikizap-backend/internal/model"
)

type TemplateRepositoryInterface interface {
    UpsertSynced(t *model.MessageTemplate) error
    ListByUser(userID string) ([]*model.MessageTemplate, error)
}

type TemplateRepository struct {
    DB *sql.DB
}

// UpsertSynced stores one template pulled from the business account,
// keyed on (user, meta template id) so re-syncs update in place.
func (r *TemplateRepository) UpsertSynced(t *model.MessageTemplate) error {
    if t.ID == "" {
        t.ID = uuid.NewString()
    }
    query := `
        INSERT INTO message_templates (id, user_id, meta_id, name, category, language, status, body_text, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
        ON CONFLICT (user_id, meta_id) DO UPDATE SET
            name = EXCLUDED.name,
            category = EXCLUDED.category,
            language = EXCLUDED.language,
            status = EXCLUDED.status,
            body_text = EXCLUDED.body_text,
            updated_at = NOW()
    `
    _, err := r.DB.Exec(query, t.ID, t.UserID, t.MetaID, t.Name, t.Category, t.Language, t.Status, t.BodyText)
    return err
}

func (r *TemplateRepository) ListByUser(userID string) ([]*model.MessageTemplate, error) {
    query := `
        SELECT id, user_id, meta_id, name, category, language, status, body_text, updated_at
        FROM message_templates WHERE user_id=$1 ORDER BY name
    `
    rows, err := r.DB.Query(query, userID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    templates := []*model.MessageTemplate{}
    for rows.Next() {
        t := &model.MessageTemplate{}
        if err := rows.Scan(&t.ID, &t.UserID, &t.MetaID, &t.Name, &t.Category, &t.Language, &t.Status, &t.BodyText, &t.UpdatedAt); err != nil {
            return nil, err
        }
        templates = append(templates, t)
    }
    return templates, nil
}

var _ TemplateRepositoryInterface = (*TemplateRepository)(nil)
