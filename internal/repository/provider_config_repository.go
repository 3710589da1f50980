package repository

import (
    "database/sql"

    "github.com/google/uuid"

    "github.com/wikizap/wikizap-backend/internal/model"
)

type ProviderConfigRepositoryInterface interface {
    GetByUserID(userID string) (*model.ProviderConfig, error)
    GetByPhoneNumberID(phoneNumberID string) (*model.ProviderConfig, error)
    Upsert(cfg *model.ProviderConfig) error
}

type ProviderConfigRepository struct {
    DB *sql.DB
}

const providerConfigColumns = `id, user_id, provider, cloudapi_access_token, cloudapi_phone_number_id, cloudapi_business_account_id, evolution_instance_name, updated_at`

func (r *ProviderConfigRepository) GetByUserID(userID string) (*model.ProviderConfig, error) {
    query := `SELECT ` + providerConfigColumns + ` FROM whatsapp_config WHERE user_id=$1`
    return r.scanOne(r.DB.QueryRow(query, userID))
}

// GetByPhoneNumberID resolves which account owns a receiving line. This is
// how inbound webhook events find their user.
func (r *ProviderConfigRepository) GetByPhoneNumberID(phoneNumberID string) (*model.ProviderConfig, error) {
    query := `SELECT ` + providerConfigColumns + ` FROM whatsapp_config WHERE cloudapi_phone_number_id=$1`
    return r.scanOne(r.DB.QueryRow(query, phoneNumberID))
}

func (r *ProviderConfigRepository) scanOne(row *sql.Row) (*model.ProviderConfig, error) {
    var cfg model.ProviderConfig
    err := row.Scan(
        &cfg.ID, &cfg.UserID, &cfg.Provider, &cfg.CloudAPIAccessToken, &cfg.CloudAPIPhoneNumberID,
        &cfg.CloudAPIBusinessAccountID, &cfg.EvolutionInstanceName, &cfg.UpdatedAt,
    )
    if err != nil {
        if err == sql.ErrNoRows {
            return nil, nil
        }
        return nil, err
    }
    return &cfg, nil
}

// Upsert saves the account's provider settings. A blank access token keeps
// the previously stored one so the settings form never has to echo it back.
func (r *ProviderConfigRepository) Upsert(cfg *model.ProviderConfig) error {
    if cfg.ID == "" {
        cfg.ID = uuid.NewString()
    }
    query := `
        INSERT INTO whatsapp_config
        (id, user_id, provider, cloudapi_access_token, cloudapi_phone_number_id, cloudapi_business_account_id, evolution_instance_name, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
        ON CONFLICT (user_id) DO UPDATE SET
            provider = EXCLUDED.provider,
            cloudapi_access_token = CASE WHEN EXCLUDED.cloudapi_access_token = '' THEN whatsapp_config.cloudapi_access_token ELSE EXCLUDED.cloudapi_access_token END,
            cloudapi_phone_number_id = EXCLUDED.cloudapi_phone_number_id,
            cloudapi_business_account_id = EXCLUDED.cloudapi_business_account_id,
            evolution_instance_name = EXCLUDED.evolution_instance_name,
            updated_at = NOW()
    `
    _, err := r.DB.Exec(query,
        cfg.ID, cfg.UserID, cfg.Provider, cfg.CloudAPIAccessToken, cfg.CloudAPIPhoneNumberID,
        cfg.CloudAPIBusinessAccountID, cfg.EvolutionInstanceName,
    )
    return err
}

var _ ProviderConfigRepositoryInterface = (*ProviderConfigRepository)(nil)
