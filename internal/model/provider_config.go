// internal/model/provider_config.go
package model

import "time"

// ProviderConfig holds one account's WhatsApp integration settings.
// Only the cloudapi provider can send directly; evolution instances are
// stored for the automation integration but rejected at dispatch time.
type ProviderConfig struct {
    ID                        string     `db:"id" json:"id"`
    UserID                    string     `db:"user_id" json:"user_id"`
    Provider                  string     `db:"provider" json:"provider"` // cloudapi, evolution
    CloudAPIAccessToken       string     `db:"cloudapi_access_token" json:"cloudapi_access_token,omitempty"`
    CloudAPIPhoneNumberID     string     `db:"cloudapi_phone_number_id" json:"cloudapi_phone_number_id"`
    CloudAPIBusinessAccountID string     `db:"cloudapi_business_account_id" json:"cloudapi_business_account_id"`
    EvolutionInstanceName     string     `db:"evolution_instance_name" json:"evolution_instance_name"`
    UpdatedAt                 *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

const ProviderCloudAPI = "cloudapi"
