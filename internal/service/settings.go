// internal/service/settings.go
package service

import (
    "context"
    "fmt"
    "strings"

    appErrors "github.com/wikizap/wikizap-backend/internal/errors"
    "github.com/wikizap/wikizap-backend/internal/model"
    "github.com/wikizap/wikizap-backend/internal/repository"
    "github.com/wikizap/wikizap-backend/internal/whatsapp"
)

// MetaAPI is the subset of the WhatsApp client the settings flows need.
type MetaAPI interface {
    GetPhoneNumber(ctx context.Context, token, phoneNumberID string) (*whatsapp.PhoneNumberInfo, error)
    ListTemplates(ctx context.Context, token, businessAccountID string) ([]whatsapp.MetaTemplate, error)
}

type SettingsService struct {
    Configs   repository.ProviderConfigRepositoryInterface
    Templates repository.TemplateRepositoryInterface
    Client    MetaAPI
}

// SaveConfig upserts the account's provider settings. Fields that belong to
// the other provider are cleared so stale credentials never linger.
func (s *SettingsService) SaveConfig(userID, provider, phoneNumberID, businessAccountID, accessToken, evolutionInstance string) error {
    if provider != model.ProviderCloudAPI && provider != "evolution" {
        return fmt.Errorf("unknown provider: %s", provider)
    }

    cfg := &model.ProviderConfig{
        UserID:   userID,
        Provider: provider,
    }
    if provider == model.ProviderCloudAPI {
        cfg.CloudAPIPhoneNumberID = phoneNumberID
        cfg.CloudAPIBusinessAccountID = businessAccountID
        cfg.CloudAPIAccessToken = strings.TrimSpace(accessToken)
    } else {
        cfg.EvolutionInstanceName = evolutionInstance
    }

    return s.Configs.Upsert(cfg)
}

// GetConfig returns the account's settings with the access token masked.
func (s *SettingsService) GetConfig(userID string) (*model.ProviderConfig, error) {
    cfg, err := s.Configs.GetByUserID(userID)
    if err != nil || cfg == nil {
        return cfg, err
    }
    if cfg.CloudAPIAccessToken != "" {
        cfg.CloudAPIAccessToken = "********"
    }
    return cfg, nil
}

// TestConnection probes the phone number node with the stored credentials.
func (s *SettingsService) TestConnection(ctx context.Context, userID string) (*whatsapp.PhoneNumberInfo, error) {
    cfg, err := s.Configs.GetByUserID(userID)
    if err != nil {
        return nil, err
    }
    if cfg == nil || cfg.CloudAPIAccessToken == "" || cfg.CloudAPIPhoneNumberID == "" {
        return nil, appErrors.NewProviderNotConfigured(userID)
    }

    return s.Client.GetPhoneNumber(ctx, cfg.CloudAPIAccessToken, cfg.CloudAPIPhoneNumberID)
}

// SyncTemplates pulls the templates registered on the business account and
// upserts them locally. Returns how many templates were stored.
func (s *SettingsService) SyncTemplates(ctx context.Context, userID string) (int, error) {
    cfg, err := s.Configs.GetByUserID(userID)
    if err != nil {
        return 0, err
    }
    if cfg == nil || cfg.CloudAPIAccessToken == "" || cfg.CloudAPIBusinessAccountID == "" {
        return 0, appErrors.NewProviderNotConfigured(userID)
    }

    metaTemplates, err := s.Client.ListTemplates(ctx, cfg.CloudAPIAccessToken, cfg.CloudAPIBusinessAccountID)
    if err != nil {
        return 0, err
    }

    synced := 0
    for _, mt := range metaTemplates {
        bodyText := ""
        for _, component := range mt.Components {
            if component.Type == "BODY" {
                bodyText = component.Text
                break
            }
        }

        t := &model.MessageTemplate{
            UserID:   userID,
            MetaID:   mt.ID,
            Name:     mt.Name,
            Category: mt.Category,
            Language: mt.Language,
            Status:   mt.Status,
            BodyText: bodyText,
        }
        if err := s.Templates.UpsertSynced(t); err != nil {
            return synced, err
        }
        synced++
    }

    return synced, nil
}
