// internal/errors/errors.go
package appErrors

import (
    "errors"
    "fmt"
)

// ErrEmptyRecipientList is returned when a dispatch request carries no contacts.
var ErrEmptyRecipientList = errors.New("no contacts provided")

// ErrProviderNotConfigured means the account has no usable WhatsApp credentials
type ErrProviderNotConfigured struct {
    UserID string
}

func (e *ErrProviderNotConfigured) Error() string {
    return fmt.Sprintf("whatsapp config not found or incomplete for user %s", e.UserID)
}

func NewProviderNotConfigured(userID string) error {
    return &ErrProviderNotConfigured{UserID: userID}
}

// ErrUnsupportedProvider means the configured integration cannot send directly
type ErrUnsupportedProvider struct {
    Provider string
}

func (e *ErrUnsupportedProvider) Error() string {
    return fmt.Sprintf("only Cloud API provider is supported for direct sending, got %q", e.Provider)
}

func NewUnsupportedProvider(provider string) error {
    return &ErrUnsupportedProvider{Provider: provider}
}

// ErrCampaignNotFound is a sentinel error
type ErrCampaignNotFound struct {
    CampaignID string
}

func (e *ErrCampaignNotFound) Error() string {
    return fmt.Sprintf("campaign with ID %s not found", e.CampaignID)
}

// Helper constructor
func NewCampaignNotFound(id string) error {
    return &ErrCampaignNotFound{CampaignID: id}
}
