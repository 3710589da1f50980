// internal/controller/config_controller.go
package controller

import (
    "encoding/json"
    "errors"
    "net/http"

    appErrors "github.com/wikizap/wikizap-backend/internal/errors"
    "github.com/wikizap/wikizap-backend/internal/repository"
    "github.com/wikizap/wikizap-backend/internal/service"
)

type ConfigController struct {
    Settings     *service.SettingsService
    TemplateRepo repository.TemplateRepositoryInterface
}

func (c *ConfigController) SaveConfig(w http.ResponseWriter, r *http.Request) {
    uid := userID(r)
    if uid == "" {
        http.Error(w, "missing user", http.StatusUnauthorized)
        return
    }

    var body struct {
        Provider                  string `json:"provider"`
        CloudAPIPhoneNumberID     string `json:"cloudapi_phone_number_id"`
        CloudAPIBusinessAccountID string `json:"cloudapi_business_account_id"`
        CloudAPIAccessToken       string `json:"cloudapi_access_token"`
        EvolutionInstanceName     string `json:"evolution_instance_name"`
    }
    if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
        http.Error(w, "invalid body", http.StatusBadRequest)
        return
    }

    err := c.Settings.SaveConfig(uid, body.Provider, body.CloudAPIPhoneNumberID, body.CloudAPIBusinessAccountID, body.CloudAPIAccessToken, body.EvolutionInstanceName)
    if err != nil {
        writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "error": err.Error()})
        return
    }

    writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (c *ConfigController) GetConfig(w http.ResponseWriter, r *http.Request) {
    uid := userID(r)
    if uid == "" {
        http.Error(w, "missing user", http.StatusUnauthorized)
        return
    }

    cfg, err := c.Settings.GetConfig(uid)
    if err != nil {
        http.Error(w, err.Error(), http.StatusInternalServerError)
        return
    }
    if cfg == nil {
        http.Error(w, "config not found", http.StatusNotFound)
        return
    }

    writeJSON(w, http.StatusOK, cfg)
}

func (c *ConfigController) TestConnection(w http.ResponseWriter, r *http.Request) {
    uid := userID(r)
    if uid == "" {
        http.Error(w, "missing user", http.StatusUnauthorized)
        return
    }

    info, err := c.Settings.TestConnection(r.Context(), uid)
    if err != nil {
        // The settings page renders the failure inline, so the response is
        // 200 with success=false like the rest of the settings flows.
        writeJSON(w, http.StatusOK, map[string]interface{}{"success": false, "error": err.Error()})
        return
    }

    writeJSON(w, http.StatusOK, map[string]interface{}{
        "success":      true,
        "phone_number": info,
    })
}

func (c *ConfigController) SyncTemplates(w http.ResponseWriter, r *http.Request) {
    uid := userID(r)
    if uid == "" {
        http.Error(w, "missing user", http.StatusUnauthorized)
        return
    }

    synced, err := c.Settings.SyncTemplates(r.Context(), uid)
    if err != nil {
        status := http.StatusInternalServerError
        var notConfigured *appErrors.ErrProviderNotConfigured
        if errors.As(err, &notConfigured) {
            status = http.StatusBadRequest
        }
        writeJSON(w, status, map[string]interface{}{"error": err.Error()})
        return
    }

    writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "synced": synced})
}

func (c *ConfigController) ListTemplates(w http.ResponseWriter, r *http.Request) {
    uid := userID(r)
    if uid == "" {
        http.Error(w, "missing user", http.StatusUnauthorized)
        return
    }

    templates, err := c.TemplateRepo.ListByUser(uid)
    if err != nil {
        http.Error(w, err.Error(), http.StatusInternalServerError)
        return
    }

    writeJSON(w, http.StatusOK, map[string]interface{}{"data": templates})
}
