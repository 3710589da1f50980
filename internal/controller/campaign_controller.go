// internal/controller/campaign_controller.go
package controller

import (
    "encoding/json"
    "errors"
    "log"
    "net/http"
    "strconv"

    "github.com/go-chi/chi/v5"

    appErrors "github.com/wikizap/wikizap-backend/internal/errors"
    "github.com/wikizap/wikizap-backend/internal/model"
    "github.com/wikizap/wikizap-backend/internal/repository"
    "github.com/wikizap/wikizap-backend/internal/service"
    "github.com/wikizap/wikizap-backend/internal/template"
)

type CampaignController struct {
    Dispatcher   *service.DispatcherService
    CampaignRepo repository.CampaignRepositoryInterface
}

// userID is injected by the auth gateway in front of this service.
func userID(r *http.Request) string {
    return r.Header.Get("X-User-ID")
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
    w.Header().Set("Content-Type", "application/json")
    w.WriteHeader(status)
    json.NewEncoder(w).Encode(payload)
}

// SendCampaign records the campaign and dispatches its messages. The
// sent/failed aggregates are written back onto the campaign row once the
// batch completes.
func (c *CampaignController) SendCampaign(w http.ResponseWriter, r *http.Request) {
    uid := userID(r)
    if uid == "" {
        http.Error(w, "missing user", http.StatusUnauthorized)
        return
    }
    campaignID := chi.URLParam(r, "id")

    var body struct {
        Name             string                     `json:"name"`
        Contacts         []service.Recipient        `json:"contacts"`
        TemplateName     string                     `json:"template_name"`
        TemplateBody     string                     `json:"template_body"`
        VariableMappings []template.VariableMapping `json:"variable_mappings"`
    }
    if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
        http.Error(w, "invalid body", http.StatusBadRequest)
        return
    }

    campaign := &model.Campaign{
        ID:            campaignID,
        UserID:        uid,
        Name:          body.Name,
        TotalContacts: len(body.Contacts),
    }
    if body.TemplateName != "" {
        campaign.TemplateName = &body.TemplateName
    }
    if err := c.CampaignRepo.Create(campaign); err != nil {
        http.Error(w, "failed to create campaign: "+err.Error(), http.StatusInternalServerError)
        return
    }

    result, err := c.Dispatcher.Dispatch(r.Context(), service.DispatchRequest{
        UserID:           uid,
        CampaignID:       campaignID,
        Recipients:       body.Contacts,
        TemplateName:     body.TemplateName,
        TemplateBody:     body.TemplateBody,
        VariableMappings: body.VariableMappings,
    })
    if err != nil {
        status := http.StatusInternalServerError
        var notConfigured *appErrors.ErrProviderNotConfigured
        var unsupported *appErrors.ErrUnsupportedProvider
        switch {
        case errors.Is(err, appErrors.ErrEmptyRecipientList):
            status = http.StatusBadRequest
        case errors.As(err, &notConfigured):
            status = http.StatusNotFound
        case errors.As(err, &unsupported):
            status = http.StatusBadRequest
        }
        writeJSON(w, status, map[string]interface{}{"error": err.Error()})
        return
    }

    if err := c.CampaignRepo.UpdateCounts(campaignID, result.Sent, result.Failed); err != nil {
        log.Println("failed to update campaign counts:", campaignID, err)
    }

    writeJSON(w, http.StatusOK, map[string]interface{}{
        "success":     true,
        "campaign_id": campaignID,
        "total":       result.Total,
        "sent":        result.Sent,
        "failed":      result.Failed,
        "errors":      result.Errors,
    })
}

func (c *CampaignController) ListCampaigns(w http.ResponseWriter, r *http.Request) {
    uid := userID(r)
    if uid == "" {
        http.Error(w, "missing user", http.StatusUnauthorized)
        return
    }

    page, _ := strconv.Atoi(r.URL.Query().Get("page"))
    pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
    if page < 1 {
        page = 1
    }
    if pageSize < 1 {
        pageSize = 20
    }
    if pageSize > 100 {
        pageSize = 100
    }
    offset := (page - 1) * pageSize

    campaigns, total, err := c.CampaignRepo.ListCampaigns(uid, offset, pageSize)
    if err != nil {
        http.Error(w, err.Error(), http.StatusInternalServerError)
        return
    }

    totalPages := (total + pageSize - 1) / pageSize
    writeJSON(w, http.StatusOK, map[string]interface{}{
        "data": campaigns,
        "pagination": map[string]int{
            "page":        page,
            "page_size":   pageSize,
            "total_count": total,
            "total_pages": totalPages,
        },
    })
}

func (c *CampaignController) GetCampaign(w http.ResponseWriter, r *http.Request) {
    uid := userID(r)
    if uid == "" {
        http.Error(w, "missing user", http.StatusUnauthorized)
        return
    }
    id := chi.URLParam(r, "id")

    campaign, err := c.CampaignRepo.GetByID(uid, id)
    if err != nil {
        var notFound *appErrors.ErrCampaignNotFound
        if errors.As(err, &notFound) {
            http.Error(w, err.Error(), http.StatusNotFound)
            return
        }
        http.Error(w, err.Error(), http.StatusInternalServerError)
        return
    }

    stats, err := c.CampaignRepo.GetCampaignStats(id)
    if err != nil {
        http.Error(w, err.Error(), http.StatusInternalServerError)
        return
    }

    writeJSON(w, http.StatusOK, map[string]interface{}{
        "campaign": campaign,
        "stats":    stats,
    })
}
