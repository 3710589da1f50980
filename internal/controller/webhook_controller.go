// internal/controller/webhook_controller.go
package controller

import (
    "encoding/json"
    "io"
    "log"
    "net/http"
    "strings"

    "github.com/wikizap/wikizap-backend/internal/service"
    "github.com/wikizap/wikizap-backend/internal/webhook"
)

type WebhookController struct {
    Correlator  *service.CorrelatorService
    VerifyToken string
}

// Verify answers Meta's subscription handshake by echoing the challenge.
func (c *WebhookController) Verify(w http.ResponseWriter, r *http.Request) {
    mode := r.URL.Query().Get("hub.mode")
    token := r.URL.Query().Get("hub.verify_token")
    challenge := r.URL.Query().Get("hub.challenge")

    if mode == "subscribe" && token != "" && (c.VerifyToken == "" || token == c.VerifyToken) {
        w.Header().Set("Content-Type", "text/plain")
        w.WriteHeader(http.StatusOK)
        w.Write([]byte(challenge))
        return
    }

    http.Error(w, "Forbidden", http.StatusForbidden)
}

// Receive handles Meta's event deliveries. The response is always 200 with
// {"success":true}: Meta retries aggressively on anything else, and a retry
// of an unparseable body can never succeed.
func (c *WebhookController) Receive(w http.ResponseWriter, r *http.Request) {
    defer writeJSON(w, http.StatusOK, map[string]bool{"success": true})

    body, err := io.ReadAll(r.Body)
    if err != nil || len(strings.TrimSpace(string(body))) == 0 {
        log.Println("webhook: empty body received, acknowledging")
        return
    }

    values := webhook.ParsePayload(body)
    if len(values) == 0 {
        log.Println("webhook: no value in payload, acknowledging")
        return
    }

    for _, value := range values {
        c.Correlator.ProcessValue(r.Context(), value)
    }
}

// ReceiveAutomation handles the automation integration's deliveries. Unlike
// the Meta endpoint this one reports bad input: automation flows surface the
// error to whoever built them instead of retrying blindly.
func (c *WebhookController) ReceiveAutomation(w http.ResponseWriter, r *http.Request) {
    body, err := io.ReadAll(r.Body)
    if err != nil || len(strings.TrimSpace(string(body))) == 0 {
        writeJSON(w, http.StatusBadRequest, map[string]string{
            "error": "Empty body",
            "hint":  "Send the WhatsApp message data in the request body as JSON",
        })
        return
    }

    if !json.Valid(body) {
        writeJSON(w, http.StatusBadRequest, map[string]string{
            "error": "Invalid JSON",
            "hint":  "The body must be valid JSON",
        })
        return
    }

    values := webhook.ParsePayload(body)
    for _, value := range values {
        c.Correlator.ProcessValue(r.Context(), value)
    }

    writeJSON(w, http.StatusOK, map[string]interface{}{
        "success":   true,
        "processed": len(values),
    })
}
