// internal/handler/conversation_handler.go
package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/wikizap/wikizap-backend/internal/model"
	"github.com/wikizap/wikizap-backend/internal/repository"
)

// ConversationHandler serves the results inbox and the contact book.
type ConversationHandler struct {
	Conversations repository.ConversationRepositoryInterface
	Contacts      repository.ContactRepositoryInterface
}

func userID(r *http.Request) string {
	return r.Header.Get("X-User-ID")
}

// ListConversations returns a paginated, newest-first view of the thread.
func (h *ConversationHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		http.Error(w, "missing user", http.StatusUnauthorized)
		return
	}

	page := 1
	pageSize := 50
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		page = p
	}
	if ps, err := strconv.Atoi(r.URL.Query().Get("page_size")); err == nil && ps > 0 {
		pageSize = ps
	}
	offset := (page - 1) * pageSize

	conversations, total, err := h.Conversations.ListByUser(uid, offset, pageSize)
	if err != nil {
		http.Error(w, "failed to fetch conversations: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"data":  conversations,
		"total": total,
	})
}

// MarkRead stamps the read timestamp when the user opens a thread.
func (h *ConversationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		http.Error(w, "missing user", http.StatusUnauthorized)
		return
	}
	id := chi.URLParam(r, "id")

	if err := h.Conversations.MarkRead(uid, id); err != nil {
		http.Error(w, "failed to mark read: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"success": true})
}

// ListContacts returns the user's contact book.
func (h *ConversationHandler) ListContacts(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		http.Error(w, "missing user", http.StatusUnauthorized)
		return
	}

	contacts, err := h.Contacts.ListByUser(uid)
	if err != nil {
		http.Error(w, "failed to fetch contacts: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"data": contacts})
}

// ImportContacts stores contacts parsed by the dashboard importer.
func (h *ConversationHandler) ImportContacts(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		http.Error(w, "missing user", http.StatusUnauthorized)
		return
	}

	var body struct {
		Contacts []struct {
			Name  string `json:"name"`
			Phone string `json:"phone"`
			Email string `json:"email"`
		} `json:"contacts"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(body.Contacts) == 0 {
		http.Error(w, "no contacts provided", http.StatusBadRequest)
		return
	}

	contacts := make([]*model.Contact, 0, len(body.Contacts))
	for _, c := range body.Contacts {
		contacts = append(contacts, &model.Contact{
			UserID: uid,
			Name:   c.Name,
			Phone:  c.Phone,
			Email:  c.Email,
		})
	}

	if err := h.Contacts.CreateBatch(contacts); err != nil {
		http.Error(w, "failed to import contacts: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":  true,
		"imported": len(contacts),
	})
}
