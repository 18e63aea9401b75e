package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/kaswaterproofing/site-backend/pkg/logging"
)

// ContactNotifier is told about new contact submissions. Best-effort: a
// notification failure never blocks saving the submission.
type ContactNotifier interface {
	ContactReceived(ctx context.Context, client *Client)
}

// Handler serves the public contact form and the admin client API.
type Handler struct {
	store    Store
	notifier ContactNotifier
	logger   *logging.Logger
}

// NewHandler creates a clients handler. notifier may be nil.
func NewHandler(store Store, notifier ContactNotifier, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		store:    store,
		notifier: notifier,
		logger:   logger,
	}
}

// SubmitContact handles POST /contact. It accepts both the classic HTML form
// post and JSON from the single-page views.
func (h *Handler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	var req CreateClientRequest
	isJSON := strings.Contains(r.Header.Get("Content-Type"), "application/json")

	if isJSON {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form", http.StatusBadRequest)
			return
		}
		req = CreateClientRequest{
			Name:    r.PostFormValue("name"),
			Email:   r.PostFormValue("email"),
			Service: r.PostFormValue("service"),
			Message: r.PostFormValue("message"),
		}
	}

	client, err := h.store.Create(r.Context(), &req)
	if err != nil {
		h.logger.Error("contact submission failed", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.logger.Info("contact saved", "id", client.ID, "name", client.Name)

	if h.notifier != nil {
		h.notifier.ContactReceived(r.Context(), client)
	}

	if isJSON {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(client)
		return
	}
	http.Redirect(w, r, "/success.html", http.StatusSeeOther)
}

// ListClients handles GET /api/clients.
func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.store.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list clients", "error", err)
		http.Error(w, "failed to list clients", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(clients)
}

// DeleteClient handles DELETE /api/clients/{id}.
func (h *Handler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, "missing client id", http.StatusBadRequest)
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		if IsNotFound(err) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		h.logger.Error("failed to delete client", "error", err, "id", id)
		http.Error(w, "failed to delete client", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"message": "Client deleted"})
}
