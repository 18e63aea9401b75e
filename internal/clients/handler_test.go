package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	received []*Client
}

func (n *recordingNotifier) ContactReceived(ctx context.Context, client *Client) {
	n.received = append(n.received, client)
}

func TestSubmitContactForm(t *testing.T) {
	store := NewInMemoryStore()
	notifier := &recordingNotifier{}
	h := NewHandler(store, notifier, nil)

	form := url.Values{
		"name":    {"Jane Doe"},
		"email":   {"jane@example.com"},
		"service": {"Waterproofing"},
		"message": {"Basement leaks after rain"},
	}
	req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	h.SubmitContact(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/success.html", w.Header().Get("Location"))

	list, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Jane Doe", list[0].Name)
	assert.Equal(t, "Waterproofing", list[0].Service)

	require.Len(t, notifier.received, 1)
	assert.Equal(t, list[0].ID, notifier.received[0].ID)
}

func TestSubmitContactJSON(t *testing.T) {
	store := NewInMemoryStore()
	h := NewHandler(store, nil, nil)

	body, _ := json.Marshal(CreateClientRequest{
		Name:  "Bob",
		Email: "bob@example.com",
	})
	req := httptest.NewRequest(http.MethodPost, "/contact", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.SubmitContact(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var client Client
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &client))
	assert.NotEmpty(t, client.ID)
	assert.Equal(t, "Bob", client.Name)
}

func TestSubmitContactRejectsMissingFields(t *testing.T) {
	h := NewHandler(NewInMemoryStore(), nil, nil)

	body, _ := json.Marshal(CreateClientRequest{Email: "x@example.com"})
	req := httptest.NewRequest(http.MethodPost, "/contact", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.SubmitContact(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListClients(t *testing.T) {
	store := NewInMemoryStore()
	_, err := store.Create(context.Background(), &CreateClientRequest{Name: "Jane", Email: "jane@example.com"})
	require.NoError(t, err)

	h := NewHandler(store, nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/clients", nil)
	w := httptest.NewRecorder()
	h.ListClients(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var list []*Client
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Jane", list[0].Name)
}

func TestDeleteClient(t *testing.T) {
	store := NewInMemoryStore()
	created, err := store.Create(context.Background(), &CreateClientRequest{Name: "Jane", Email: "jane@example.com"})
	require.NoError(t, err)

	h := NewHandler(store, nil, nil)
	router := chi.NewRouter()
	router.Delete("/api/clients/{id}", h.DeleteClient)

	req := httptest.NewRequest(http.MethodDelete, "/api/clients/"+created.ID, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Client deleted")

	req = httptest.NewRequest(http.MethodDelete, "/api/clients/"+created.ID, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
