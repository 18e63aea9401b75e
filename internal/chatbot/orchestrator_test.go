package chatbot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaswaterproofing/site-backend/internal/leads"
)

type capturingNotifier struct {
	mu    sync.Mutex
	leads []*leads.Lead
}

func (n *capturingNotifier) LeadCaptured(ctx context.Context, lead *leads.Lead) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.leads = append(n.leads, lead)
}

type failingRepository struct {
	failures int
	inner    *leads.InMemoryRepository
}

func (r *failingRepository) Create(ctx context.Context, req *leads.CreateLeadRequest) (*leads.Lead, error) {
	if r.failures > 0 {
		r.failures--
		return nil, errors.New("database unavailable")
	}
	return r.inner.Create(ctx, req)
}

func (r *failingRepository) GetByID(ctx context.Context, id string) (*leads.Lead, error) {
	return r.inner.GetByID(ctx, id)
}

func (r *failingRepository) List(ctx context.Context, filter leads.ListLeadsFilter) ([]*leads.Lead, error) {
	return r.inner.List(ctx, filter)
}

func (r *failingRepository) UpdateStatus(ctx context.Context, id, status string) error {
	return r.inner.UpdateStatus(ctx, id, status)
}

func newTestOrchestrator(t *testing.T, repo leads.Repository, notifier LeadNotifier) (*Orchestrator, *MemorySessionStore) {
	t.Helper()
	store := NewMemorySessionStore(time.Minute)
	t.Cleanup(store.Close)
	if repo == nil {
		repo = leads.NewInMemoryRepository()
	}
	return NewOrchestrator(DefaultKnowledge(), store, repo, notifier, nil, nil), store
}

func TestReplyFullQuoteDialogue(t *testing.T) {
	repo := leads.NewInMemoryRepository()
	notifier := &capturingNotifier{}
	o, store := newTestOrchestrator(t, repo, notifier)
	ctx := context.Background()

	reply := o.Reply(ctx, "sess-1", "I need a quote")
	assert.Contains(t, strings.ToLower(reply), "name")

	reply = o.Reply(ctx, "sess-1", "John Smith")
	assert.Contains(t, reply, "John Smith")
	assert.Contains(t, strings.ToLower(reply), "phone")

	reply = o.Reply(ctx, "sess-1", "954-555-1234")
	assert.Contains(t, strings.ToLower(reply), "service")

	reply = o.Reply(ctx, "sess-1", "Painting")
	assert.Contains(t, reply, "John Smith")
	assert.Contains(t, reply, "954-982-2809")

	stored, err := repo.List(ctx, leads.ListLeadsFilter{})
	require.NoError(t, err)
	require.Len(t, stored, 1)

	lead := stored[0]
	assert.Equal(t, "John Smith", lead.Name)
	assert.Equal(t, "954-555-1234", lead.Phone)
	assert.Equal(t, "Painting", lead.Service)
	assert.Equal(t, "I need a quote", lead.Message)
	assert.Equal(t, "chatbot", lead.Source)
	assert.Equal(t, "new", lead.Status)

	// Session ends with the dialogue.
	_, err = store.Get(ctx, "sess-1")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	require.Len(t, notifier.leads, 1)
	assert.Equal(t, lead.ID, notifier.leads[0].ID)
}

func TestReplyInvalidPhoneRepromptsWithoutAdvancing(t *testing.T) {
	o, store := newTestOrchestrator(t, nil, nil)
	ctx := context.Background()

	o.Reply(ctx, "sess-1", "I need a quote")
	o.Reply(ctx, "sess-1", "John Smith")

	reply := o.Reply(ctx, "sess-1", "call me whenever")
	assert.Contains(t, strings.ToLower(reply), "phone number")

	session, err := store.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, StepPhone, session.Step, "invalid phone should not advance the dialogue")
	assert.Empty(t, session.Draft.Phone)

	// A valid number on the retry moves the dialogue forward.
	reply = o.Reply(ctx, "sess-1", "954 555 1234")
	assert.Contains(t, strings.ToLower(reply), "service")
}

func TestReplyEmptyMessageDoesNotMutateState(t *testing.T) {
	o, store := newTestOrchestrator(t, nil, nil)
	ctx := context.Background()

	o.Reply(ctx, "sess-1", "I need a quote")
	before, err := store.Get(ctx, "sess-1")
	require.NoError(t, err)

	reply := o.Reply(ctx, "sess-1", "   ")
	assert.NotEmpty(t, reply)

	after, err := store.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, before.Step, after.Step)
	assert.Equal(t, before.Draft, after.Draft)
}

func TestReplyKeepsDraftWhenPersistenceFails(t *testing.T) {
	repo := &failingRepository{failures: 1, inner: leads.NewInMemoryRepository()}
	o, store := newTestOrchestrator(t, repo, nil)
	ctx := context.Background()

	o.Reply(ctx, "sess-1", "I need a quote")
	o.Reply(ctx, "sess-1", "John Smith")
	o.Reply(ctx, "sess-1", "954-555-1234")

	reply := o.Reply(ctx, "sess-1", "Painting")
	assert.Contains(t, reply, "954-982-2809", "failure reply should carry the business phone")

	// The collected answers survive so the visitor can retry.
	session, err := store.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, StepService, session.Step)
	assert.Equal(t, "John Smith", session.Draft.Name)
	assert.Equal(t, "954-555-1234", session.Draft.Phone)

	// The retry succeeds and completes the dialogue.
	reply = o.Reply(ctx, "sess-1", "Painting")
	assert.Contains(t, reply, "John Smith")

	stored, err := repo.List(ctx, leads.ListLeadsFilter{})
	require.NoError(t, err)
	require.Len(t, stored, 1)

	_, err = store.Get(ctx, "sess-1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestReplyStatelessQuestionsCreateNoSession(t *testing.T) {
	o, store := newTestOrchestrator(t, nil, nil)
	ctx := context.Background()

	reply := o.Reply(ctx, "sess-1", "where are you located?")
	assert.Contains(t, reply, "Plantation")

	reply = o.Reply(ctx, "sess-1", "what is your phone number?")
	assert.Contains(t, reply, "954-982-2809")

	_, err := store.Get(ctx, "sess-1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestReplySessionsAreIndependent(t *testing.T) {
	o, _ := newTestOrchestrator(t, nil, nil)
	ctx := context.Background()

	o.Reply(ctx, "sess-1", "I need a quote")
	o.Reply(ctx, "sess-1", "John Smith")

	// A different visitor asking a question stays outside the dialogue.
	reply := o.Reply(ctx, "sess-2", "what services do you offer?")
	assert.Contains(t, reply, "Waterproofing")

	// The first visitor's dialogue is still waiting on the phone number.
	reply = o.Reply(ctx, "sess-1", "954-555-1234")
	assert.Contains(t, strings.ToLower(reply), "service")
}

func lockCount(o *Orchestrator) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.locks)
}

func TestReplyReleasesSessionLocks(t *testing.T) {
	o, _ := newTestOrchestrator(t, nil, nil)
	ctx := context.Background()

	// One-off visitors with distinct ids must not accumulate lock entries.
	for i := 0; i < 1000; i++ {
		o.Reply(ctx, fmt.Sprintf("visitor-%d", i), "hello")
	}
	assert.Equal(t, 0, lockCount(o), "lock map should be empty after turns complete")

	// Same for a session that runs a full dialogue.
	o.Reply(ctx, "sess-1", "I need a quote")
	o.Reply(ctx, "sess-1", "John Smith")
	o.Reply(ctx, "sess-1", "954-555-1234")
	o.Reply(ctx, "sess-1", "Painting")
	assert.Equal(t, 0, lockCount(o))
}

func TestReplyLocksReleasedUnderConcurrency(t *testing.T) {
	o, _ := newTestOrchestrator(t, nil, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := fmt.Sprintf("visitor-%d", n%5)
			for j := 0; j < 20; j++ {
				o.Reply(ctx, id, "what services do you offer?")
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 0, lockCount(o), "lock map should drain once no turn is in flight")
}

func TestReplyDialogueBypassesIntentClassification(t *testing.T) {
	repo := leads.NewInMemoryRepository()
	o, _ := newTestOrchestrator(t, repo, nil)
	ctx := context.Background()

	o.Reply(ctx, "sess-1", "I need a quote")

	// "Bill Waters" would never classify, and a greeting-looking name must
	// still be consumed as the name slot.
	reply := o.Reply(ctx, "sess-1", "Bill Waters")
	assert.Contains(t, reply, "Bill Waters")

	o.Reply(ctx, "sess-1", "9545551234")
	o.Reply(ctx, "sess-1", "basement waterproofing")

	stored, err := repo.List(ctx, leads.ListLeadsFilter{})
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "Bill Waters", stored[0].Name)
	assert.Equal(t, "basement waterproofing", stored[0].Service)
}
