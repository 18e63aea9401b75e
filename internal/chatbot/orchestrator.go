package chatbot

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/kaswaterproofing/site-backend/internal/leads"
	"github.com/kaswaterproofing/site-backend/internal/observability/metrics"
	"github.com/kaswaterproofing/site-backend/pkg/logging"
)

// LeadNotifier is told about freshly captured leads. Implementations must be
// best-effort: a notification failure never affects the visitor reply.
type LeadNotifier interface {
	LeadCaptured(ctx context.Context, lead *leads.Lead)
}

// Orchestrator drives one chat turn: it advances an in-progress quote
// dialogue if one exists, otherwise classifies the message and answers from
// the knowledge base. It never returns an error to the caller; failures are
// logged and turned into a safe reply carrying the business phone number.
type Orchestrator struct {
	kb       *KnowledgeBase
	store    SessionStore
	leads    leads.Repository
	notifier LeadNotifier
	logger   *logging.Logger
	metrics  *metrics.ChatMetrics

	mu    sync.Mutex
	locks map[string]*sessionLock
}

// sessionLock is reference-counted so the lock map shrinks back to empty
// once no turn for that session is in flight. Session ids arrive from the
// public chat endpoint, so permanent per-id entries would grow unbounded.
type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// NewOrchestrator wires the chat engine. notifier and chatMetrics may be nil.
func NewOrchestrator(kb *KnowledgeBase, store SessionStore, repo leads.Repository, notifier LeadNotifier, logger *logging.Logger, chatMetrics *metrics.ChatMetrics) *Orchestrator {
	if kb == nil {
		kb = DefaultKnowledge()
	}
	if store == nil {
		panic("chatbot: session store required")
	}
	if repo == nil {
		panic("chatbot: leads repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Orchestrator{
		kb:       kb,
		store:    store,
		leads:    repo,
		notifier: notifier,
		logger:   logger,
		metrics:  chatMetrics,
		locks:    make(map[string]*sessionLock),
	}
}

// Knowledge exposes the knowledge base for transports that need business facts.
func (o *Orchestrator) Knowledge() *KnowledgeBase {
	return o.kb
}

// Reply processes one visitor message and always produces a reply string.
func (o *Orchestrator) Reply(ctx context.Context, sessionID, message string) string {
	text := strings.TrimSpace(message)
	if text == "" {
		return ResponseFor(IntentUnknown, o.kb)
	}

	// Serialize turns per session so a double-submit cannot interleave the
	// read-modify-write of the dialogue state.
	unlock := o.lockSession(sessionID)
	defer unlock()

	session, err := o.store.Get(ctx, sessionID)
	switch {
	case err == nil:
		return o.advanceDialogue(ctx, sessionID, session, text)
	case errors.Is(err, ErrSessionNotFound):
		// no active dialogue, fall through to classification
	default:
		// Degrade to stateless Q&A rather than surfacing a storage error.
		o.logger.Error("chatbot: session lookup failed", "error", err, "session_id", sessionID)
	}

	intent := DetectIntent(text)
	o.metrics.ObserveMessage(string(intent))

	if intent == IntentQuoteRequest {
		session := &Session{Step: StepName, Draft: LeadDraft{Message: text}}
		if err := o.store.Put(ctx, sessionID, session); err != nil {
			o.logger.Error("chatbot: failed to start quote dialogue", "error", err, "session_id", sessionID)
			return fallbackReply(o.kb)
		}
		o.logger.Info("chatbot: quote dialogue started", "session_id", sessionID)
	}

	return ResponseFor(intent, o.kb)
}

// advanceDialogue consumes the message as the slot the dialogue is waiting
// on. While a dialogue is active, intent classification is bypassed entirely.
func (o *Orchestrator) advanceDialogue(ctx context.Context, sessionID string, session *Session, text string) string {
	o.metrics.ObserveDialogueStep(string(session.Step))

	switch session.Step {
	case StepName:
		session.Draft.Name = text
		session.Step = StepPhone
		if err := o.store.Put(ctx, sessionID, session); err != nil {
			o.logger.Error("chatbot: failed to save dialogue state", "error", err, "session_id", sessionID)
			return fallbackReply(o.kb)
		}
		return askPhonePrompt(session.Draft.Name)

	case StepPhone:
		phone, ok := extractPhone(text)
		if !ok {
			return rePromptPhone()
		}
		session.Draft.Phone = phone
		session.Step = StepService
		if err := o.store.Put(ctx, sessionID, session); err != nil {
			o.logger.Error("chatbot: failed to save dialogue state", "error", err, "session_id", sessionID)
			return fallbackReply(o.kb)
		}
		return askServicePrompt(o.kb)

	case StepService:
		session.Draft.Service = text
		return o.completeDialogue(ctx, sessionID, session)

	default:
		// A step outside the known set means corrupted state; reset instead
		// of silently falling through.
		o.logger.Error("chatbot: unknown dialogue step, resetting session", "step", string(session.Step), "session_id", sessionID)
		if err := o.store.Delete(ctx, sessionID); err != nil {
			o.logger.Warn("chatbot: failed to reset session", "error", err, "session_id", sessionID)
		}
		return ResponseFor(IntentUnknown, o.kb)
	}
}

// completeDialogue persists the collected lead and ends the session. On
// persistence failure the session is kept so the visitor can retry; deleting
// it would silently discard everything already collected.
func (o *Orchestrator) completeDialogue(ctx context.Context, sessionID string, session *Session) string {
	draft := session.Draft
	if draft.Message == "" {
		draft.Message = "Quote request via chat widget"
	}

	lead, err := o.leads.Create(ctx, &leads.CreateLeadRequest{
		Name:    draft.Name,
		Phone:   draft.Phone,
		Service: draft.Service,
		Message: draft.Message,
		Source:  "chatbot",
	})
	if err != nil {
		o.metrics.ObserveLead("failed")
		o.logger.Error("chatbot: failed to persist lead", "error", err, "session_id", sessionID)
		return fallbackReply(o.kb)
	}

	if err := o.store.Delete(ctx, sessionID); err != nil {
		o.logger.Warn("chatbot: failed to clear completed session", "error", err, "session_id", sessionID)
	}

	o.metrics.ObserveLead("created")
	o.logger.Info("chatbot: lead captured", "lead_id", lead.ID, "service", lead.Service)

	if o.notifier != nil {
		o.notifier.LeadCaptured(ctx, lead)
	}

	return leadConfirmation(draft.Name, o.kb)
}

func (o *Orchestrator) lockSession(sessionID string) func() {
	o.mu.Lock()
	lock, ok := o.locks[sessionID]
	if !ok {
		lock = &sessionLock{}
		o.locks[sessionID] = lock
	}
	lock.refs++
	o.mu.Unlock()

	lock.mu.Lock()
	return func() {
		lock.mu.Unlock()
		o.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(o.locks, sessionID)
		}
		o.mu.Unlock()
	}
}
