package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/vozlegal/intake/internal/agent"
	"github.com/vozlegal/intake/internal/alerts"
	"github.com/vozlegal/intake/internal/analysis"
	"github.com/vozlegal/intake/internal/errors"
	"github.com/vozlegal/intake/internal/journal"
	"github.com/vozlegal/intake/internal/logger"
	"github.com/vozlegal/intake/internal/model"
	"github.com/vozlegal/intake/internal/model/contract"
	"github.com/vozlegal/intake/internal/prompt"
	"github.com/vozlegal/intake/internal/routing"
	"github.com/vozlegal/intake/internal/session"
)

// TurnRequest is one inbound message. An empty SessionID starts a new
// conversation.
type TurnRequest struct {
	SessionID string          `json:"session_id,omitempty"`
	UserID    string          `json:"user_id"`
	Channel   session.Channel `json:"channel"`
	Input     string          `json:"input"`
	Preferred agent.Type      `json:"preferred_agent,omitempty"`
}

// TurnResult is what a transport hands back to the caller.
type TurnResult struct {
	Session     *session.Session `json:"session"`
	Agent       agent.Type       `json:"agent"`
	Signals     routing.Signals  `json:"signals"`
	Transferred bool             `json:"transferred"`
	Reply       string           `json:"reply"`
}

// Intake wires routing, sessions, prompt composition, and the model
// router into the per-turn flow. It is the only entry point transports
// use.
type Intake struct {
	engine   *routing.Engine
	sessions *session.Manager
	composer *prompt.Composer
	analyzer *analysis.Analyzer
	router   model.ModelRouter
	model    string
	journal  *journal.Journal
	notifier alerts.Notifier
}

// Options carries the optional collaborators. Nil fields disable the
// corresponding side effect.
type Options struct {
	Router   model.ModelRouter
	Model    string
	Journal  *journal.Journal
	Notifier alerts.Notifier
}

func New(engine *routing.Engine, sessions *session.Manager, composer *prompt.Composer, analyzer *analysis.Analyzer, opts Options) *Intake {
	notifier := opts.Notifier
	if notifier == nil {
		notifier = alerts.NopNotifier{}
	}
	return &Intake{
		engine:   engine,
		sessions: sessions,
		composer: composer,
		analyzer: analyzer,
		router:   opts.Router,
		model:    opts.Model,
		journal:  opts.Journal,
		notifier: notifier,
	}
}

// HandleTurn routes one message, updates the session, and produces a
// reply. Model failures are absorbed: the caller always gets a usable
// result or a NotFound/InvalidInput error from the session layer.
func (i *Intake) HandleTurn(ctx context.Context, req TurnRequest) (*TurnResult, error) {
	if strings.TrimSpace(req.Input) == "" {
		return nil, errors.InvalidInput("input text required")
	}

	signals := routing.AnalyzeSignals(req.Input)
	traceID := logger.GetTraceID(ctx)

	var (
		sess        *session.Session
		transferred bool
		err         error
	)

	if req.SessionID == "" {
		sess, err = i.startConversation(ctx, req)
	} else {
		sess, transferred, err = i.continueConversation(ctx, req, signals)
	}
	if err != nil {
		return nil, err
	}

	if signals.IsEmergency {
		i.notifier.EmergencyDetected(ctx, sess, signals, req.Input)
		i.record(journal.Entry{
			Kind:      journal.KindEmergency,
			TraceID:   traceID,
			SessionID: sess.ID,
			Channel:   string(sess.Channel),
			Agent:     string(sess.AgentType),
		})
	}

	systemPrompt, err := i.composer.Build(sess.AgentType, &sess.Context)
	if err != nil {
		return nil, err
	}

	result := &TurnResult{
		Session:     sess,
		Agent:       sess.AgentType,
		Signals:     signals,
		Transferred: transferred,
	}
	result.Reply = i.reply(ctx, systemPrompt, req.Input, sess.Context.Language)

	return result, nil
}

func (i *Intake) startConversation(ctx context.Context, req TurnRequest) (*session.Session, error) {
	target := i.engine.Route(req.Input, routing.Context{}, req.Preferred)

	sess, err := i.sessions.Create(target, req.UserID, req.Channel)
	if err != nil {
		return nil, err
	}

	i.record(journal.Entry{
		Kind:      journal.KindSessionStart,
		TraceID:   logger.GetTraceID(ctx),
		SessionID: sess.ID,
		Channel:   string(sess.Channel),
		Agent:     string(target),
	})

	return sess, nil
}

func (i *Intake) continueConversation(ctx context.Context, req TurnRequest, signals routing.Signals) (*session.Session, bool, error) {
	sess, err := i.sessions.Get(req.SessionID)
	if err != nil {
		return nil, false, err
	}

	target := i.engine.Route(req.Input, routing.Context{PreviousAgent: sess.AgentType}, req.Preferred)
	if target == sess.AgentType {
		if err := i.sessions.Touch(req.SessionID, nil); err != nil {
			return nil, false, err
		}
		return sess, false, nil
	}

	reason := transferReason(signals)
	sess, err = i.sessions.Transfer(req.SessionID, target, reason)
	if err != nil {
		return nil, false, err
	}

	i.record(journal.Entry{
		Kind:      journal.KindTransfer,
		TraceID:   logger.GetTraceID(ctx),
		SessionID: sess.ID,
		Channel:   string(sess.Channel),
		From:      string(sess.Context.PreviousAgent),
		To:        string(target),
		Reason:    reason,
	})

	return sess, true, nil
}

// EndSession removes a session and journals the end.
func (i *Intake) EndSession(ctx context.Context, sessionID string) {
	i.sessions.End(sessionID)
	i.record(journal.Entry{
		Kind:      journal.KindSessionEnd,
		TraceID:   logger.GetTraceID(ctx),
		SessionID: sessionID,
	})
}

// AnalyzeRemovalDefenseCase delegates to the analyzer.
func (i *Intake) AnalyzeRemovalDefenseCase(ctx context.Context, facts analysis.CaseFacts) analysis.RemovalDefenseAnalysis {
	return i.analyzer.AnalyzeRemovalDefenseCase(ctx, facts)
}

// AnalyzeBondMotion delegates to the analyzer.
func (i *Intake) AnalyzeBondMotion(ctx context.Context, facts analysis.BondFacts) analysis.BondMotionAnalysis {
	return i.analyzer.AnalyzeBondMotion(ctx, facts)
}

// ActiveSessions reports the live session count.
func (i *Intake) ActiveSessions() int {
	return i.sessions.ActiveCount()
}

// Sessions exposes the session manager to transports that need
// snapshots for stats.
func (i *Intake) Sessions() *session.Manager {
	return i.sessions
}

// reply asks the model for the turn's answer. Any failure degrades to a
// canned acknowledgement in the session language; the caller never sees
// a raw model error.
func (i *Intake) reply(ctx context.Context, systemPrompt, input string, language agent.Language) string {
	if i.router == nil {
		return cannedReply(language)
	}

	resp, err := i.router.Route(ctx, i.model, contract.CompletionRequest{
		Model:  i.model,
		System: systemPrompt,
		Messages: []contract.Message{
			{Role: "user", Content: input},
		},
	})
	if err != nil {
		slog.Warn("Model reply failed, using canned acknowledgement", "error", err)
		return cannedReply(language)
	}
	return resp.Content
}

func cannedReply(language agent.Language) string {
	if language == agent.LanguageSpanish {
		return "Gracias por comunicarse con nosotros. Un miembro de nuestro equipo legal le responderá en breve."
	}
	return "Thank you for contacting us. A member of our legal team will follow up with you shortly."
}

func transferReason(signals routing.Signals) string {
	switch {
	case signals.IsEmergency:
		return "emergency keywords detected"
	case signals.LegalArea != routing.AreaNone:
		return fmt.Sprintf("matched legal area: %s", signals.LegalArea)
	case len(signals.Keywords) > 0:
		return fmt.Sprintf("matched keywords: %s", strings.Join(signals.Keywords, ", "))
	default:
		return "routing reassessment"
	}
}

func (i *Intake) record(entry journal.Entry) {
	if i.journal == nil {
		return
	}
	if err := i.journal.Append(entry); err != nil {
		slog.Error("Failed to append journal entry", "kind", entry.Kind, "error", err)
	}
}
