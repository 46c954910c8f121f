package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vozlegal/intake/internal/agent"
	"github.com/vozlegal/intake/internal/analysis"
	intakeErrors "github.com/vozlegal/intake/internal/errors"
	"github.com/vozlegal/intake/internal/journal"
	"github.com/vozlegal/intake/internal/knowledge"
	"github.com/vozlegal/intake/internal/model/contract"
	"github.com/vozlegal/intake/internal/prompt"
	"github.com/vozlegal/intake/internal/routing"
	"github.com/vozlegal/intake/internal/session"
)

type fakeRouter struct {
	response string
	err      error
	calls    int
}

func (f *fakeRouter) Route(ctx context.Context, model string, req contract.CompletionRequest) (*contract.CompletionResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &contract.CompletionResponse{Content: f.response}, nil
}

func (f *fakeRouter) RouteEmbedding(ctx context.Context, model string, text string) ([]float32, error) {
	return nil, intakeErrors.InvalidInput("embedding not supported")
}

func (f *fakeRouter) ListModels() []string { return nil }

func (f *fakeRouter) Health(ctx context.Context) error { return nil }

type fakeNotifier struct {
	emergencies int
}

func (f *fakeNotifier) EmergencyDetected(ctx context.Context, sess *session.Session, signals routing.Signals, input string) {
	f.emergencies++
}

// officeHours is a Monday at 10:00 UTC so business-hour agents are staffed.
func officeHours() time.Time {
	return time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
}

func newIntake(t *testing.T, opts Options) *Intake {
	t.Helper()

	registry, err := agent.NewRegistry(agent.Builtin())
	require.NoError(t, err)

	evaluator := agent.NewEvaluator(registry, time.UTC)
	engine := routing.NewEngine(registry, evaluator, officeHours)
	sessions := session.NewManager(registry, 50, nil)
	composer := prompt.NewComposer(registry, knowledge.Builtin())
	analyzer := analysis.NewAnalyzer(opts.Router, opts.Model, time.Second)

	return New(engine, sessions, composer, analyzer, opts)
}

func TestHandleTurn_ColdStartClassifies(t *testing.T) {
	i := newIntake(t, Options{})

	result, err := i.HandleTurn(context.Background(), TurnRequest{
		UserID:  "user-1",
		Channel: session.ChannelChat,
		Input:   "I was in a car accident yesterday",
	})
	require.NoError(t, err)

	// First contact always goes to triage before any specialist.
	assert.Equal(t, agent.TypeClassification, result.Agent)
	assert.False(t, result.Transferred)
	assert.NotEmpty(t, result.Session.ID)
	assert.Equal(t, 1, i.ActiveSessions())
}

func TestHandleTurn_SecondTurnTransfers(t *testing.T) {
	i := newIntake(t, Options{})

	first, err := i.HandleTurn(context.Background(), TurnRequest{
		UserID:  "user-1",
		Channel: session.ChannelChat,
		Input:   "hello, I need help",
	})
	require.NoError(t, err)
	require.Equal(t, agent.TypeClassification, first.Agent)

	second, err := i.HandleTurn(context.Background(), TurnRequest{
		SessionID: first.Session.ID,
		UserID:    "user-1",
		Channel:   session.ChannelChat,
		Input:     "I was in a car accident yesterday",
	})
	require.NoError(t, err)

	assert.Equal(t, agent.TypePersonalInjury, second.Agent)
	assert.True(t, second.Transferred)
	require.Len(t, second.Session.Context.TransferHistory, 1)
	assert.Equal(t, agent.TypeClassification, second.Session.Context.TransferHistory[0].From)
}

func TestHandleTurn_SameAgentNoTransfer(t *testing.T) {
	i := newIntake(t, Options{})

	first, err := i.HandleTurn(context.Background(), TurnRequest{
		UserID:  "user-1",
		Channel: session.ChannelChat,
		Input:   "hello",
	})
	require.NoError(t, err)

	second, err := i.HandleTurn(context.Background(), TurnRequest{
		SessionID: first.Session.ID,
		UserID:    "user-1",
		Channel:   session.ChannelChat,
		Input:     "just saying hi again",
	})
	require.NoError(t, err)

	assert.False(t, second.Transferred)
	assert.Empty(t, second.Session.Context.TransferHistory)
}

func TestHandleTurn_EmergencyNotifiesAndJournals(t *testing.T) {
	notifier := &fakeNotifier{}
	j, err := journal.Open(filepath.Join(t.TempDir(), "journal.jsonl"), time.Second, 10*time.Millisecond)
	require.NoError(t, err)
	defer j.Close()

	i := newIntake(t, Options{Notifier: notifier, Journal: j})

	first, err := i.HandleTurn(context.Background(), TurnRequest{
		UserID:  "user-1",
		Channel: session.ChannelVoice,
		Input:   "hola, necesito ayuda",
	})
	require.NoError(t, err)

	result, err := i.HandleTurn(context.Background(), TurnRequest{
		SessionID: first.Session.ID,
		UserID:    "user-1",
		Channel:   session.ChannelVoice,
		Input:     "la migra se llevó a mi esposo esta mañana",
	})
	require.NoError(t, err)

	assert.True(t, result.Signals.IsEmergency)
	assert.Equal(t, 1, notifier.emergencies)
}

func TestHandleTurn_ModelReply(t *testing.T) {
	router := &fakeRouter{response: "Sorry to hear that. When did the accident happen?"}
	i := newIntake(t, Options{Router: router, Model: "gpt-4o-mini"})

	result, err := i.HandleTurn(context.Background(), TurnRequest{
		UserID:  "user-1",
		Channel: session.ChannelChat,
		Input:   "I was in a car accident",
	})
	require.NoError(t, err)
	assert.Equal(t, "Sorry to hear that. When did the accident happen?", result.Reply)
	assert.Equal(t, 1, router.calls)
}

func TestHandleTurn_ModelFailureCannedReply(t *testing.T) {
	router := &fakeRouter{err: intakeErrors.ExternalService("upstream down")}
	i := newIntake(t, Options{Router: router, Model: "gpt-4o-mini"})

	result, err := i.HandleTurn(context.Background(), TurnRequest{
		UserID:  "user-1",
		Channel: session.ChannelChat,
		Input:   "I was in a car accident",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Reply)
	assert.Contains(t, result.Reply, "Thank you for contacting us")
}

func TestHandleTurn_NoRouterCannedReply(t *testing.T) {
	i := newIntake(t, Options{})

	result, err := i.HandleTurn(context.Background(), TurnRequest{
		UserID:  "user-1",
		Channel: session.ChannelChat,
		Input:   "hello",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Reply)
}

func TestHandleTurn_Validation(t *testing.T) {
	i := newIntake(t, Options{})

	_, err := i.HandleTurn(context.Background(), TurnRequest{
		UserID:  "user-1",
		Channel: session.ChannelChat,
		Input:   "   ",
	})
	assert.ErrorIs(t, err, intakeErrors.ErrInvalidInput)

	_, err = i.HandleTurn(context.Background(), TurnRequest{
		SessionID: "no-such-session",
		UserID:    "user-1",
		Channel:   session.ChannelChat,
		Input:     "hello",
	})
	assert.ErrorIs(t, err, intakeErrors.ErrNotFound)
}

func TestEndSession(t *testing.T) {
	i := newIntake(t, Options{})

	result, err := i.HandleTurn(context.Background(), TurnRequest{
		UserID:  "user-1",
		Channel: session.ChannelChat,
		Input:   "hello",
	})
	require.NoError(t, err)
	require.Equal(t, 1, i.ActiveSessions())

	i.EndSession(context.Background(), result.Session.ID)
	assert.Equal(t, 0, i.ActiveSessions())

	// Idempotent.
	i.EndSession(context.Background(), result.Session.ID)
	assert.Equal(t, 0, i.ActiveSessions())
}

func TestAnalyzeDelegation(t *testing.T) {
	i := newIntake(t, Options{})

	out := i.AnalyzeRemovalDefenseCase(context.Background(), analysis.CaseFacts{IsDetained: true})
	assert.Equal(t, analysis.UrgencyCritical, out.Urgency)

	bond := i.AnalyzeBondMotion(context.Background(), analysis.BondFacts{DetentionFacility: "Port Isabel"})
	assert.Equal(t, analysis.UrgencyCritical, bond.Urgency)
}
