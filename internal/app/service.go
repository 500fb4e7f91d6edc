package app

import (
	"context"
	"time"

	"castlebattle/internal/domain"
	"castlebattle/internal/ports"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "castlebattle/app"

// Service contains the match use-cases. Every mutating call runs in one store transaction
// and returns the events the caller should deliver once it has committed.
type Service struct {
	store  ports.MatchStore
	engine *domain.Engine
	newID  func() string
	now    func() time.Time
	tracer trace.Tracer
}

// Option customizes a Service.
type Option func(*Service)

// WithIDGenerator replaces the uuid generator used for new rows.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) { s.newID = fn }
}

// WithClock replaces the wall clock.
func WithClock(fn func() time.Time) Option {
	return func(s *Service) { s.now = fn }
}

// NewService constructs a Service over store. A nil engine uses the default rules and a time-seeded rng.
func NewService(store ports.MatchStore, engine *domain.Engine, opts ...Option) *Service {
	if engine == nil {
		engine = domain.NewEngine(domain.DefaultRules(), nil)
	}
	s := &Service{
		store:  store,
		engine: engine,
		newID:  uuid.NewString,
		now:    func() time.Time { return time.Now().UTC() },
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) startSpan(ctx context.Context, name, matchID, playerID string) (context.Context, trace.Span) {
	attrs := make([]attribute.KeyValue, 0, 2)
	if matchID != "" {
		attrs = append(attrs, matchAttr(matchID))
	}
	if playerID != "" {
		attrs = append(attrs, attribute.String("player.id", playerID))
	}
	return s.tracer.Start(ctx, "app."+name, trace.WithAttributes(attrs...))
}

func matchAttr(matchID string) attribute.KeyValue {
	return attribute.String("match.id", matchID)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
	}
	span.End()
}

// authorize rejects a request for playerID issued by a different user. An empty userID skips the check.
func authorize(g *domain.Game, playerID, userID string) error {
	if userID == "" {
		return nil
	}
	if p := g.Player(playerID); p != nil && p.UserID != userID {
		return domain.ErrUserMismatch
	}
	return nil
}

// userIDs lists the users seated in the match, in seat order.
func userIDs(g *domain.Game) []string {
	out := make([]string, 0, len(g.Players))
	for _, p := range g.Players {
		out = append(out, p.UserID)
	}
	return out
}

func userOf(g *domain.Game, playerID string) []string {
	if p := g.Player(playerID); p != nil {
		return []string{p.UserID}
	}
	return nil
}

// finishRoom closes the owning room once the match has ended.
func finishRoom(ctx context.Context, tx ports.MatchTx, g *domain.Game, at time.Time) error {
	if g.Match.Phase != domain.PhaseFinished {
		return nil
	}
	return tx.SetRoomStatus(ctx, g.Match.RoomID, ports.RoomFinished, at)
}
