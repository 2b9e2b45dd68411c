// Package stylist runs the "Styla" style-advice conversation: it routes each
// message to a model variant, carries history across variant switches,
// aggregates the streamed reply and fires a preview render when the reply asks
// for one.
package stylist

import (
	"context"
	"fmt"
	"iter"
	"sync"
	"sync/atomic"

	"custemoapi/models"

	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog"
)

// Manager owns one conversation. Sends are processed strictly one at a time in
// call order; the transcript is only mutated while the lock is held.
type Manager struct {
	mu        sync.Mutex
	backend   ChatBackend
	generator PreviewGenerator
	counter   Counter

	session    ChatSession
	variant    ModelVariant
	transcript []Turn
	nextID     int

	// sends counts Send calls that are running or waiting for the lock.
	sends  atomic.Int32
	onIdle func()
}

type Option func(*Manager)

func WithCounter(c Counter) Option {
	return func(m *Manager) {
		m.counter = c
	}
}

func NewManager(backend ChatBackend, generator PreviewGenerator, opts ...Option) *Manager {
	m := &Manager{backend: backend, generator: generator}
	for _, opt := range opts {
		opt(m)
	}
	m.resetLocked()
	return m
}

// Reset drops the backend session and starts a fresh transcript.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetLocked()
}

func (m *Manager) resetLocked() {
	m.session = nil
	m.variant = ""
	m.transcript = nil
	m.nextID = 0
	m.appendTurn(Turn{Role: RoleModel, Text: GreetingText, State: TurnFinal})
}

func (m *Manager) Transcript() []Turn {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Turn, len(m.transcript))
	for i, t := range m.transcript {
		out[i] = t.clone()
	}
	return out
}

// Busy reports whether a Send is running or queued.
func (m *Manager) Busy() bool {
	return m.sends.Load() > 0
}

func (m *Manager) Variant() ModelVariant {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.variant
}

// Send queues one user message. Nothing happens until the returned sequence is
// ranged over; it can be consumed once, later ranges yield nothing. cfg is the
// design snapshot used for the preamble and for any preview the reply asks for.
func (m *Manager) Send(ctx context.Context, cfg models.GarmentConfiguration, text string, opts SendOptions) iter.Seq[TurnEvent] {
	var used atomic.Bool
	return func(yield func(TurnEvent) bool) {
		if !used.CompareAndSwap(false, true) {
			return
		}
		m.sends.Add(1)
		defer func() {
			m.sends.Add(-1)
			if m.onIdle != nil {
				m.onIdle()
			}
		}()
		m.mu.Lock()
		defer m.mu.Unlock()
		m.send(ctx, cfg, text, opts, &emitter{yield: yield})
	}
}

func (m *Manager) send(ctx context.Context, cfg models.GarmentConfiguration, text string, opts SendOptions, e *emitter) {
	logger := zerolog.Ctx(ctx)
	route := SelectRoute(opts)

	user := Turn{Role: RoleUser, Text: text, State: TurnFinal}
	if opts.Image != nil {
		user.Image = opts.Image.DataURL()
	}
	e.emit(EventTurnAdded, m.transcript[m.appendTurn(user)])

	reply := m.appendTurn(Turn{Role: RoleModel, State: TurnPending, Variant: route.Variant})
	e.emit(EventTurnAdded, m.transcript[reply])

	session, err := m.sessionFor(ctx, route)
	if err != nil {
		logger.Error().Err(err).Str("variant", string(route.Variant)).Msg("[Stylist] could not open chat session")
		sentry.CaptureException(fmt.Errorf("[Stylist] open %s session: %w", route.Variant, err))
		m.failTurn(reply, StreamFailureText)
		e.emit(EventTurnFinal, m.transcript[reply])
		m.inc(ctx, "stylist_turns_total", map[string]string{"variant": string(route.Variant), "result": "error"})
		return
	}

	msg := Message{Role: RoleUser, Text: BuildPreamble(cfg, text), Image: opts.Image}

	var scanner directiveScanner
	var citations citationSet
	received := 0
	var streamErr error
	for chunk, err := range session.SendStream(ctx, msg) {
		if err != nil {
			streamErr = err
			break
		}
		if chunk == nil {
			continue
		}
		received++
		visible, firstSighting := scanner.Push(chunk.Delta())
		if firstSighting {
			m.inc(ctx, "stylist_directives_total", nil)
		}
		if grounded, ok := chunk.(GroundedDelta); ok {
			citations.add(grounded.Citations)
		}
		turn := &m.transcript[reply]
		turn.Text = visible
		turn.Citations = citations.list()
		e.emit(EventTurnUpdated, *turn)
	}

	result := "ok"
	if streamErr != nil {
		logger.Error().Err(streamErr).Int("chunks", received).Str("variant", string(route.Variant)).Msg("[Stylist] stream failed")
		sentry.CaptureException(fmt.Errorf("[Stylist] %s stream after %d chunks: %w", route.Variant, received, streamErr))
		result = "error"
	}
	if streamErr != nil && received == 0 {
		m.failTurn(reply, StreamFailureText)
	} else {
		turn := &m.transcript[reply]
		turn.Text = scanner.Flush()
		turn.Citations = citations.list()
		turn.State = TurnFinal
	}
	e.emit(EventTurnFinal, m.transcript[reply])
	m.inc(ctx, "stylist_turns_total", map[string]string{"variant": string(route.Variant), "result": result})

	if scanner.Triggered() {
		m.renderPreview(ctx, cfg, e)
	}
}

// renderPreview runs after the reply is fully drained and only ever touches
// its own placeholder turn.
func (m *Manager) renderPreview(ctx context.Context, cfg models.GarmentConfiguration, e *emitter) {
	placeholder := m.appendTurn(Turn{Role: RoleModel, Text: PreviewPendingText, State: TurnPending})
	e.emit(EventTurnAdded, m.transcript[placeholder])

	var image *Attachment
	err := fmt.Errorf("no preview generator configured")
	if m.generator != nil {
		image, err = m.generator.GeneratePreview(ctx, cfg)
		if err == nil && image == nil {
			err = fmt.Errorf("preview generator returned no image")
		}
	}

	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("[Stylist] preview render failed")
		sentry.CaptureException(fmt.Errorf("[Stylist] preview render: %w", err))
		m.failTurn(placeholder, PreviewFailedText)
		m.inc(ctx, "stylist_previews_total", map[string]string{"result": "error"})
	} else {
		turn := &m.transcript[placeholder]
		turn.Text = PreviewReadyText
		turn.Image = image.DataURL()
		turn.State = TurnFinal
		m.inc(ctx, "stylist_previews_total", map[string]string{"result": "ok"})
	}
	e.emit(EventTurnFinal, m.transcript[placeholder])
}

// sessionFor reuses the current backend session when the variant matches and
// otherwise replays its history into a new session for the requested variant.
// On failure the previous session stays in place.
func (m *Manager) sessionFor(ctx context.Context, route Route) (ChatSession, error) {
	if m.session != nil && m.variant == route.Variant {
		return m.session, nil
	}

	var history []Message
	if m.session != nil {
		history = m.session.History()
	}
	session, err := m.backend.NewSession(ctx, route, history)
	if err != nil {
		return nil, err
	}
	if m.session != nil {
		zerolog.Ctx(ctx).Info().
			Str("from", string(m.variant)).
			Str("to", string(route.Variant)).
			Int("history", len(history)).
			Msg("[Stylist] switching model variant")
		m.inc(ctx, "stylist_variant_switches_total", map[string]string{"from": string(m.variant), "to": string(route.Variant)})
	}
	m.session = session
	m.variant = route.Variant
	return session, nil
}

func (m *Manager) appendTurn(t Turn) int {
	m.nextID++
	t.ID = m.nextID
	m.transcript = append(m.transcript, t)
	return len(m.transcript) - 1
}

func (m *Manager) failTurn(idx int, text string) {
	turn := &m.transcript[idx]
	turn.Text = text
	turn.Citations = nil
	turn.IsError = true
	turn.State = TurnFinal
}

func (m *Manager) inc(ctx context.Context, name string, labels map[string]string) {
	if m.counter != nil {
		m.counter.Inc(ctx, name, labels, 1)
	}
}
