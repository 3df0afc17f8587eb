package chat

import (
	"context"
	"encoding/json"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/FACorreiaa/raiox-score/internal/domain/analysis"
	"github.com/FACorreiaa/raiox-score/internal/domain/completion"
	"github.com/FACorreiaa/raiox-score/internal/domain/store"
	"github.com/FACorreiaa/raiox-score/pkg/metrics"
	"github.com/FACorreiaa/raiox-score/pkg/textnorm"
)

// SnapshotProvider returns the records to answer from.
type SnapshotProvider interface {
	Current(ctx context.Context) (*store.Snapshot, error)
}

// Query is one inbound chat turn.
type Query struct {
	Message string
	// StoreCode, when set, wins over any code found in Message.
	StoreCode string
}

// Reply is always well formed, whatever failed while producing it.
type Reply struct {
	ID        uuid.UUID      `json:"id"`
	Text      string         `json:"resposta"`
	Card      *analysis.Card `json:"card,omitempty"`
	Intent    Intent         `json:"intent"`
	StoreCode string         `json:"eg,omitempty"`
}

// Router classifies messages and produces replies.
type Router struct {
	data          SnapshotProvider
	completer     completion.Completer
	clock         Clock
	pick          Picker
	loc           *time.Location
	assistantMode bool
	legacyPrompt  bool
	logger        *slog.Logger
	metrics       *metrics.Metrics
}

// NewRouter creates a router answering from data with local rules only.
func NewRouter(data SnapshotProvider, logger *slog.Logger) *Router {
	loc, err := LoadZone(DefaultZone)
	if err != nil {
		loc = time.UTC
	}
	return &Router{
		data:   data,
		clock:  SystemClock{},
		pick:   rand.IntN,
		loc:    loc,
		logger: logger,
	}
}

// WithCompleter enables the completion fall-through.
func (r *Router) WithCompleter(c completion.Completer) *Router {
	r.completer = c
	return r
}

// WithClock replaces the wall clock.
func (r *Router) WithClock(c Clock) *Router {
	r.clock = c
	return r
}

// WithPicker replaces the random choice of canned phrasings.
func (r *Router) WithPicker(p Picker) *Router {
	r.pick = p
	return r
}

// WithLocation sets the greeting time zone.
func (r *Router) WithLocation(loc *time.Location) *Router {
	if loc != nil {
		r.loc = loc
	}
	return r
}

// WithAssistantMode answers located stores through the completer.
func (r *Router) WithAssistantMode(enabled bool) *Router {
	r.assistantMode = enabled
	return r
}

// WithLegacyPrompt sends fully built prompts instead of message and code.
func (r *Router) WithLegacyPrompt(enabled bool) *Router {
	r.legacyPrompt = enabled
	return r
}

// WithMetrics enables intent counters.
func (r *Router) WithMetrics(m *metrics.Metrics) *Router {
	r.metrics = m
	return r
}

// Respond routes one message.
func (r *Router) Respond(ctx context.Context, q Query) Reply {
	reply := r.respond(ctx, q)
	reply.ID = uuid.New()
	r.metrics.IntentClassified(string(reply.Intent))
	r.logger.Debug("chat reply",
		slog.String("intent", string(reply.Intent)),
		slog.String("eg", reply.StoreCode),
		slog.Bool("card", reply.Card != nil))
	return reply
}

func (r *Router) respond(ctx context.Context, q Query) Reply {
	message := strings.TrimSpace(q.Message)
	code := strings.TrimSpace(q.StoreCode)
	if message == "" && code == "" {
		return Reply{Text: emptyMessageReply, Intent: IntentUnrecognized}
	}

	folded := textnorm.Fold(message)
	switch classify(folded) {
	case IntentGreeting:
		return Reply{Text: r.greeting(), Intent: IntentGreeting}
	case IntentHelpMenu:
		text := knowledgeTopic(folded)
		if text == "" {
			text = helpMenuReply
		}
		return Reply{Text: text, Intent: IntentHelpMenu}
	case IntentProductInfo:
		return Reply{Text: productIn(folded), Intent: IntentProductInfo}
	case IntentThanks:
		return Reply{Text: r.choose(thanksReplies), Intent: IntentThanks}
	}

	return r.lookup(ctx, message, folded, code)
}

func (r *Router) lookup(ctx context.Context, message, folded, code string) Reply {
	if code == "" {
		code = extractCode(folded)
	}

	var query string
	if code == "" {
		query = nameQuery(folded)
		if letterCount(query) < 3 {
			return Reply{Text: clarificationReply, Intent: IntentUnrecognized}
		}
	}

	snap, err := r.data.Current(ctx)
	if err != nil || snap.IsEmpty() {
		if err != nil {
			r.logger.Warn("store data unavailable", slog.Any("error", err))
		}
		intent := IntentStoreByName
		if code != "" {
			intent = IntentStoreByCode
		}
		return Reply{Text: loadingReply, Intent: intent, StoreCode: code}
	}

	if code != "" {
		matches := snap.LookupCode(code)
		switch len(matches) {
		case 0:
			return Reply{Text: codeNotFoundReply(code, snap.Len()), Intent: IntentStoreByCode, StoreCode: code}
		case 1:
			return r.answer(ctx, message, matches[0], IntentStoreByCode)
		default:
			return Reply{Text: disambiguationReply(code, matches), Intent: IntentStoreByCode, StoreCode: code}
		}
	}

	matches := snap.SearchByName(query)
	switch len(matches) {
	case 0:
		if r.completer != nil {
			reply := r.complete(ctx, message, nil)
			reply.Intent = IntentUnrecognized
			return reply
		}
		return Reply{Text: nameNotFoundReply(message, snap.Suggest(query, maxSuggestions)), Intent: IntentStoreByName}
	case 1:
		return r.answer(ctx, message, matches[0], IntentStoreByName)
	default:
		return Reply{Text: disambiguationReply(query, matches), Intent: IntentStoreByName}
	}
}

// answer renders the report for one located store, or hands it to the
// completer in assistant mode. The card is attached either way.
func (r *Router) answer(ctx context.Context, message string, rec store.Record, intent Intent) Reply {
	report := analysis.Analyze(rec)
	card := report.Card()

	reply := Reply{Text: report.Text(), Intent: intent}
	if r.assistantMode && r.completer != nil {
		reply = r.complete(ctx, message, &rec)
		reply.Intent = intent
	}
	reply.Card = &card
	reply.StoreCode = rec.StoreCode
	return reply
}

func (r *Router) complete(ctx context.Context, message string, rec *store.Record) Reply {
	var req completion.Request
	if r.legacyPrompt {
		req = completion.LegacyPromptRequest{Prompt: BuildPrompt(message, rec)}
	} else {
		structured := completion.StructuredRequest{Message: message}
		if rec != nil {
			structured.StoreCode = rec.StoreCode
		}
		req = structured
	}

	res, err := r.completer.Complete(ctx, req)
	if err != nil {
		r.logger.Warn("completion failed", slog.Any("error", err))
		return Reply{Text: completion.FailureMessage(err)}
	}

	reply := Reply{Text: res.Text}
	if len(res.Card) > 0 {
		var card analysis.Card
		if err := json.Unmarshal(res.Card, &card); err == nil {
			reply.Card = &card
		}
	}
	return reply
}

func (r *Router) greeting() string {
	hour := r.clock.CurrentHourInZone(r.loc)
	return salutations[periodOf(hour)] + " " + r.choose(greetingFollowUps)
}

func (r *Router) choose(options []string) string {
	i := r.pick(len(options))
	if i < 0 || i >= len(options) {
		i = 0
	}
	return options[i]
}
