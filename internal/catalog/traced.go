package catalog

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/cardlore/cardlore/internal/types"
)

// Span and attribute names recorded by TracedCatalog.
const (
	SpanPrefix = "cardlore.catalog."

	AttrOperation  = "cardlore.catalog.operation"
	AttrErrorKind  = "cardlore.catalog.error_kind"
	AttrResultSize = "cardlore.catalog.result_size"
	AttrDurationMs = "cardlore.catalog.duration_ms"
)

// Recorder receives one observation per finished operation. outcome is "ok"
// or the error kind.
type Recorder interface {
	ObserveOperation(op string, outcome string, duration time.Duration)
}

// TracedCatalog wraps a Catalog with OpenTelemetry tracing and, when a
// Recorder is set, operation metrics. Each operation gets a span named
// "cardlore.catalog.<operation>".
//
// Thread-safety: Safe for concurrent access (delegates to inner catalog).
type TracedCatalog struct {
	inner    Catalog
	tracer   trace.Tracer
	recorder Recorder
}

var _ Catalog = (*TracedCatalog)(nil)

// TracedOption configures a TracedCatalog.
type TracedOption func(*TracedCatalog)

// WithRecorder sets the metrics recorder.
func WithRecorder(recorder Recorder) TracedOption {
	return func(t *TracedCatalog) {
		t.recorder = recorder
	}
}

// NewTracedCatalog creates a traced catalog.
//
// Example:
//
//	traced := NewTracedCatalog(service, otel.Tracer("cardlore.catalog"),
//	    WithRecorder(metrics))
func NewTracedCatalog(inner Catalog, tracer trace.Tracer, opts ...TracedOption) *TracedCatalog {
	t := &TracedCatalog{inner: inner, tracer: tracer}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// observe starts the span of op and returns the function that ends it.
func (t *TracedCatalog) observe(ctx context.Context, op Operation, attrs ...attribute.KeyValue) (context.Context, func(size int, err error)) {
	ctx, span := t.tracer.Start(ctx, SpanPrefix+string(op))
	span.SetAttributes(attribute.String(AttrOperation, string(op)))
	span.SetAttributes(attrs...)
	startTime := time.Now()

	return ctx, func(size int, err error) {
		defer span.End()
		duration := time.Since(startTime)
		span.SetAttributes(attribute.Float64(AttrDurationMs, float64(duration.Milliseconds())))

		outcome := "ok"
		if err != nil {
			kind := types.KindOf(err)
			outcome = kind.String()
			span.SetAttributes(attribute.String(AttrErrorKind, outcome))
			span.RecordError(err)
			// A missing entity or a bad argument is an answer, not a fault.
			if kind == types.KindInfrastructure {
				span.SetStatus(codes.Error, err.Error())
			}
		} else {
			span.SetAttributes(attribute.Int(AttrResultSize, size))
			span.SetStatus(codes.Ok, "")
		}

		if t.recorder != nil {
			t.recorder.ObserveOperation(string(op), outcome, duration)
		}
	}
}

// GetSet implements Catalog.
func (t *TracedCatalog) GetSet(ctx context.Context, code string) (*Set, error) {
	ctx, done := t.observe(ctx, OpGetSet, attribute.String("cardlore.set.code", code))
	set, err := t.inner.GetSet(ctx, code)
	size := 0
	if set != nil {
		size = len(set.Cards)
	}
	done(size, err)
	return set, err
}

// GetCard implements Catalog.
func (t *TracedCatalog) GetCard(ctx context.Context, uuid string) (*Card, error) {
	ctx, done := t.observe(ctx, OpGetCard, attribute.String("cardlore.card.uuid", uuid))
	card, err := t.inner.GetCard(ctx, uuid)
	size := 0
	if card != nil {
		size = 1
	}
	done(size, err)
	return card, err
}

// GetArtist implements Catalog.
func (t *TracedCatalog) GetArtist(ctx context.Context, name string) (*Artist, error) {
	ctx, done := t.observe(ctx, OpGetArtist, attribute.String("cardlore.artist.name", name))
	artist, err := t.inner.GetArtist(ctx, name)
	size := 0
	if artist != nil {
		size = len(artist.Cards)
	}
	done(size, err)
	return artist, err
}

// GetColor implements Catalog.
func (t *TracedCatalog) GetColor(ctx context.Context, name string, page Page) (*ColorBucket, error) {
	ctx, done := t.observe(ctx, OpGetColor, append(pageAttributes(page),
		attribute.String("cardlore.color.name", name))...)
	bucket, err := t.inner.GetColor(ctx, name, page)
	size := 0
	if bucket != nil {
		size = len(bucket.Cards)
	}
	done(size, err)
	return bucket, err
}

// GetRarity implements Catalog.
func (t *TracedCatalog) GetRarity(ctx context.Context, name string, page Page) (*RarityBucket, error) {
	ctx, done := t.observe(ctx, OpGetRarity, append(pageAttributes(page),
		attribute.String("cardlore.rarity.name", name))...)
	bucket, err := t.inner.GetRarity(ctx, name, page)
	size := 0
	if bucket != nil {
		size = len(bucket.Cards)
	}
	done(size, err)
	return bucket, err
}

// GetManaValue implements Catalog.
func (t *TracedCatalog) GetManaValue(ctx context.Context, value float64, page Page) (*ManaValueBucket, error) {
	ctx, done := t.observe(ctx, OpGetManaValue, append(pageAttributes(page),
		attribute.Float64("cardlore.mana_value", value))...)
	bucket, err := t.inner.GetManaValue(ctx, value, page)
	size := 0
	if bucket != nil {
		size = len(bucket.Cards)
	}
	done(size, err)
	return bucket, err
}

// ListCards implements Catalog.
func (t *TracedCatalog) ListCards(ctx context.Context, filter CardFilter) ([]Card, error) {
	ctx, done := t.observe(ctx, OpListCards, pageAttributes(filter.Page)...)
	cards, err := t.inner.ListCards(ctx, filter)
	done(len(cards), err)
	return cards, err
}

// Search implements Catalog.
func (t *TracedCatalog) Search(ctx context.Context, term string) ([]SearchResult, error) {
	ctx, done := t.observe(ctx, OpSearch, attribute.Int("cardlore.search.term_length", len(term)))
	results, err := t.inner.Search(ctx, term)
	done(len(results), err)
	return results, err
}

func pageAttributes(page Page) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int64("cardlore.page.skip", page.Skip),
		attribute.Int64("cardlore.page.limit", page.Limit),
	}
}
