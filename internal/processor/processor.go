package processor

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/XavierBriggs/fortuna/services/commentary-corpus/internal/consumer"
	"github.com/XavierBriggs/fortuna/services/commentary-corpus/internal/metrics"
	"github.com/XavierBriggs/fortuna/services/commentary-corpus/internal/registry"
	"github.com/XavierBriggs/fortuna/services/commentary-corpus/internal/source"
	"github.com/XavierBriggs/fortuna/services/commentary-corpus/pkg/contracts"
	"github.com/XavierBriggs/fortuna/services/commentary-corpus/pkg/models"
)

// Options wires the optional collaborators of a Processor
type Options struct {
	Loader   *source.Loader
	Consumer *consumer.StreamConsumer
	Metrics  *metrics.Metrics
	Logger   *zap.Logger

	// Order live records by game, period ascending, clock descending
	SortLive bool

	// Records per PublishBatch call when the publisher supports batching.
	// 0 publishes one record at a time.
	BatchSize int
}

// Summary reports one batch run
type Summary struct {
	RunID            string
	Files            int
	RowsRead         int
	Malformed        int
	Dropped          int
	Emitted          int
	DualDescriptions int
	SinkErrors       int
	Categories       map[string]int
}

// Processor drives rows through adapter, engine and sinks
type Processor struct {
	registry  *registry.AdapterRegistry
	engine    contracts.CommentaryEngine
	publisher contracts.Publisher
	loader    *source.Loader
	consumer  *consumer.StreamConsumer
	metrics   *metrics.Metrics
	logger    *zap.Logger
	sortLive  bool
	batchSize int

	// Stream metrics
	processedCount int64
	errorCount     int64
	mu             sync.Mutex
}

// NewProcessor creates a new processor
func NewProcessor(
	registry *registry.AdapterRegistry,
	engine contracts.CommentaryEngine,
	publisher contracts.Publisher,
	opts Options,
) *Processor {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New(prometheus.NewRegistry())
	}
	if opts.Loader == nil {
		opts.Loader = source.NewLoader(nil, opts.Logger)
	}

	return &Processor{
		registry:  registry,
		engine:    engine,
		publisher: publisher,
		loader:    opts.Loader,
		consumer:  opts.Consumer,
		metrics:   opts.Metrics,
		logger:    opts.Logger,
		sortLive:  opts.SortLive,
		batchSize: opts.BatchSize,
	}
}

// Run processes every location as one batch. schema may be empty to detect
// it per file from the header row.
func (p *Processor) Run(ctx context.Context, locations []string, schema string) (*Summary, error) {
	summary := &Summary{
		RunID:      uuid.NewString(),
		Categories: make(map[string]int),
	}
	log := p.logger.With(zap.String("run_id", summary.RunID))

	var live []*models.IntermediateRecord

	for _, location := range locations {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		table, err := p.loader.Load(ctx, location)
		if err != nil {
			return summary, err
		}

		adapter, err := p.adapterFor(table, schema)
		if err != nil {
			return summary, fmt.Errorf("%s: %w", location, err)
		}
		summary.Files++

		records := p.normalizeRows(table.RawRows(adapter.Schema()), adapter, summary, log)
		log.Info("source normalized",
			zap.String("location", location),
			zap.String("schema", string(adapter.Schema())),
			zap.String("game_id", table.GameID),
			zap.Int("records", len(records)),
		)

		if adapter.Schema() == models.SchemaLive && p.sortLive {
			live = append(live, records...)
			continue
		}
		p.emitAll(ctx, records, adapter.Schema(), summary, log)
	}

	if len(live) > 0 {
		SortLive(live)
		p.emitAll(ctx, live, models.SchemaLive, summary, log)
	}

	log.Info("batch complete",
		zap.Int("files", summary.Files),
		zap.Int("rows_read", summary.RowsRead),
		zap.Int("malformed", summary.Malformed),
		zap.Int("dropped", summary.Dropped),
		zap.Int("emitted", summary.Emitted),
		zap.Int("dual_descriptions", summary.DualDescriptions),
		zap.Int("sink_errors", summary.SinkErrors),
	)

	return summary, nil
}

func (p *Processor) adapterFor(table *source.Table, schema string) (contracts.SourceAdapter, error) {
	if schema != "" {
		return p.registry.Lookup(schema)
	}
	return p.registry.Detect(table.Header)
}

// normalizeRows runs the adapter over every row, skipping malformed ones
func (p *Processor) normalizeRows(rows []models.RawRow, adapter contracts.SourceAdapter, summary *Summary, log *zap.Logger) []*models.IntermediateRecord {
	schema := string(adapter.Schema())
	records := make([]*models.IntermediateRecord, 0, len(rows))

	for _, row := range rows {
		summary.RowsRead++
		p.metrics.RowsRead.WithLabelValues(schema).Inc()

		record, err := adapter.Normalize(row)
		if err != nil {
			if !errors.Is(err, contracts.ErrMalformedRow) {
				log.Warn("adapter error", zap.Int("row", row.Index), zap.Error(err))
			}
			summary.Malformed++
			p.metrics.RowsMalformed.WithLabelValues(schema).Inc()
			log.Debug("skipping malformed row", zap.String("game_id", row.GameID), zap.Error(err))
			continue
		}

		if record.DualDescription {
			summary.DualDescriptions++
			p.metrics.DualDescriptions.Inc()
			log.Warn("row has both home and away descriptions",
				zap.String("game_id", record.GameID),
				zap.Int("row", row.Index),
				zap.String("text", record.RawText),
			)
		}

		records = append(records, record)
	}

	return records
}

func (p *Processor) emitAll(ctx context.Context, records []*models.IntermediateRecord, schema models.SourceSchema, summary *Summary, log *zap.Logger) {
	batcher, batching := p.publisher.(contracts.BatchPublisher)
	batching = batching && p.batchSize > 0

	var pending []*models.CommentaryRecord
	flush := func() {
		if len(pending) == 0 {
			return
		}
		if err := batcher.PublishBatch(ctx, pending); err != nil {
			summary.SinkErrors++
			log.Error("batch publish failed", zap.Int("records", len(pending)), zap.Error(err))
		}
		pending = nil
	}

	for _, record := range records {
		commentary, ok := p.engine.Normalize(ctx, record)
		if !ok {
			summary.Dropped++
			p.metrics.RecordsDropped.WithLabelValues(string(schema)).Inc()
			continue
		}

		summary.Emitted++
		summary.Categories[commentary.Category]++
		p.metrics.RecordsEmitted.WithLabelValues(string(schema)).Inc()
		p.metrics.Categories.WithLabelValues(commentary.Category).Inc()

		if batching {
			pending = append(pending, commentary)
			if len(pending) >= p.batchSize {
				flush()
			}
			continue
		}

		if err := p.publisher.Publish(ctx, commentary); err != nil {
			summary.SinkErrors++
			log.Error("publish failed", zap.String("game_id", record.GameID), zap.Error(err))
		}
	}

	if batching {
		flush()
	}
}

// Preview synthesizes commentary for a single text without touching sinks.
// schema defaults to historical; teamCode only applies to the live schema.
func (p *Processor) Preview(ctx context.Context, text, schema, teamCode string) (*models.CommentaryRecord, error) {
	if schema == "" {
		schema = string(models.SchemaHistorical)
	}
	adapter, err := p.registry.Lookup(schema)
	if err != nil {
		return nil, err
	}

	row := models.RawRow{GameID: "preview", Schema: adapter.Schema()}
	switch adapter.Schema() {
	case models.SchemaLive:
		row.Fields = map[string]string{
			"clock":       "PT12:00.00",
			"period":      "1",
			"description": text,
			"teamTricode": teamCode,
		}
	default:
		row.Fields = map[string]string{
			"time_remaining": "12:00",
			"quarter":        "1",
			"home_event":     text,
		}
	}

	record, err := adapter.Normalize(row)
	if err != nil {
		return nil, err
	}

	commentary, ok := p.engine.Normalize(ctx, record)
	if !ok {
		return nil, fmt.Errorf("%w: empty text", contracts.ErrMalformedRow)
	}
	return commentary, nil
}

// Start consumes the live raw stream until ctx is cancelled
func (p *Processor) Start(ctx context.Context, streamKey string) error {
	if p.consumer == nil {
		return fmt.Errorf("no stream consumer configured")
	}
	adapter, ok := p.registry.Get(models.SchemaLive)
	if !ok {
		return fmt.Errorf("%w: live adapter not registered", registry.ErrUnknownSchema)
	}

	p.logger.Info("started processing stream", zap.String("stream", streamKey))

	messageCh, errorCh := p.consumer.ConsumeStream(ctx, streamKey)

	for {
		select {
		case <-ctx.Done():
			return nil

		case err, ok := <-errorCh:
			if !ok {
				errorCh = nil
				continue
			}
			p.logger.Warn("stream error", zap.Error(err))

		case msg, ok := <-messageCh:
			if !ok {
				return nil
			}

			if err := p.processMessage(ctx, adapter, msg); err != nil {
				p.logger.Warn("error processing message", zap.String("id", msg.ID), zap.Error(err))
				p.incrementErrorCount()
			} else {
				p.incrementProcessedCount()
			}

			if err := p.consumer.AckMessage(ctx, msg.StreamKey, msg.ID); err != nil {
				p.logger.Warn("error acknowledging message", zap.String("id", msg.ID), zap.Error(err))
			}
		}
	}
}

// processMessage processes a single live action
func (p *Processor) processMessage(ctx context.Context, adapter contracts.SourceAdapter, msg consumer.Message) error {
	schema := string(models.SchemaLive)
	p.metrics.RowsRead.WithLabelValues(schema).Inc()

	record, err := adapter.Normalize(msg.Action.RawRow())
	if err != nil {
		p.metrics.RowsMalformed.WithLabelValues(schema).Inc()
		return err
	}

	commentary, ok := p.engine.Normalize(ctx, record)
	if !ok {
		p.metrics.RecordsDropped.WithLabelValues(schema).Inc()
		return nil
	}
	p.metrics.RecordsEmitted.WithLabelValues(schema).Inc()
	p.metrics.Categories.WithLabelValues(commentary.Category).Inc()

	if err := p.publisher.Publish(ctx, commentary); err != nil {
		return fmt.Errorf("publish error: %w", err)
	}
	return nil
}

// incrementProcessedCount increments the processed message counter
func (p *Processor) incrementProcessedCount() {
	p.mu.Lock()
	p.processedCount++
	p.mu.Unlock()
}

// incrementErrorCount increments the error counter
func (p *Processor) incrementErrorCount() {
	p.mu.Lock()
	p.errorCount++
	p.mu.Unlock()
}

// GetMetrics returns current stream processing metrics
func (p *Processor) GetMetrics() (processed, errors int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.processedCount, p.errorCount
}

// SortLive orders live records by game id, period ascending and clock
// descending (time remaining counts down within a period). Stable.
func SortLive(records []*models.IntermediateRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.GameID != b.GameID {
			return a.GameID < b.GameID
		}
		if a.Period != b.Period {
			return a.Period < b.Period
		}
		return clockSeconds(a.TimeRemaining) > clockSeconds(b.TimeRemaining)
	})
}

// clockSeconds parses "PT11:45.00" or "11:45" into seconds. Unparseable
// clocks sort last within their period.
func clockSeconds(clock string) float64 {
	c := strings.TrimPrefix(strings.TrimSpace(clock), "PT")

	// ISO-8601 duration form: PT11M45.00S
	if strings.HasSuffix(c, "S") && strings.Contains(c, "M") {
		minutes, seconds, _ := strings.Cut(strings.TrimSuffix(c, "S"), "M")
		m, err1 := strconv.ParseFloat(minutes, 64)
		s, err2 := strconv.ParseFloat(seconds, 64)
		if err1 == nil && err2 == nil {
			return m*60 + s
		}
		return -1
	}

	minutes, seconds, found := strings.Cut(c, ":")
	if !found {
		s, err := strconv.ParseFloat(c, 64)
		if err != nil {
			return -1
		}
		return s
	}

	m, err1 := strconv.ParseFloat(minutes, 64)
	s, err2 := strconv.ParseFloat(seconds, 64)
	if err1 != nil || err2 != nil {
		return -1
	}
	return m*60 + s
}
