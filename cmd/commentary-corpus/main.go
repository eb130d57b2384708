package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/XavierBriggs/fortuna/services/commentary-corpus/internal/config"
	"github.com/XavierBriggs/fortuna/services/commentary-corpus/internal/consumer"
	"github.com/XavierBriggs/fortuna/services/commentary-corpus/internal/corpus"
	"github.com/XavierBriggs/fortuna/services/commentary-corpus/internal/logger"
	"github.com/XavierBriggs/fortuna/services/commentary-corpus/internal/metrics"
	"github.com/XavierBriggs/fortuna/services/commentary-corpus/internal/processor"
	"github.com/XavierBriggs/fortuna/services/commentary-corpus/internal/publisher"
	"github.com/XavierBriggs/fortuna/services/commentary-corpus/internal/registry"
	"github.com/XavierBriggs/fortuna/services/commentary-corpus/internal/server"
	"github.com/XavierBriggs/fortuna/services/commentary-corpus/internal/source"
	"github.com/XavierBriggs/fortuna/services/commentary-corpus/internal/storage"
	"github.com/XavierBriggs/fortuna/services/commentary-corpus/pkg/contracts"
	"github.com/XavierBriggs/fortuna/services/commentary-corpus/sports/basketball_nba"
)

// inputList collects repeated -in flags
type inputList []string

func (l *inputList) String() string { return strings.Join(*l, ",") }

func (l *inputList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

func main() {
	var (
		configPath = flag.String("config", "", "path to YAML config (empty = env only)")
		mode       = flag.String("mode", "build", "build | stream | serve | merge")
		schema     = flag.String("schema", "", "historical | live (empty = detect from header)")
		out        = flag.String("out", "", "output CSV path or s3://bucket/key")
		seed       = flag.Int64("seed", 0, "template choice seed")
		inputs     inputList
	)
	flag.Var(&inputs, "in", "input file or s3:// URI (repeatable)")
	flag.Parse()

	cfg, err := config.Load(*configPath, *configPath == "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Flags override the config file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "schema":
			cfg.Pipeline.Schema = *schema
		case "out":
			cfg.Pipeline.Output = *out
		case "seed":
			cfg.Pipeline.Seed = *seed
		}
	})
	if len(inputs) > 0 {
		cfg.Pipeline.Inputs = inputs
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, *mode, cfg, log); err != nil {
		log.Error("run failed", zap.String("mode", *mode), zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, mode string, cfg config.Config, log *zap.Logger) error {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	engine, err := newEngine(cfg)
	if err != nil {
		return err
	}

	adapters := registry.NewAdapterRegistry()
	for _, adapter := range []contracts.SourceAdapter{
		basketball_nba.NewHistoricalAdapter(),
		basketball_nba.NewLiveAdapter(),
	} {
		if err := adapters.Register(adapter); err != nil {
			return fmt.Errorf("register adapter: %w", err)
		}
	}
	log.Info("engine ready",
		zap.String("sport", engine.GetSportKey()),
		zap.Int("adapters", adapters.Count()),
		zap.Int64("seed", cfg.Pipeline.Seed),
	)

	s3Client, err := maybeS3(ctx, cfg)
	if err != nil {
		return err
	}
	var getter storage.ObjectGetter
	if s3Client != nil {
		getter = s3Client
	}
	delimiter, err := source.ParseDelimiter(cfg.Pipeline.Delimiter)
	if err != nil {
		return fmt.Errorf("pipeline.delimiter: %w", err)
	}
	loader := source.NewLoader(getter, log).WithDelimiter(delimiter)

	switch mode {
	case "build":
		return runBuild(ctx, cfg, log, m, adapters, engine, loader, s3Client)
	case "stream":
		return runStream(ctx, cfg, log, m, adapters, engine, loader, s3Client)
	case "serve":
		return runServe(ctx, cfg, log, reg, m, adapters, engine)
	case "merge":
		return runMerge(ctx, cfg, log, loader, s3Client)
	default:
		return fmt.Errorf("unknown mode %q", mode)
	}
}

func newEngine(cfg config.Config) (*basketball_nba.Normalizer, error) {
	opts := basketball_nba.Options{
		Rand: rand.New(rand.NewSource(cfg.Pipeline.Seed)),
	}
	if cfg.Templates.Path != "" {
		templates, err := basketball_nba.LoadTemplates(cfg.Templates.Path, basketball_nba.DefaultConfig())
		if err != nil {
			return nil, fmt.Errorf("load templates: %w", err)
		}
		opts.Templates = templates
	}
	return basketball_nba.NewNormalizerWithOptions(opts), nil
}

// maybeS3 builds an S3 client only when some location needs one
func maybeS3(ctx context.Context, cfg config.Config) (*s3.Client, error) {
	needed := storage.IsS3URI(cfg.Pipeline.Output)
	for _, in := range cfg.Pipeline.Inputs {
		needed = needed || storage.IsS3URI(in)
	}
	if !needed {
		return nil, nil
	}
	return storage.NewS3Client(ctx, cfg.S3)
}

func newRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return client, nil
}

// sinks assembles the CSV writer plus the optional stream and corpus sinks
func sinks(ctx context.Context, cfg config.Config, log *zap.Logger, m *metrics.Metrics, s3Client *s3.Client, redisClient *redis.Client) (*publisher.MultiPublisher, *publisher.CSVWriter, error) {
	var putter storage.ObjectPutter
	if s3Client != nil {
		putter = s3Client
	}
	csvWriter, err := publisher.NewCSVWriter(cfg.Pipeline.Output, putter, log)
	if err != nil {
		return nil, nil, err
	}

	named := []publisher.NamedPublisher{{Name: "csv", Publisher: csvWriter}}

	if redisClient != nil {
		streamPublisher := publisher.NewStreamPublisher(redisClient, cfg.Redis.OutputStream, cfg.Redis.MaxLen)
		named = append(named, publisher.NamedPublisher{Name: "redis", Publisher: streamPublisher})
		log.Info("publishing to stream", zap.String("stream", streamPublisher.StreamKey()))
	}

	if cfg.Corpus.Enabled {
		store, err := corpus.Open(ctx, cfg.Corpus, log)
		if err != nil {
			return nil, nil, err
		}
		named = append(named, publisher.NamedPublisher{Name: "corpus", Publisher: store})
	}

	onError := func(sink string, err error) {
		m.SinkErrors.WithLabelValues(sink).Inc()
		log.Warn("sink publish failed", zap.String("sink", sink), zap.Error(err))
	}
	return publisher.NewMultiPublisher(onError, named...), csvWriter, nil
}

func runBuild(ctx context.Context, cfg config.Config, log *zap.Logger, m *metrics.Metrics, adapters *registry.AdapterRegistry, engine contracts.CommentaryEngine, loader *source.Loader, s3Client *s3.Client) error {
	if len(cfg.Pipeline.Inputs) == 0 {
		return fmt.Errorf("no inputs: pass -in or set pipeline.inputs")
	}

	var redisClient *redis.Client
	if cfg.Pipeline.Publish {
		client, err := newRedis(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer client.Close()
		redisClient = client
	}

	pub, csvWriter, err := sinks(ctx, cfg, log, m, s3Client, redisClient)
	if err != nil {
		return err
	}

	proc := processor.NewProcessor(adapters, engine, pub, processor.Options{
		Loader:    loader,
		Metrics:   m,
		Logger:    log,
		SortLive:  cfg.Pipeline.SortLive,
		BatchSize: cfg.Pipeline.BatchSize,
	})

	summary, runErr := proc.Run(ctx, cfg.Pipeline.Inputs, cfg.Pipeline.Schema)
	if err := pub.Close(); err != nil {
		return fmt.Errorf("close sinks: %w", err)
	}
	if runErr != nil {
		return runErr
	}

	log.Info("corpus built",
		zap.String("run_id", summary.RunID),
		zap.String("output", cfg.Pipeline.Output),
		zap.Int("files", summary.Files),
		zap.Int("rows_read", summary.RowsRead),
		zap.Int("malformed", summary.Malformed),
		zap.Int("dropped", summary.Dropped),
		zap.Int("emitted", summary.Emitted),
		zap.Int("written", csvWriter.Count()),
		zap.Int("dual_descriptions", summary.DualDescriptions),
		zap.Int("sink_errors", summary.SinkErrors),
	)
	return nil
}

func runStream(ctx context.Context, cfg config.Config, log *zap.Logger, m *metrics.Metrics, adapters *registry.AdapterRegistry, engine contracts.CommentaryEngine, loader *source.Loader, s3Client *s3.Client) error {
	redisClient, err := newRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	var out *redis.Client
	if cfg.Pipeline.Publish {
		out = redisClient
	}
	pub, _, err := sinks(ctx, cfg, log, m, s3Client, out)
	if err != nil {
		return err
	}
	defer func() {
		if err := pub.Close(); err != nil {
			log.Warn("error closing sinks", zap.Error(err))
		}
	}()

	streamConsumer := consumer.NewStreamConsumer(redisClient, cfg.Redis.ConsumerID, cfg.Redis.GroupName, log).
		WithBatch(cfg.Redis.BatchSize, cfg.Redis.BlockTime)

	proc := processor.NewProcessor(adapters, engine, pub, processor.Options{
		Loader:   loader,
		Consumer: streamConsumer,
		Metrics:  m,
		Logger:   log,
	})

	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				processed, errors := proc.GetMetrics()
				log.Info("stream metrics", zap.Int64("processed", processed), zap.Int64("errors", errors))
			}
		}
	}()

	log.Info("consuming live stream",
		zap.String("stream", cfg.Redis.InputStream),
		zap.String("consumer_id", cfg.Redis.ConsumerID),
		zap.String("group", cfg.Redis.GroupName),
	)
	return proc.Start(ctx, cfg.Redis.InputStream)
}

func runServe(ctx context.Context, cfg config.Config, log *zap.Logger, reg *prometheus.Registry, m *metrics.Metrics, adapters *registry.AdapterRegistry, engine contracts.CommentaryEngine) error {
	// Preview never reaches a sink
	proc := processor.NewProcessor(adapters, engine, publisher.NewMultiPublisher(nil), processor.Options{
		Metrics: m,
		Logger:  log,
	})

	h := server.NewHandler(proc, cfg.App.Name, log)
	router := server.NewRouter(h, reg, cfg.Server.AllowedOrigins, log)
	return server.New(cfg.Server, router, log).Run(ctx)
}

func runMerge(ctx context.Context, cfg config.Config, log *zap.Logger, loader *source.Loader, s3Client *s3.Client) error {
	if len(cfg.Pipeline.Inputs) == 0 {
		return fmt.Errorf("no corpus files to merge")
	}

	tables := make([]*source.Table, 0, len(cfg.Pipeline.Inputs))
	for _, in := range cfg.Pipeline.Inputs {
		table, err := loader.Load(ctx, in)
		if err != nil {
			return err
		}
		tables = append(tables, table)
	}

	records, stats, err := corpus.Merge(tables...)
	if err != nil {
		return err
	}

	var putter storage.ObjectPutter
	if s3Client != nil {
		putter = s3Client
	}
	csvWriter, err := publisher.NewCSVWriter(cfg.Pipeline.Output, putter, log)
	if err != nil {
		return err
	}

	var store *corpus.Store
	if cfg.Corpus.Enabled {
		store, err = corpus.Open(ctx, cfg.Corpus, log)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	inserted := 0
	for i := range records {
		record := &records[i]
		if err := csvWriter.Publish(ctx, record); err != nil {
			return err
		}
		if store != nil {
			ok, err := store.Insert(ctx, record)
			if err != nil {
				return err
			}
			if ok {
				inserted++
			}
		}
	}

	if err := csvWriter.CloseContext(ctx); err != nil {
		return err
	}

	log.Info("corpus merged",
		zap.String("output", cfg.Pipeline.Output),
		zap.Int("files", len(tables)),
		zap.Int("read", stats.Read),
		zap.Int("dropped_empty", stats.DroppedEmpty),
		zap.Int("duplicates", stats.Duplicates),
		zap.Int("kept", stats.Kept),
		zap.Int("inserted", inserted),
	)
	return nil
}
