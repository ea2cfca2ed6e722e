package main

import (
	"context"
	"log"
	"net/http"

	"github.com/pitabwire/frame"
	"github.com/pitabwire/frame/config"
	"github.com/pitabwire/frame/workerpool"

	vbconfig "github.com/voicebridge/voicebridge/config"
	"github.com/voicebridge/voicebridge/internal/api"
	"github.com/voicebridge/voicebridge/internal/audio"
	"github.com/voicebridge/voicebridge/internal/history"
	"github.com/voicebridge/voicebridge/internal/httputil"
	"github.com/voicebridge/voicebridge/internal/remote"
	"github.com/voicebridge/voicebridge/internal/sequencer"
	"github.com/voicebridge/voicebridge/internal/usage"
	"github.com/voicebridge/voicebridge/pkg/events"
	"github.com/voicebridge/voicebridge/pkg/kv"
	"github.com/voicebridge/voicebridge/pkg/languages"
	"github.com/voicebridge/voicebridge/pkg/notify"
)

func main() {
	ctx := context.Background()

	cfg, err := config.LoadWithOIDC[vbconfig.ServiceConfig](ctx)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	eventRef := cfg.GetEventsQueueName()
	eventURL := cfg.GetEventsQueueURL()

	ctx, srv := frame.NewService(
		frame.WithConfig(&cfg),
		frame.WithName("voicebridge"),
		frame.WithDatastore(),
		frame.WithRegisterPublisher(eventRef, eventURL),
		frame.WithWorkerPoolOptions(
			workerpool.WithPoolCount(cfg.WorkerPoolCount),
			workerpool.WithSinglePoolCapacity(cfg.WorkerPoolCapacity),
		),
	)
	defer srv.Stop(ctx)

	pool, err := srv.WorkManager().GetPool()
	if err != nil {
		log.Fatalf("getting worker pool: %v", err)
	}

	// --- Durable key-value substrate ---
	kvRepo := kv.NewRepository(
		srv.DatastoreManager().GetPool(ctx, "__default__pool_name__"),
	)
	if err := kvRepo.Migrate(ctx); err != nil {
		log.Fatalf("migrating kv store: %v", err)
	}

	store := history.NewStore(ctx, kvRepo)
	limiter := usage.NewLimiter(ctx, kvRepo)

	pub := events.NewPublisher(srv.QueueManager(), "voicebridge", eventRef)

	// --- Notification feed fed from the event stream ---
	center := notify.NewCenter(cfg.NotifyMaxEntries)
	notifyCh := pub.Subscribe("notify-center", 256)
	if err := pool.Submit(ctx, func() { center.Run(notifyCh) }); err != nil {
		log.Fatalf("starting notification consumer: %v", err)
	}

	// --- Language catalog with hot reload ---
	catalog := languages.NewCatalog(cfg.LanguageDir)
	if err := catalog.LoadAll(); err != nil {
		log.Printf("warning: loading languages: %v", err)
	}
	_ = pool.Submit(ctx, func() {
		if err := catalog.WatchAndReload(ctx.Done()); err != nil {
			log.Printf("warning: language watcher stopped: %v", err)
		}
	})

	// --- Remote pipeline stages ---
	transcriber := remote.NewTranscriber(cfg.TranscriptionURL, cfg.GhanaNLPAPIKey)
	translator := remote.NewTranslator(cfg.TranslationURL, cfg.GhanaNLPAPIKey)

	// --- Audio materialization scratch space ---
	materializer, err := audio.NewMaterializer(cfg.AudioCacheDir)
	if err != nil {
		log.Fatalf("creating audio cache: %v", err)
	}
	defer materializer.ReleaseAll()

	seq := sequencer.New(store, limiter, transcriber, translator, catalog, pub)

	mux := http.NewServeMux()
	api.NewHandler(seq, store, limiter, catalog, center, materializer).RegisterRoutes(mux)

	srv.Init(ctx,
		frame.WithHTTPHandler(httputil.H2CHandler(httputil.LoggingMiddleware(mux))),
	)

	if err := srv.Run(ctx, ""); err != nil {
		log.Fatalf("service exited: %v", err)
	}
}
