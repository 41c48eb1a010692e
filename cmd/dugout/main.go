package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/fortuna/dugout/internal/api/rest"
	"github.com/fortuna/dugout/internal/api/websocket"
	"github.com/fortuna/dugout/internal/cache"
	"github.com/fortuna/dugout/internal/ingest/hittrax"
	"github.com/fortuna/dugout/internal/publisher"
	"github.com/fortuna/dugout/internal/service"
	"github.com/fortuna/dugout/internal/store"
	"github.com/fortuna/dugout/internal/store/repository"
	"github.com/fortuna/dugout/internal/storyline"
)

const (
	serviceName    = "dugout"
	serviceVersion = "1.0.0"
)

func main() {
	log.Printf("Starting %s v%s - Baseball Stats Service", serviceName, serviceVersion)

	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	config := loadConfig()

	// Initialize the store. An empty DSN means the in-memory store,
	// which is enough for a single-process deployment and for demos.
	var st store.Store
	if config.DatabaseDSN != "" {
		pg, err := store.NewPostgresStore(config.DatabaseDSN)
		if err != nil {
			log.Fatalf("Failed to connect to Postgres: %v", err)
		}
		st = pg
		log.Println("✓ Connected to Postgres, migrations applied")
	} else {
		st = store.NewMemoryStore()
		log.Println("✓ Using in-memory store")
	}
	defer st.Close()

	// Redis is optional. With it we get a shared storyline cache and the
	// ingest event stream; without it storylines cache in process memory.
	var redisCache *cache.RedisCache
	var redisPublisher *publisher.RedisPublisher
	if config.RedisURL != "" {
		var err error
		maxRetries := 30
		retryDelay := 2 * time.Second

		log.Println("Connecting to Redis...")
		for i := 0; i < maxRetries; i++ {
			redisCache, err = cache.NewRedisCache(config.RedisURL)
			if err == nil {
				break
			}

			if i < maxRetries-1 {
				log.Printf("Redis connection attempt %d/%d failed: %v (retrying in %v)", i+1, maxRetries, err, retryDelay)
				time.Sleep(retryDelay)
			} else {
				log.Fatalf("Failed to connect to Redis after %d attempts: %v", maxRetries, err)
			}
		}
		defer redisCache.Close()

		redisPublisher = publisher.NewRedisPublisher(redisCache.Client())
		log.Println("✓ Connected to Redis")
	}

	// Repositories and services
	players := repository.NewPlayerRepository(st)
	games := repository.NewGameRepository(st)
	stats := repository.NewStatsRepository(st)
	statsService := service.NewStatsService(stats, games, players)

	// WebSocket server doubles as an ingest notifier
	wsServer := websocket.NewServer()

	var notifier hittrax.Notifier = wsServer
	if redisPublisher != nil {
		notifier = multiNotifier{wsServer, &streamNotifier{pub: redisPublisher}}
	}

	ingester := hittrax.NewIngester(games, players, stats, statsService, notifier)

	// Storyline service. Without an API key the endpoints stay up but
	// generation returns a configuration error.
	var generator storyline.TextGenerator
	if config.OpenAIAPIKey != "" {
		generator = storyline.NewOpenAIClient(config.OpenAIAPIKey, config.OpenAIModel)
		log.Println("✓ OpenAI recap generation enabled")
	} else {
		log.Println("⚠️  OPENAI_API_KEY not set, recap generation disabled")
	}

	var storylineCache storyline.Cache
	if redisCache != nil {
		storylineCache = storyline.NewRedisCache(redisCache)
	} else {
		storylineCache = storyline.NewMemoryCache()
	}
	storylines := storyline.NewService(st, storylineCache, generator)

	// Initialize REST API server
	restServer := rest.NewServer(config.RESTPort, st, ingester, storylines)
	go func() {
		log.Printf("Starting REST API server on port %s", config.RESTPort)
		if err := restServer.Start(); err != nil {
			log.Printf("REST server error: %v", err)
		}
	}()

	log.Printf("✓ REST API server listening on :%s", config.RESTPort)

	// Initialize WebSocket server
	go func() {
		log.Printf("Starting WebSocket server on port %s", config.WSPort)
		if err := wsServer.Start(config.WSPort); err != nil {
			log.Printf("WebSocket server error: %v", err)
		}
	}()

	log.Printf("✓ WebSocket server listening on :%s", config.WSPort)
	log.Printf("✓ %s v%s started successfully", serviceName, serviceVersion)
	log.Printf("  REST API: http://0.0.0.0:%s", config.RESTPort)
	log.Printf("  WebSocket: ws://0.0.0.0:%s", config.WSPort)

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Printf("Shutting down %s gracefully...", serviceName)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := restServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("REST API server shutdown error: %v", err)
	}
	if err := wsServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("WebSocket server shutdown error: %v", err)
	}

	log.Printf("%s stopped", serviceName)
}

// streamNotifier forwards ingest events onto the Redis streams. Every
// ingest also recomputes the slice's totals, so the recompute marker is
// published alongside. Publish failures are logged; the upload already
// succeeded.
type streamNotifier struct {
	pub *publisher.RedisPublisher
}

func (n *streamNotifier) NotifyGameIngested(ctx context.Context, event hittrax.GameIngestedEvent) {
	if err := n.pub.PublishGameIngested(ctx, event); err != nil {
		log.Printf("Failed to publish ingest event: %v", err)
	}
	if err := n.pub.PublishStatsRecomputed(ctx, event.League, event.Season); err != nil {
		log.Printf("Failed to publish recompute event: %v", err)
	}
}

type multiNotifier []hittrax.Notifier

func (m multiNotifier) NotifyGameIngested(ctx context.Context, event hittrax.GameIngestedEvent) {
	for _, n := range m {
		n.NotifyGameIngested(ctx, event)
	}
}

type Config struct {
	DatabaseDSN  string
	RedisURL     string
	RESTPort     string
	WSPort       string
	OpenAIAPIKey string
	OpenAIModel  string
	LogLevel     string
}

func loadConfig() Config {
	return Config{
		DatabaseDSN:  getEnv("DATABASE_DSN", ""),
		RedisURL:     getEnv("REDIS_URL", ""),
		RESTPort:     getEnv("REST_PORT", "8080"),
		WSPort:       getEnv("WS_PORT", "8081"),
		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:  getEnv("OPENAI_MODEL", ""),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
