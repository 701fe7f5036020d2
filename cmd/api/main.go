package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rcdinesh/kidcastdailyapp/internal/api"
	"github.com/rcdinesh/kidcastdailyapp/internal/config"
	"github.com/rcdinesh/kidcastdailyapp/internal/credentials"
	"github.com/rcdinesh/kidcastdailyapp/internal/models"
	"github.com/rcdinesh/kidcastdailyapp/internal/orchestrator"
	"github.com/rcdinesh/kidcastdailyapp/internal/services"
	"github.com/rcdinesh/kidcastdailyapp/internal/session"
)

func main() {
	log.Println("Starting Kidcast Daily API...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Script completion clients — one per configured key
	clients := make(map[models.ModelID]services.CompletionClient)
	if cfg.PerplexityKey != "" {
		clients[models.ModelSonar] = services.NewPerplexityService(cfg.PerplexityKey)
		log.Println("Script model enabled: sonar (Perplexity)")
	}
	if cfg.XAIKey != "" {
		clients[models.ModelGrok] = services.NewXAIService(cfg.XAIKey)
		log.Println("Script model enabled: grok-3-mini (xAI)")
	}
	if cfg.OpenAIKey != "" {
		clients[models.ModelGPT5] = services.NewOpenAIService(cfg.OpenAIKey)
		log.Println("Script model enabled: gpt-5 (OpenAI)")
	}
	scripts := services.NewScriptService(clients)

	// TTS adapters — Google for short scripts, Polly for long ones
	adapters := make(map[models.TTSProvider]services.TTSService)
	if cfg.HasGoogleTTS() {
		signer, err := credentials.NewSigner(cfg.GoogleTTSClientEmail, cfg.GoogleTTSPrivateKey)
		if err != nil {
			log.Fatalf("Failed to load Google TTS credentials: %v", err)
		}
		adapters[models.TTSProviderGoogle] = services.NewGoogleTTSService(signer)
		log.Println("TTS provider enabled: Google Cloud TTS")
	}
	if cfg.HasPolly() {
		pollySvc, err := services.NewPollyService(ctx, cfg.AWSRegion, cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey)
		if err != nil {
			log.Fatalf("Failed to initialize Amazon Polly: %v", err)
		}
		adapters[models.TTSProviderAmazon] = pollySvc
		log.Println("TTS provider enabled: Amazon Polly")
	}

	// Session store with idle eviction
	store := session.NewStore(func() *orchestrator.Orchestrator {
		return orchestrator.New(scripts, adapters)
	}, time.Duration(cfg.SessionTTLMinutes)*time.Minute)

	handler := api.NewHandler(store)
	router := api.NewRouter(handler, api.RouterConfig{
		BackendAPIKey:      cfg.BackendAPIKey,
		CorsAllowedOrigins: cfg.CorsAllowedOrigins,
	})

	if cfg.BackendAPIKey != "" {
		log.Println("API key authentication enabled")
	} else {
		log.Println("WARNING: No BACKEND_API_KEY set — API is unprotected (dev mode)")
	}

	server := &http.Server{
		Addr:    ":" + cfg.APIPort,
		Handler: router,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("API server listening on :%s", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		store.Sweep(ctx, time.Duration(cfg.SweepIntervalMinutes)*time.Minute)
		return nil
	})

	g.Go(func() error {
		// Block until interrupted, then drain the server
		<-ctx.Done()
		log.Println("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("Server error: %v", err)
	}

	log.Println("Server exited")
}
