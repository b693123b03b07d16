package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"horizon/backend/internal/audit"
	"horizon/backend/internal/audit/webhook"
	"horizon/backend/internal/config"
	"horizon/backend/internal/db"
	eventhandler "horizon/backend/internal/event/handler"
	eventrepo "horizon/backend/internal/event/repository"
	healthhandler "horizon/backend/internal/health/handler"
	identityhandler "horizon/backend/internal/identity/handler"
	identityservice "horizon/backend/internal/identity/service"
	"horizon/backend/internal/metrics"
	registrationhandler "horizon/backend/internal/registration/handler"
	registrationrepo "horizon/backend/internal/registration/repository"
	"horizon/backend/internal/security"
	"horizon/backend/internal/server"
	"horizon/backend/internal/server/middleware"
	sessionrepo "horizon/backend/internal/session/repository"
	userrepo "horizon/backend/internal/user/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	privateKey, err := security.ParsePrivateKey(cfg.JWTPrivateKey)
	if err != nil {
		log.Fatalf("jwt private key: %v", err)
	}
	publicKey, err := security.ParsePublicKey(cfg.JWTPublicKey)
	if err != nil {
		log.Fatalf("jwt public key: %v", err)
	}
	tokens := security.NewTokenProvider(privateKey, publicKey, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL())
	hasher := security.NewHasher(cfg.BcryptCost)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	store, err := db.Open(ctx, cfg.MongoURI, cfg.MongoDBName)
	cancel()
	if err != nil {
		log.Fatalf("mongo: %v", err)
	}
	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	err = store.EnsureIndexes(ctx)
	cancel()
	if err != nil {
		log.Fatalf("mongo indexes: %v", err)
	}

	m := metrics.New()

	var dispatcher *audit.Dispatcher
	if cfg.WebhookURL != "" {
		sink := webhook.New(cfg.WebhookURL)
		dispatcher = audit.NewDispatcher(sink, audit.Config{
			OnDrop: func(queue string) {
				m.AuditDroppedTotal.WithLabelValues(queue).Inc()
			},
		})
	} else {
		log.Println("WEBHOOK_URL not set; event delivery disabled")
	}
	recorder := audit.NewRecorder(dispatcher)

	users := userrepo.NewMongoRepository(store.Collection(db.UsersCollection))
	sessions := sessionrepo.NewMongoRepository(store.Collection(db.RefreshTokensCollection))
	events := eventrepo.NewMongoRepository(store.Collection(db.EventsCollection))
	registrations := registrationrepo.NewMongoRepository(store.Collection(db.RegistrationsCollection))

	authService := identityservice.NewAuthService(users, sessions, hasher, tokens, cfg.RefreshTTL())

	handlers := server.Handlers{
		Auth:          identityhandler.NewAuthHandler(authService, recorder, cfg.CookieSecure, cfg.RefreshTTL()),
		Events:        eventhandler.NewEventHandler(events),
		Registrations: registrationhandler.NewRegistrationHandler(registrations, events, users),
		Health:        healthhandler.New(store),
		Metrics:       m.Handler(),
	}
	guard := middleware.NewGuard(tokens)
	logging := middleware.Logging(recorder, m.RequestsTotal)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.NewRouter(handlers, guard, logging),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down HTTP server...")
	ctx, cancel = context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	dispatcher.Close()
	if err := store.Close(ctx); err != nil {
		log.Printf("mongo close: %v", err)
	}
	log.Println("HTTP server stopped")
}
