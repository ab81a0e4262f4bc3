package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/lavanya/expenseshare/internal/auth"
	"github.com/lavanya/expenseshare/internal/middleware"
	"github.com/lavanya/expenseshare/internal/storage/sqlite"
	"github.com/lavanya/expenseshare/internal/web"
	"github.com/lavanya/expenseshare/pkg/logging"
)

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()
	logging.Setup()

	dbPath := getEnv("DB_PATH", "./data/expenseshare.db")
	port := getEnv("PORT", "8080")

	store, err := sqlite.New(dbPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", dbPath)

	mux := http.NewServeMux()
	web.NewExpenseResource(store).Register(mux)
	web.NewGroupResource(store).Register(mux)
	web.NewUserProfileResource(store).Register(mux)
	mux.Handle("GET /metrics", middleware.MetricsHandler())

	var handler http.Handler = mux

	// The API is open unless a JWT secret is configured.
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		ttl, err := time.ParseDuration(getEnv("TOKEN_TTL", "24h"))
		if err != nil {
			slog.Error("Invalid TOKEN_TTL", "error", err)
			os.Exit(1)
		}
		jwtManager := auth.NewJWTManager(secret, ttl)
		web.NewAuthResource(auth.NewPasswordAuthenticator(store), jwtManager).Register(mux)
		handler = middleware.RequireAuth(jwtManager)(handler)
		slog.Info("JWT authentication enabled", "token_ttl", ttl)
	} else {
		slog.Warn("JWT_SECRET not set, API is unauthenticated")
	}

	handler = middleware.RequestID(middleware.Logging(middleware.Metrics(middleware.CORS(handler))))

	// h2c keeps HTTP/2 available without TLS termination in front
	h2cHandler := h2c.NewHandler(handler, &http2.Server{})

	addr := ":" + port
	slog.Info("Server starting", "address", addr, "url", fmt.Sprintf("http://localhost%s", addr))
	if err := http.ListenAndServe(addr, h2cHandler); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
