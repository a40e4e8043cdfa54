package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"league-backend/internal/auth"
	"league-backend/internal/email"
	"league-backend/internal/handlers"
	"league-backend/internal/league"
	"league-backend/internal/middleware"
	"league-backend/internal/store"
)

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	allowedOrigin := os.Getenv("CORS_ORIGIN")
	if allowedOrigin == "" {
		allowedOrigin = "http://localhost:5173"
	}

	ctx := context.Background()

	// Choose store backend via STORE_BACKEND env var.
	storeBackend := os.Getenv("STORE_BACKEND")
	var s store.Store
	switch storeBackend {
	case "file":
		dataDir := os.Getenv("DATA_DIR")
		if dataDir == "" {
			dataDir = "./data"
		}
		fs, err := store.NewFileStore(dataDir)
		if err != nil {
			log.Fatalf("Failed to initialize file store: %v", err)
		}
		s = fs
		log.Printf("Using file store (dir: %s)", dataDir)
	case "firestore":
		projectID := os.Getenv("GCP_PROJECT_ID")
		if projectID == "" {
			log.Fatal("GCP_PROJECT_ID is required for the firestore backend")
		}
		leagueID := os.Getenv("LEAGUE_ID")
		if leagueID == "" {
			log.Fatal("LEAGUE_ID is required for the firestore backend")
		}
		fs, err := store.NewFirestoreStore(ctx, projectID, os.Getenv("FIRESTORE_DATABASE"), leagueID)
		if err != nil {
			log.Fatalf("Failed to initialize firestore store: %v", err)
		}
		defer fs.Close()
		s = fs
		log.Printf("Using firestore store (project: %s, league: %s)", projectID, leagueID)
	default:
		s = store.NewMemoryStore()
		log.Println("Using in-memory store")
	}

	devMode := os.Getenv("DEV_MODE") == "true"

	secret := os.Getenv("TOKEN_SECRET")
	if secret == "" {
		if !devMode {
			log.Fatal("TOKEN_SECRET is required")
		}
		secret = "dev-secret"
	}

	// Parse commissioner emails from comma-separated env var
	commissioners := make(map[string]bool)
	var commissionerList []string
	if raw := os.Getenv("COMMISSIONER_EMAILS"); raw != "" {
		for _, e := range strings.Split(raw, ",") {
			e = strings.TrimSpace(strings.ToLower(e))
			if e != "" {
				commissioners[e] = true
				commissionerList = append(commissionerList, e)
			}
		}
		log.Printf("Configured %d commissioner email(s)", len(commissioners))
	}

	svc := league.NewService(s)

	// Seed a fresh league from a YAML file when requested. Refused if a
	// config already exists, so restarts with the var set are safe.
	if seedPath := os.Getenv("LEAGUE_SEED"); seedPath != "" {
		seed, err := league.LoadSeed(seedPath)
		if err != nil {
			log.Fatalf("Failed to load league seed: %v", err)
		}
		cfg, err := svc.ApplySeed(ctx, seed)
		if err != nil {
			log.Printf("League seed skipped: %v", err)
		} else {
			log.Printf("Seeded league %q: %d teams, %d scheduled weeks", cfg.LeagueName, len(cfg.Teams), len(cfg.Schedule))
		}
	}

	emailCfg := email.Config{
		Host: os.Getenv("SMTP_HOST"),
		Port: os.Getenv("SMTP_PORT"),
		User: os.Getenv("SMTP_USER"),
		Pass: os.Getenv("SMTP_PASS"),
		From: os.Getenv("SMTP_FROM"),
	}
	if emailCfg.IsConfigured() && len(commissionerList) > 0 {
		leagueName := "Golf League"
		if cfg, err := s.GetConfig(ctx); err == nil && cfg.LeagueName != "" {
			leagueName = cfg.LeagueName
		}
		svc = svc.WithNotifier(email.NewNotifier(emailCfg, leagueName, commissionerList))
		log.Printf("Email notifications enabled (%d recipient(s))", len(commissionerList))
	}

	accounts := auth.NewAccounts(s.(store.UserStore), secret)
	h := handlers.New(s, svc, accounts)

	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	// Build middleware chain: CORS -> Auth -> routes
	corsHandler := middleware.CORS(allowedOrigin)(mux)

	// Wrap with auth middleware, but skip auth for OPTIONS requests
	authMiddleware := auth.Middleware(devMode, commissioners, secret)
	authedHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Skip auth for preflight
		if r.Method == http.MethodOptions {
			corsHandler.ServeHTTP(w, r)
			return
		}
		authMiddleware(corsHandler).ServeHTTP(w, r)
	})

	// Apply CORS to the outer layer so preflight requests get CORS headers
	finalHandler := middleware.CORS(allowedOrigin)(authedHandler)

	if devMode {
		log.Println("DEV_MODE enabled - authentication disabled")
	}
	log.Printf("Server starting on :%s", port)
	fmt.Printf("Allowed CORS origin: %s\n", allowedOrigin)

	if err := http.ListenAndServe(":"+port, finalHandler); err != nil {
		log.Fatal(err)
	}
}
