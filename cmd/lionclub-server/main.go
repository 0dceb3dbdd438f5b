package main

import (
	"flag"
	"log/slog"

	"lionclub-backend/internal/db"
	"lionclub-backend/lib/configutil"
	"lionclub-backend/lib/httputil"
	"lionclub-backend/lib/scrapers/portal"
	"lionclub-backend/lib/serviceutil"
	"lionclub-backend/lib/sqliteutil"
	"lionclub-backend/services/application"
	"lionclub-backend/services/attendance"
	"lionclub-backend/services/auth"
	"lionclub-backend/services/member"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Config struct {
	Port           int           `json:"port"`
	DatabasePath   string        `json:"database_path"`
	AllowedOrigins []string      `json:"allowed_origins"`
	Portal         portal.Config `json:"portal"`
}

func main() {
	verbose := flag.Bool("v", false, "enable verbose logging")
	flag.Parse()

	ctx := serviceutil.SignalContext()
	initTelemetry(ctx, *verbose)

	config, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}
	if config.Port == 0 {
		config.Port = 8311
	}

	slog.Info("opening database...", "path", config.DatabasePath)
	database, err := sqliteutil.OpenDB(db.Schema, config.DatabasePath)
	if err != nil {
		serviceutil.Fatal("failed to open database", err)
	}

	portalClient, err := portal.NewClient(config.Portal)
	if err != nil {
		serviceutil.Fatal("failed to build portal client", err)
	}

	authService := auth.NewService(database, portalClient)
	memberService := member.NewService(database)
	applicationService := application.NewService(database)
	attendanceService := attendance.NewService(database)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   config.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Mount("/auth", authService.Routes())

		r.Group(func(r chi.Router) {
			r.Use(httputil.RequireAuth(authService))
			r.Mount("/members", memberService.Routes())
			r.Mount("/applications", applicationService.Routes())
			r.Mount("/attendance", attendanceService.Routes())
		})
	})

	go serviceutil.StartHttpServer(config.Port, r)

	<-ctx.Done()
}
