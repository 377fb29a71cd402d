package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/rs/zerolog"

	"github.com/addisfuel/fuelwatch/config"
	"github.com/addisfuel/fuelwatch/handlers"
	"github.com/addisfuel/fuelwatch/middleware"
	"github.com/addisfuel/fuelwatch/routes"
)

var (
	Version   = "dev"
	BuildTime = ""
)

func main() {
	versionFlag := flag.Bool("version", false, "Print version info and exit")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("Version:   %s\n", Version)
		fmt.Printf("BuildTime: %s\n", BuildTime)
		os.Exit(0)
	}

	log := zerolog.New(os.Stdout).With().Timestamp().Str("service", "fuelwatch").Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	db, err := config.Connect(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}

	if err := config.Migrations(db); err != nil {
		log.Fatal().Err(err).Msg("could not run migrations")
	}

	tokens := middleware.NewTokenManager(cfg.JWTSecret)
	app := handlers.NewApp(db, log, tokens)

	handler := enableCORS(routes.Register(app, log))
	log.Info().Str("port", cfg.Port).Str("version", Version).Msg("server starting")
	if err := http.ListenAndServe(":"+cfg.Port, handler); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
