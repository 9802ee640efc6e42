package main

import (
	"net/http"
	"os"
	"time"

	"github.com/digitally557/Decentralised-Health-Record-Tracker-DHRT/internal/adapters/auth/stacks"
	"github.com/digitally557/Decentralised-Health-Record-Tracker-DHRT/internal/adapters/contentstore/gaiahub"
	"github.com/digitally557/Decentralised-Health-Record-Tracker-DHRT/internal/platform/logger"
	"github.com/digitally557/Decentralised-Health-Record-Tracker-DHRT/internal/ports/auth"
	"github.com/digitally557/Decentralised-Health-Record-Tracker-DHRT/internal/ports/contentstore"
	"github.com/digitally557/Decentralised-Health-Record-Tracker-DHRT/internal/router"
)

// @title Decentralised Health Record Tracker API
// @version 1.0
// @description Registro de health records con permisos por grantee y camino de acceso de emergencia auditado.
// @BasePath /
func main() {
	log := logger.NewFromEnv()

	addr := ":8080"
	if v := os.Getenv("PORT"); v != "" {
		addr = ":" + v
	}

	// Verifier real solo si el servicio de identidad está configurado;
	// sin eso queda modo dev (X-Debug-Principal).
	var verifier auth.AuthVerifier
	if baseURL := os.Getenv("AUTH_BASE_URL"); baseURL != "" {
		client, err := stacks.NewClient(stacks.Config{
			BaseURL: baseURL,
			APIKey:  os.Getenv("AUTH_API_KEY"),
		})
		if err != nil {
			log.Error("invalid auth config", map[string]any{"err": err.Error()})
			os.Exit(1)
		}
		verifier = stacks.NewVerifier(client)
	}

	var resolver contentstore.Resolver
	if readURL := os.Getenv("GAIA_READ_URL"); readURL != "" {
		resolver = gaiahub.NewClient(gaiahub.Config{ReadURL: readURL})
	}

	r := router.NewRouter(router.Options{
		AuthVerifier:    verifier,
		ContractOwner:   os.Getenv("CONTRACT_OWNER"),
		ContentResolver: resolver,
		Logger:          log,
	})

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	log.Info("starting server", map[string]any{"addr": addr})
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", map[string]any{"err": err.Error()})
		os.Exit(1)
	}
}
