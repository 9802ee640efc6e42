package router

import (
	"context"
	"database/sql"
	"net/http"
	"os"

	mem "github.com/digitally557/Decentralised-Health-Record-Tracker-DHRT/internal/adapters/storage/memory"
	pg "github.com/digitally557/Decentralised-Health-Record-Tracker-DHRT/internal/adapters/storage/postgres"
	"github.com/digitally557/Decentralised-Health-Record-Tracker-DHRT/internal/domain/emergency"
	"github.com/digitally557/Decentralised-Health-Record-Tracker-DHRT/internal/domain/permissions"
	"github.com/digitally557/Decentralised-Health-Record-Tracker-DHRT/internal/domain/records"
	"github.com/digitally557/Decentralised-Health-Record-Tracker-DHRT/internal/middleware"
	"github.com/digitally557/Decentralised-Health-Record-Tracker-DHRT/internal/platform/logger"
	"github.com/digitally557/Decentralised-Health-Record-Tracker-DHRT/internal/ports/auth"
	"github.com/digitally557/Decentralised-Health-Record-Tracker-DHRT/internal/ports/contentstore"

	_ "github.com/digitally557/Decentralised-Health-Record-Tracker-DHRT/docs"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// ContractOwner es el único principal que puede togglear el sistema
	// de emergencia. Si viene vacío se toma de CONTRACT_OWNER (env).
	ContractOwner string

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	// Opcional: storage externo de contenido. Si es nil, /content => 501.
	ContentResolver contentstore.Resolver

	// Opcional: logger; default NewFromEnv.
	Logger logger.Logger
}

func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	log := opts.Logger
	if log == nil {
		log = logger.NewFromEnv()
	}

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger(log))

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/swagger/*", httpSwagger.Handler())

	var (
		recordsRepo  records.Repository
		permsRepo    permissions.Repository
		contactsRepo emergency.ContactRepository
		logRepo      emergency.LogRepository
		settingsRepo emergency.SettingsRepository
	)

	// Si no te pasan DB explícita, intenta por env (para dev/handoff)
	db := opts.DB
	if db == nil {
		if dsn := os.Getenv("DB_DSN"); dsn != "" {
			opened, err := pg.Open(dsn)
			if err == nil {
				db = opened
			}
		}
	}

	if db != nil {
		recordsRepo = pg.NewRecordsRepo(db)
		permsRepo = pg.NewPermissionsRepo(db)
		contactsRepo = pg.NewEmergencyContactsRepo(db)
		logRepo = pg.NewEmergencyLogRepo(db)
		settingsRepo = pg.NewSettingsRepo(db)
	} else {
		recordsRepo = mem.NewRecordsRepo()
		permsRepo = mem.NewPermissionsRepo()
		contactsRepo = mem.NewEmergencyContactsRepo()
		logRepo = mem.NewEmergencyLogRepo()
		settingsRepo = mem.NewSettingsRepo()
	}

	contractOwner := opts.ContractOwner
	if contractOwner == "" {
		contractOwner = os.Getenv("CONTRACT_OWNER")
	}

	// Services por módulo
	recordsSvc := records.NewService(recordsRepo)
	permsSvc := permissions.NewService(permsRepo, recordsSvc)
	emergencySvc := emergency.NewService(contactsRepo, logRepo, settingsRepo, recordRefAdapter{recordsSvc}, contractOwner)

	// Rutas por módulo
	records.RegisterRoutes(r, recordsSvc, permsSvc, opts.ContentResolver)
	permissions.RegisterRoutes(r, permsSvc)
	emergency.RegisterRoutes(r, emergencySvc)

	return r
}

// recordRefAdapter adapta records.Service al lookup que pide emergency
// (los tipos Ref viven en paquetes distintos para no acoplarlos).
type recordRefAdapter struct {
	svc *records.Service
}

func (a recordRefAdapter) RefOf(ctx context.Context, recordID uint64) (emergency.RecordRef, error) {
	ref, err := a.svc.RefOf(ctx, recordID)
	if err != nil {
		return emergency.RecordRef{}, err
	}
	return emergency.RecordRef{Owner: ref.Owner, Pointer: ref.Pointer}, nil
}
