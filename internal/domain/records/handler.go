package records

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/digitally557/Decentralised-Health-Record-Tracker-DHRT/internal/domain/permissions"
	"github.com/digitally557/Decentralised-Health-Record-Tracker-DHRT/internal/middleware"
	"github.com/digitally557/Decentralised-Health-Record-Tracker-DHRT/internal/ports/contentstore"

	"github.com/go-chi/chi/v5"
)

// Códigos de error estables del contrato (compatibilidad con clientes).
const (
	codeUnauthorized   = 101
	codeRecordNotFound = 102
)

// RegisterRoutes registra las rutas del registro de records.
// contentResolver puede ser nil: en ese caso /content responde 501.
func RegisterRoutes(r chi.Router, svc *Service, permsSvc *permissions.Service, contentResolver contentstore.Resolver) {
	r.Route("/records", func(rr chi.Router) {
		rr.Post("/", createRecordHandler(svc))
		rr.Get("/", listMyRecordsHandler(svc))

		// Metadata pública: sin check de acceso (decisión deliberada,
		// el puntero no sirve sin el storage externo).
		rr.Get("/{recordID}", getRecordHandler(svc))

		// El contenido sí pasa por el Permission Store.
		rr.Get("/{recordID}/content", getContentHandler(svc, permsSvc, contentResolver))
	})
}

type createRecordRequest struct {
	Title      string `json:"title"`
	RecordType string `json:"record_type"`
	Pointer    string `json:"pointer"`
}

type recordResponse struct {
	ID         uint64    `json:"id"`
	Owner      string    `json:"owner"`
	Title      string    `json:"title"`
	RecordType string    `json:"record_type"`
	Pointer    string    `json:"pointer"`
	CreatedAt  time.Time `json:"created_at"`
}

// createRecordHandler crea un record
// @Summary Crear record de salud
// @Tags records
// @Success 201 {object} recordResponse
// @Router /records [post]
func createRecordHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.Principal) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createRecordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		rec, err := svc.Create(r.Context(), claims.Principal, CreateInput{
			Title:      req.Title,
			RecordType: req.RecordType,
			Pointer:    req.Pointer,
		})
		if err != nil {
			switch err {
			case ErrInvalidInput:
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusCreated, toRecordResponse(rec))
	}
}

func listMyRecordsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.Principal) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.ListByOwner(r.Context(), claims.Principal)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]recordResponse, 0, len(items))
		for _, rec := range items {
			out = append(out, toRecordResponse(rec))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getRecordHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseRecordID(w, r)
		if !ok {
			return
		}

		rec, err := svc.GetByID(r.Context(), id)
		if err != nil {
			switch err {
			case ErrNotFound:
				writeErr(w, http.StatusNotFound, codeRecordNotFound, "record not found")
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, toRecordResponse(rec))
	}
}

// getContentHandler trae el payload cifrado desde el storage externo.
// Requiere can-access-record (owner o grantee con can_read).
func getContentHandler(svc *Service, permsSvc *permissions.Service, resolver contentstore.Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.Principal) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		id, ok := parseRecordID(w, r)
		if !ok {
			return
		}

		rec, err := svc.GetByID(r.Context(), id)
		if err != nil {
			switch err {
			case ErrNotFound:
				writeErr(w, http.StatusNotFound, codeRecordNotFound, "record not found")
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		allowed, err := permsSvc.CanAccess(r.Context(), id, claims.Principal)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if !allowed {
			writeErr(w, http.StatusForbidden, codeUnauthorized, "unauthorized")
			return
		}

		if resolver == nil {
			http.Error(w, "content store not configured", http.StatusNotImplemented)
			return
		}

		payload, contentType, err := resolver.Fetch(r.Context(), rec.Pointer)
		if err != nil {
			http.Error(w, "content store unavailable", http.StatusBadGateway)
			return
		}

		if contentType == "" {
			contentType = "application/octet-stream"
		}
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(payload)
	}
}

func toRecordResponse(rec Record) recordResponse {
	return recordResponse{
		ID:         rec.ID,
		Owner:      rec.Owner,
		Title:      rec.Title,
		RecordType: rec.RecordType,
		Pointer:    rec.Pointer,
		CreatedAt:  rec.CreatedAt,
	}
}

func parseRecordID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	raw := strings.TrimSpace(chi.URLParam(r, "recordID"))
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		http.Error(w, "invalid record id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// writeJSON/writeErr están duplicados intencionalmente en handlers de
// distintos módulos para evitar helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeErr(w http.ResponseWriter, status, code int, msg string) {
	writeJSON(w, status, map[string]errBody{"error": {Code: code, Message: msg}})
}
