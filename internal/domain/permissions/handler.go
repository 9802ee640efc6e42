package permissions

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/digitally557/Decentralised-Health-Record-Tracker-DHRT/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// Códigos de error estables del contrato (compatibilidad con clientes).
const (
	codeUnauthorized   = 101
	codeRecordNotFound = 102
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/records/{recordID}/permissions", func(pr chi.Router) {
		// Solo el owner otorga / lista
		pr.Post("/", grantHandler(svc))
		pr.Get("/", listByRecordHandler(svc))
	})

	// can-access-record: consulta pública, nunca falla.
	r.Get("/records/{recordID}/access/{principal}", canAccessHandler(svc))
}

type grantRequest struct {
	Grantee  string `json:"grantee"`
	CanRead  bool   `json:"can_read"`
	CanWrite bool   `json:"can_write"`
}

type permissionResponse struct {
	RecordID  uint64    `json:"record_id"`
	Grantee   string    `json:"grantee"`
	CanRead   bool      `json:"can_read"`
	CanWrite  bool      `json:"can_write"`
	GrantedAt time.Time `json:"granted_at"`
}

// grantHandler otorga acceso sobre un record
// @Summary Otorgar acceso (solo owner)
// @Tags permissions
// @Success 200 {object} permissionResponse
// @Router /records/{recordID}/permissions [post]
func grantHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.Principal) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		recordID, ok := parseRecordID(w, r)
		if !ok {
			return
		}

		var req grantRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		p, err := svc.Grant(r.Context(), claims.Principal, GrantInput{
			RecordID: recordID,
			Grantee:  strings.TrimSpace(req.Grantee),
			CanRead:  req.CanRead,
			CanWrite: req.CanWrite,
		})
		if err != nil {
			switch err {
			case ErrInvalidInput:
				http.Error(w, err.Error(), http.StatusBadRequest)
			case ErrRecordNotFound:
				writeErr(w, http.StatusNotFound, codeRecordNotFound, "record not found")
			case ErrUnauthorized:
				writeErr(w, http.StatusForbidden, codeUnauthorized, "unauthorized")
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, toPermissionResponse(p))
	}
}

func listByRecordHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.Principal) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		recordID, ok := parseRecordID(w, r)
		if !ok {
			return
		}

		items, err := svc.ListByRecord(r.Context(), claims.Principal, recordID)
		if err != nil {
			switch err {
			case ErrInvalidInput:
				http.Error(w, err.Error(), http.StatusBadRequest)
			case ErrRecordNotFound:
				writeErr(w, http.StatusNotFound, codeRecordNotFound, "record not found")
			case ErrUnauthorized:
				writeErr(w, http.StatusForbidden, codeUnauthorized, "unauthorized")
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		out := make([]permissionResponse, 0, len(items))
		for _, p := range items {
			out = append(out, toPermissionResponse(p))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func canAccessHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recordID, ok := parseRecordID(w, r)
		if !ok {
			return
		}
		principal := strings.TrimSpace(chi.URLParam(r, "principal"))

		allowed, err := svc.CanAccess(r.Context(), recordID, principal)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, map[string]bool{"allowed": allowed})
	}
}

func toPermissionResponse(p Permission) permissionResponse {
	return permissionResponse{
		RecordID:  p.RecordID,
		Grantee:   p.Grantee,
		CanRead:   p.CanRead,
		CanWrite:  p.CanWrite,
		GrantedAt: p.GrantedAt,
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

// writeJSON/writeErr duplicados a propósito por módulo (ver nota en records).
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
