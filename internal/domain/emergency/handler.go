package emergency

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
	codeNotContractOwner = 100
	codeUnauthorized     = 101
	codeRecordNotFound   = 102
	codeDuplicateContact = 103
)

func RegisterRoutes(r chi.Router, svc *Service) {
	// Roster propio de contactos break-glass
	r.Route("/me/emergency-contacts", func(cr chi.Router) {
		cr.Post("/", addContactHandler(svc))
		cr.Get("/", listMyContactsHandler(svc))
		cr.Delete("/{contact}", removeContactHandler(svc))
	})

	// Lookups públicos por clave compuesta
	r.Get("/owners/{owner}/emergency-contacts/{contact}", getContactHandler(svc))
	r.Get("/owners/{owner}/emergency-contacts/{contact}/active", isContactHandler(svc))

	// Camino de emergencia + log de auditoría
	r.Post("/records/{recordID}/emergency-access", accessRecordHandler(svc))
	r.Get("/records/{recordID}/emergency-log", listLogHandler(svc))
	r.Get("/records/{recordID}/emergency-log/{contact}/{sequence}", getLogEntryHandler(svc))

	// Kill switch global (solo contract owner)
	r.Get("/admin/emergency-system", systemStateHandler(svc))
	r.Post("/admin/emergency-system/toggle", toggleHandler(svc))
}

type addContactRequest struct {
	Contact      string `json:"contact"`
	ContactType  string `json:"contact_type"`
	Relationship string `json:"relationship"`
	CanAccessAll bool   `json:"can_access_all"`
}

type contactResponse struct {
	Owner        string    `json:"owner"`
	Contact      string    `json:"contact"`
	ContactType  string    `json:"contact_type"`
	Relationship string    `json:"relationship"`
	CanAccessAll bool      `json:"can_access_all"`
	AddedAt      time.Time `json:"added_at"`
	IsActive     bool      `json:"is_active"`
}

type logEntryResponse struct {
	RecordID     uint64    `json:"record_id"`
	Contact      string    `json:"contact"`
	Sequence     uint64    `json:"sequence"`
	AccessID     string    `json:"access_id"`
	RecordOwner  string    `json:"record_owner"`
	AccessReason string    `json:"access_reason"`
	Timestamp    time.Time `json:"timestamp"`
	IsValid      bool      `json:"is_valid"`
}

type accessRequest struct {
	AccessReason string `json:"access_reason"`
}

type accessResponse struct {
	Pointer string           `json:"pointer"`
	Entry   logEntryResponse `json:"entry"`
}

// addContactHandler registra un contacto de emergencia
// @Summary Alta de contacto break-glass
// @Tags emergency
// @Success 201 {object} contactResponse
// @Router /me/emergency-contacts [post]
func addContactHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.Principal) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req addContactRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		c, err := svc.AddContact(r.Context(), claims.Principal, AddContactInput{
			Contact:      req.Contact,
			ContactType:  req.ContactType,
			Relationship: req.Relationship,
			CanAccessAll: req.CanAccessAll,
		})
		if err != nil {
			switch err {
			case ErrInvalidInput:
				http.Error(w, err.Error(), http.StatusBadRequest)
			case ErrDuplicateContact:
				writeErr(w, http.StatusConflict, codeDuplicateContact, "duplicate contact")
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusCreated, toContactResponse(c))
	}
}

func listMyContactsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.Principal) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.ListContacts(r.Context(), claims.Principal)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]contactResponse, 0, len(items))
		for _, c := range items {
			out = append(out, toContactResponse(c))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func removeContactHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.Principal) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		contact := strings.TrimSpace(chi.URLParam(r, "contact"))
		if err := svc.RemoveContact(r.Context(), claims.Principal, contact); err != nil {
			switch err {
			case ErrInvalidInput:
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		// Idempotente: siempre ok, exista o no la fila.
		writeJSON(w, http.StatusOK, map[string]bool{"removed": true})
	}
}

func getContactHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner := strings.TrimSpace(chi.URLParam(r, "owner"))
		contact := strings.TrimSpace(chi.URLParam(r, "contact"))

		c, err := svc.GetContact(r.Context(), owner, contact)
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, toContactResponse(c))
	}
}

func isContactHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner := strings.TrimSpace(chi.URLParam(r, "owner"))
		contact := strings.TrimSpace(chi.URLParam(r, "contact"))

		active, err := svc.IsContact(r.Context(), owner, contact)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"active": active})
	}
}

// accessRecordHandler ejecuta el camino break-glass
// @Summary Acceso de emergencia a un record
// @Tags emergency
// @Success 200 {object} accessResponse
// @Router /records/{recordID}/emergency-access [post]
func accessRecordHandler(svc *Service) http.HandlerFunc {
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

		var req accessRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		res, err := svc.AccessRecord(r.Context(), claims.Principal, recordID, req.AccessReason)
		if err != nil {
			switch err {
			case ErrInvalidInput:
				http.Error(w, err.Error(), http.StatusBadRequest)
			case ErrUnauthorized:
				writeErr(w, http.StatusForbidden, codeUnauthorized, "unauthorized")
			case ErrRecordNotFound:
				writeErr(w, http.StatusNotFound, codeRecordNotFound, "record not found")
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, accessResponse{
			Pointer: res.Pointer,
			Entry:   toLogEntryResponse(res.Entry),
		})
	}
}

func listLogHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recordID, ok := parseRecordID(w, r)
		if !ok {
			return
		}

		items, err := svc.ListLog(r.Context(), recordID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]logEntryResponse, 0, len(items))
		for _, e := range items {
			out = append(out, toLogEntryResponse(e))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getLogEntryHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recordID, ok := parseRecordID(w, r)
		if !ok {
			return
		}
		contact := strings.TrimSpace(chi.URLParam(r, "contact"))
		seq, err := strconv.ParseUint(strings.TrimSpace(chi.URLParam(r, "sequence")), 10, 64)
		if err != nil || seq == 0 {
			http.Error(w, "invalid sequence", http.StatusBadRequest)
			return
		}

		e, err := svc.GetLogEntry(r.Context(), recordID, contact, seq)
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, toLogEntryResponse(e))
	}
}

func systemStateHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		enabled, err := svc.Enabled(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"emergency_access_enabled": enabled})
	}
}

func toggleHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.Principal) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		enabled, err := svc.Toggle(r.Context(), claims.Principal)
		if err != nil {
			switch err {
			case ErrNotContractOwner:
				writeErr(w, http.StatusForbidden, codeNotContractOwner, "not contract owner")
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		// Devuelve el estado nuevo, como el contrato original.
		writeJSON(w, http.StatusOK, map[string]bool{"emergency_access_enabled": enabled})
	}
}

func toContactResponse(c Contact) contactResponse {
	return contactResponse{
		Owner:        c.Owner,
		Contact:      c.Contact,
		ContactType:  c.ContactType,
		Relationship: c.Relationship,
		CanAccessAll: c.CanAccessAll,
		AddedAt:      c.AddedAt,
		IsActive:     c.IsActive,
	}
}

func toLogEntryResponse(e LogEntry) logEntryResponse {
	return logEntryResponse{
		RecordID:     e.RecordID,
		Contact:      e.Contact,
		Sequence:     e.Sequence,
		AccessID:     e.AccessID,
		RecordOwner:  e.RecordOwner,
		AccessReason: e.AccessReason,
		Timestamp:    e.Timestamp,
		IsValid:      e.IsValid,
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
