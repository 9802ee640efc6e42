package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/digitally557/Decentralised-Health-Record-Tracker-DHRT/internal/router"
)

func TestHTTP_EndToEnd_RecordsAndPermissions(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{
		AuthVerifier:  nil,
		ContractOwner: "deployer",
	}))
	defer ts.Close()

	owner := "owner-1"
	grantee := "grantee-1"

	// 1) Owner crea record; el primer id es 1
	recID := createRecord(t, ts.URL, owner, map[string]any{
		"title":       "Annual Checkup",
		"record_type": "general",
		"pointer":     "gaia://hub.gaia.blockstack.org/1234",
	})
	if recID != "1" {
		t.Fatalf("expected first record id 1, got %s", recID)
	}

	// 2) Metadata pública: cualquiera (incluso sin principal) la lee
	{
		st, body := doReq(t, ts.URL, "GET", "/records/"+recID, "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 public metadata, got %d body=%s", st, string(body))
		}
		var resp struct {
			Owner string `json:"owner"`
			Title string `json:"title"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.Owner != owner || resp.Title != "Annual Checkup" {
			t.Fatalf("unexpected metadata body=%s", string(body))
		}
	}

	// 3) Grant sobre record inexistente => 404 con code 102
	{
		st, body := doReq(t, ts.URL, "POST", "/records/999/permissions", owner, map[string]any{
			"grantee":  grantee,
			"can_read": true,
		})
		if st != http.StatusNotFound {
			t.Fatalf("expected 404 grant on missing record, got %d body=%s", st, string(body))
		}
		assertErrCode(t, body, 102)
	}

	// 4) Un no-owner no puede otorgar => 403 con code 101
	{
		st, body := doReq(t, ts.URL, "POST", "/records/"+recID+"/permissions", grantee, map[string]any{
			"grantee":  grantee,
			"can_read": true,
		})
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 grant by non-owner, got %d body=%s", st, string(body))
		}
		assertErrCode(t, body, 101)
	}

	// 5) Antes del grant, can-access es false
	if canAccess(t, ts.URL, recID, grantee) {
		t.Fatalf("expected allowed=false before grant")
	}

	// 6) Owner otorga lectura y el grantee queda visible
	{
		st, body := doReq(t, ts.URL, "POST", "/records/"+recID+"/permissions", owner, map[string]any{
			"grantee":  grantee,
			"can_read": true,
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 grant by owner, got %d body=%s", st, string(body))
		}
	}
	if !canAccess(t, ts.URL, recID, grantee) {
		t.Fatalf("expected allowed=true after grant")
	}

	// 7) El owner siempre accede, con o sin grant propio
	if !canAccess(t, ts.URL, recID, owner) {
		t.Fatalf("expected allowed=true for owner")
	}

	// 8) Re-grant pisa los flags: read pasa a false
	{
		st, body := doReq(t, ts.URL, "POST", "/records/"+recID+"/permissions", owner, map[string]any{
			"grantee":   grantee,
			"can_read":  false,
			"can_write": true,
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 re-grant, got %d body=%s", st, string(body))
		}
	}
	if canAccess(t, ts.URL, recID, grantee) {
		t.Fatalf("expected allowed=false after overwrite")
	}

	// 9) Listado de grants solo para el owner
	{
		st, _ := doReq(t, ts.URL, "GET", "/records/"+recID+"/permissions", grantee, nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 listing grants as non-owner, got %d", st)
		}
		st, body := doReq(t, ts.URL, "GET", "/records/"+recID+"/permissions", owner, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 listing grants as owner, got %d body=%s", st, string(body))
		}
	}
}

func TestHTTP_EndToEnd_EmergencyAccess(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{
		AuthVerifier:  nil,
		ContractOwner: "deployer",
	}))
	defer ts.Close()

	owner := "owner-1"
	contact := "contact-1"

	recID := createRecord(t, ts.URL, owner, map[string]any{
		"title":       "Blood Test",
		"record_type": "lab-results",
		"pointer":     "gaia://hub.gaia.blockstack.org/5678",
	})

	// 1) Alta de contacto con acceso total
	{
		st, body := doReq(t, ts.URL, "POST", "/me/emergency-contacts", owner, map[string]any{
			"contact":        contact,
			"contact_type":   "family",
			"relationship":   "sister",
			"can_access_all": true,
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 add contact, got %d body=%s", st, string(body))
		}
	}

	// 2) Alta duplicada => 409 con code 103
	{
		st, body := doReq(t, ts.URL, "POST", "/me/emergency-contacts", owner, map[string]any{
			"contact":      contact,
			"contact_type": "doctor",
			"relationship": "cardiologist",
		})
		if st != http.StatusConflict {
			t.Fatalf("expected 409 duplicate contact, got %d body=%s", st, string(body))
		}
		assertErrCode(t, body, 103)
	}

	// 3) is-emergency-contact responde true
	{
		st, body := doReq(t, ts.URL, "GET", "/owners/"+owner+"/emergency-contacts/"+contact+"/active", "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 is-contact, got %d body=%s", st, string(body))
		}
		var resp struct {
			Active bool `json:"active"`
		}
		_ = json.Unmarshal(body, &resp)
		if !resp.Active {
			t.Fatalf("expected active=true body=%s", string(body))
		}
	}

	// 4) Toggle por alguien que no es el contract owner => 403 con code 100
	{
		st, body := doReq(t, ts.URL, "POST", "/admin/emergency-system/toggle", owner, nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 toggle by non-owner, got %d body=%s", st, string(body))
		}
		assertErrCode(t, body, 100)
	}

	// 5) El deployer apaga el sistema; el contacto válido queda bloqueado
	if toggleSystem(t, ts.URL, "deployer") {
		t.Fatalf("expected disabled after first toggle")
	}
	{
		st, body := doReq(t, ts.URL, "POST", "/records/"+recID+"/emergency-access", contact, map[string]any{
			"access_reason": "er visit",
		})
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 emergency access while disabled, got %d body=%s", st, string(body))
		}
		assertErrCode(t, body, 101)
	}

	// 6) Lo vuelve a prender y el acceso pasa, devolviendo pointer + entry
	if !toggleSystem(t, ts.URL, "deployer") {
		t.Fatalf("expected enabled after second toggle")
	}
	{
		st, body := doReq(t, ts.URL, "POST", "/records/"+recID+"/emergency-access", contact, map[string]any{
			"access_reason": "er visit",
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 emergency access, got %d body=%s", st, string(body))
		}
		var resp struct {
			Pointer string `json:"pointer"`
			Entry   struct {
				Sequence    uint64 `json:"sequence"`
				RecordOwner string `json:"record_owner"`
				IsValid     bool   `json:"is_valid"`
			} `json:"entry"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.Pointer != "gaia://hub.gaia.blockstack.org/5678" {
			t.Fatalf("unexpected pointer body=%s", string(body))
		}
		if resp.Entry.Sequence != 1 || resp.Entry.RecordOwner != owner || !resp.Entry.IsValid {
			t.Fatalf("unexpected entry body=%s", string(body))
		}
	}

	// 7) La entrada queda consultable por clave compuesta
	{
		st, body := doReq(t, ts.URL, "GET", "/records/"+recID+"/emergency-log/"+contact+"/1", "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 log entry, got %d body=%s", st, string(body))
		}
		var resp struct {
			AccessReason string `json:"access_reason"`
			IsValid      bool   `json:"is_valid"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.AccessReason != "er visit" || !resp.IsValid {
			t.Fatalf("unexpected log entry body=%s", string(body))
		}
	}

	// 8) Emergency access sobre record inexistente => 404 con code 102
	{
		st, body := doReq(t, ts.URL, "POST", "/records/999/emergency-access", contact, map[string]any{
			"access_reason": "er visit",
		})
		if st != http.StatusNotFound {
			t.Fatalf("expected 404 on missing record, got %d body=%s", st, string(body))
		}
		assertErrCode(t, body, 102)
	}

	// 9) Baja del contacto: pierde el camino de emergencia al instante
	{
		st, body := doReq(t, ts.URL, "DELETE", "/me/emergency-contacts/"+contact, owner, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 remove contact, got %d body=%s", st, string(body))
		}
		st, body = doReq(t, ts.URL, "POST", "/records/"+recID+"/emergency-access", contact, map[string]any{
			"access_reason": "er visit",
		})
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 after remove, got %d body=%s", st, string(body))
		}
		assertErrCode(t, body, 101)
	}
}

func createRecord(t *testing.T, baseURL, principal string, payload map[string]any) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/records", principal, payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create record, got %d body=%s", st, string(body))
	}

	var resp struct {
		ID json.Number `json:"id"`
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	_ = dec.Decode(&resp)
	if resp.ID.String() == "" || resp.ID.String() == "0" {
		t.Fatalf("create record: missing id body=%s", string(body))
	}
	return resp.ID.String()
}

func canAccess(t *testing.T, baseURL, recID, principal string) bool {
	t.Helper()

	st, body := doReq(t, baseURL, "GET", "/records/"+recID+"/access/"+principal, "", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 can-access, got %d body=%s", st, string(body))
	}

	var resp struct {
		Allowed bool `json:"allowed"`
	}
	_ = json.Unmarshal(body, &resp)
	return resp.Allowed
}

func toggleSystem(t *testing.T, baseURL, principal string) bool {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/admin/emergency-system/toggle", principal, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 toggle, got %d body=%s", st, string(body))
	}

	var resp struct {
		Enabled bool `json:"emergency_access_enabled"`
	}
	_ = json.Unmarshal(body, &resp)
	return resp.Enabled
}

func assertErrCode(t *testing.T, body []byte, want int) {
	t.Helper()

	var resp struct {
		Error struct {
			Code int `json:"code"`
		} `json:"error"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.Error.Code != want {
		t.Fatalf("expected error code %d, got %d body=%s", want, resp.Error.Code, string(body))
	}
}

func doReq(t *testing.T, baseURL, method, path, debugPrincipal string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if debugPrincipal != "" {
		req.Header.Set("X-Debug-Principal", debugPrincipal)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}
