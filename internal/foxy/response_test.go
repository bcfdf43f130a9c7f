package foxy

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewResponse(t *testing.T) {
	resp, err := NewResponse("", http.StatusOK)
	if err != nil {
		t.Fatal(err)
	}
	if !resp.Body.OK || resp.Body.Details != "" {
		t.Errorf("ok response = %+v", resp.Body)
	}

	resp, err = NewResponse("something broke", http.StatusInternalServerError)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Body.OK {
		t.Error("error response should have ok=false")
	}

	if _, err := NewResponse("  ", http.StatusServiceUnavailable); err == nil {
		t.Error("non-200 response with blank details should fail to construct")
	}
}

func TestAcceptReject(t *testing.T) {
	accept := Accept()
	if accept.StatusCode != http.StatusOK || !accept.Body.OK {
		t.Errorf("Accept() = %+v", accept)
	}

	reject := Reject("Prices do not match: widget")
	if reject.StatusCode != http.StatusOK {
		t.Errorf("Reject status = %d, want 200", reject.StatusCode)
	}
	if reject.Body.OK || reject.Body.Details == "" {
		t.Errorf("Reject body = %+v", reject.Body)
	}
}

func TestResponseWrite(t *testing.T) {
	w := httptest.NewRecorder()
	if err := Reject("no stock").Write(w); err != nil {
		t.Fatal(err)
	}

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var body Body
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.OK || body.Details != "no stock" {
		t.Errorf("body = %+v", body)
	}
}
