package foxy

import (
	"net/http"
	"strings"
	"testing"
)

const testKey = "test-encryption-key"

func validRequest(body string) *Request {
	payload := []byte(body)
	return &Request{
		Method:      http.MethodPost,
		ContentType: "application/json",
		Body:        payload,
		Event:       EventValidation,
		Signature:   Sign(payload, testKey),
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Request) *Request
		want   string
	}{
		{
			"valid request passes",
			func(r *Request) *Request { return r },
			"",
		},
		{
			"nil request",
			func(r *Request) *Request { return nil },
			"Request Event does not Exist",
		},
		{
			"empty body",
			func(r *Request) *Request { r.Body = nil; return r },
			"Empty request.",
		},
		{
			"wrong method",
			func(r *Request) *Request { r.Method = http.MethodGet; return r },
			"Method not allowed",
		},
		{
			"wrong content type",
			func(r *Request) *Request { r.ContentType = "text/plain"; return r },
			"Content type should be application/json",
		},
		{
			"bad signature",
			func(r *Request) *Request { r.Signature = "deadbeef"; return r },
			"Forbidden",
		},
		{
			"invalid JSON",
			func(r *Request) *Request {
				r.Body = []byte("{broken")
				r.Signature = Sign(r.Body, testKey)
				return r
			},
			"Payload is not valid JSON.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.mutate(validRequest(`{"id":1}`))
			if got := req.Validate(testKey, nil); got != tt.want {
				t.Errorf("Validate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateOrder(t *testing.T) {
	// A GET with an empty body must report the body problem, not the method.
	req := validRequest(`{}`)
	req.Method = http.MethodGet
	req.Body = nil
	if got := req.Validate(testKey, nil); got != "Empty request." {
		t.Errorf("Validate() = %q, want Empty request.", got)
	}
}

func TestValidateContentTypeWithCharset(t *testing.T) {
	req := validRequest(`{"id":1}`)
	req.ContentType = "application/json; charset=utf-8"
	if got := req.Validate(testKey, nil); got != "" {
		t.Errorf("Validate() = %q, want pass", got)
	}
}

func TestSignatureSkippedWithoutKey(t *testing.T) {
	req := validRequest(`{"id":1}`)
	req.Signature = "not even hex"
	if got := req.Validate("", nil); got != "" {
		t.Errorf("Validate() with no key = %q, want pass", got)
	}
}

func TestValidationEventWithoutSignaturePasses(t *testing.T) {
	req := validRequest(`{"id":1}`)
	req.Signature = ""
	if got := req.Validate(testKey, nil); got != "" {
		t.Errorf("unsigned validation/payment = %q, want pass", got)
	}

	// transaction/created must always be signed.
	req = validRequest(`{"id":1}`)
	req.Event = EventTransactionCreated
	req.Signature = ""
	if got := req.Validate(testKey, nil); got != "Forbidden" {
		t.Errorf("unsigned transaction/created = %q, want Forbidden", got)
	}
}

func TestValidSignature(t *testing.T) {
	payload := []byte(`{"total":"12.00"}`)
	sig := Sign(payload, testKey)

	if !ValidSignature(payload, sig, testKey) {
		t.Error("correct signature rejected")
	}
	// Uppercase hex must verify too: senders are inconsistent about casing.
	if !ValidSignature(payload, strings.ToUpper(sig), testKey) {
		t.Error("uppercase signature rejected")
	}
	if ValidSignature(payload, sig, "wrong-key") {
		t.Error("wrong key accepted")
	}
	if ValidSignature([]byte(`tampered`), sig, testKey) {
		t.Error("tampered payload accepted")
	}
}

func TestItems(t *testing.T) {
	body := []byte(`{
		"_embedded": {
			"fx:items": [
				{"name": "widget", "code": "W-1", "price": "5.00", "quantity": 2},
				{"name": "gadget", "code": 99, "price": 3, "quantity": "1"}
			]
		}
	}`)

	items := Items(body)
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}
	if items[0].Name != "widget" || items[0].Code.String() != "W-1" {
		t.Errorf("items[0] = %+v", items[0])
	}
	if items[1].Code.String() != "99" {
		t.Errorf("items[1].Code = %q, want 99", items[1].Code)
	}
	if qty, _ := items[1].Quantity.Float(); qty != 1 {
		t.Errorf("items[1].Quantity = %v, want 1", qty)
	}
}

func TestItemsMissing(t *testing.T) {
	if items := Items([]byte(`{"id":1}`)); items != nil {
		t.Errorf("Items without embedded list = %v, want nil", items)
	}
	if items := Items([]byte(`{"_embedded":{"fx:items":"nope"}}`)); items != nil {
		t.Errorf("Items with non-array = %v, want nil", items)
	}
}

func TestParseTransaction(t *testing.T) {
	body := []byte(`{
		"id": 12345,
		"customer_email": "buyer@example.com",
		"total_item_price": "25.00",
		"_embedded": {
			"fx:items": [{"name": "widget", "code": "W-1"}],
			"fx:shipments": [{"first_name": "Jo", "city": "Lisbon", "shipping_service_id": 7}],
			"fx:attributes": [{"name": "rate_id_7", "value": "est_abc"}]
		}
	}`)

	tx, err := ParseTransaction(body)
	if err != nil {
		t.Fatal(err)
	}
	if tx.ID.String() != "12345" {
		t.Errorf("ID = %q", tx.ID)
	}
	if tx.CustomerEmail != "buyer@example.com" {
		t.Errorf("CustomerEmail = %q", tx.CustomerEmail)
	}
	if total, _ := tx.TotalItemPrice.Float(); total != 25 {
		t.Errorf("TotalItemPrice = %v", total)
	}
	if len(tx.Embedded.Shipments) != 1 || tx.Embedded.Shipments[0].City != "Lisbon" {
		t.Errorf("Shipments = %+v", tx.Embedded.Shipments)
	}
	if value, ok := tx.Attribute("rate_id_7"); !ok || value != "est_abc" {
		t.Errorf("Attribute(rate_id_7) = %q, %v", value, ok)
	}
	if _, ok := tx.Attribute("rate_id_9"); ok {
		t.Error("Attribute(rate_id_9) should not be found")
	}

	if got := TransactionID(body); got != "12345" {
		t.Errorf("TransactionID = %q", got)
	}
}
