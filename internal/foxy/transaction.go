package foxy

import (
	"encoding/json"

	"github.com/tidwall/gjson"

	"foxy-webhooks/internal/cart"
	"foxy-webhooks/internal/model"
)

// Transaction is the payload of a transaction/created webhook. Only the
// fields the forwarding integrations need are decoded; everything else in
// the payload is ignored.
type Transaction struct {
	ID             model.FlexString `json:"id"`
	CustomerEmail  string           `json:"customer_email"`
	TotalItemPrice model.Number     `json:"total_item_price"`

	Embedded struct {
		Items      []cart.Item `json:"fx:items"`
		Shipments  []Shipment  `json:"fx:shipments"`
		Attributes []Attribute `json:"fx:attributes"`
	} `json:"_embedded"`
}

// Shipment is the destination block embedded in a transaction.
type Shipment struct {
	FirstName         string           `json:"first_name"`
	LastName          string           `json:"last_name"`
	Address1          string           `json:"address1"`
	Address2          string           `json:"address2"`
	City              string           `json:"city"`
	Country           string           `json:"country"`
	PostalCode        string           `json:"postal_code"`
	Phone             string           `json:"phone"`
	ShippingServiceID model.FlexString `json:"shipping_service_id"`
}

// Attribute is a name/value pair attached to a transaction.
type Attribute struct {
	Name  string           `json:"name"`
	Value model.FlexString `json:"value"`
}

// Attribute returns the value of the named transaction attribute.
func (t *Transaction) Attribute(name string) (string, bool) {
	for _, a := range t.Embedded.Attributes {
		if a.Name == name {
			return a.Value.String(), true
		}
	}
	return "", false
}

// ParseTransaction decodes a transaction/created payload.
func ParseTransaction(body []byte) (*Transaction, error) {
	var tx Transaction
	if err := json.Unmarshal(body, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

// TransactionID extracts just the transaction id from a raw payload.
func TransactionID(body []byte) string {
	return gjson.GetBytes(body, "id").String()
}
