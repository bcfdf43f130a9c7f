package shiptheory

import (
	"encoding/json"
	"errors"
	"fmt"

	"foxy-webhooks/internal/foxy"
	"foxy-webhooks/internal/model"
)

// Shipment is the payload Shiptheory expects for a new shipment.
type Shipment struct {
	Products       []Product `json:"products"`
	Recipient      Recipient `json:"recipient"`
	Reference      string    `json:"reference"`
	Reference2     string    `json:"reference2"`
	ShipmentDetail Detail    `json:"shipment_detail"`
}

// Product is one line of a shipment.
type Product struct {
	Name   string       `json:"name"`
	SKU    string       `json:"sku"`
	Qty    model.Number `json:"qty"`
	Value  model.Number `json:"value"`
	Weight model.Number `json:"weight"`
	Width  model.Number `json:"width"`
	Height model.Number `json:"height"`
}

// Recipient is the shipment destination.
type Recipient struct {
	Firstname    string `json:"firstname"`
	Lastname     string `json:"lastname"`
	AddressLine1 string `json:"address_line_1"`
	AddressLine2 string `json:"address_line_2"`
	City         string `json:"city"`
	Country      string `json:"country"`
	Postcode     string `json:"postcode"`
	Telephone    string `json:"telephone"`
	Email        string `json:"email"`
}

// Detail carries parcel-level totals.
type Detail struct {
	Parcels int          `json:"parcels"`
	Value   model.Number `json:"value"`
	Weight  float64      `json:"weight"`
}

// ShipmentResponse is Shiptheory's reply to a shipment creation.
type ShipmentResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// UnmarshalJSON tolerates Shiptheory returning success as the string
// "true" rather than a boolean.
func (r *ShipmentResponse) UnmarshalJSON(data []byte) error {
	var raw struct {
		Success interface{} `json:"success"`
		Message string      `json:"message"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Message = raw.Message
	switch v := raw.Success.(type) {
	case bool:
		r.Success = v
	case string:
		r.Success = v == "true"
	}
	return nil
}

// FromTransaction builds a shipment from a transaction payload. All
// embedded items are assumed to belong to the first shipment; transactions
// with no shipment block cannot be forwarded.
func FromTransaction(tx *foxy.Transaction) (*Shipment, error) {
	if len(tx.Embedded.Shipments) == 0 {
		return nil, errors.New("transaction has no shipments")
	}
	dest := tx.Embedded.Shipments[0]

	products := make([]Product, 0, len(tx.Embedded.Items))
	var weight float64
	for i, item := range tx.Embedded.Items {
		sku := item.Code.String()
		if sku == "" {
			sku = fmt.Sprintf("%s-%d", tx.ID, i)
		}
		products = append(products, Product{
			Name:   item.Name,
			SKU:    sku,
			Qty:    item.Quantity,
			Value:  item.Price,
			Weight: item.Weight,
			Width:  item.Width,
			Height: item.Height,
		})
		if w, ok := item.Weight.Float(); ok {
			weight += w
		}
	}

	return &Shipment{
		Products: products,
		Recipient: Recipient{
			Firstname:    dest.FirstName,
			Lastname:     dest.LastName,
			AddressLine1: dest.Address1,
			AddressLine2: dest.Address2,
			City:         dest.City,
			Country:      dest.Country,
			Postcode:     dest.PostalCode,
			Telephone:    dest.Phone,
			Email:        tx.CustomerEmail,
		},
		Reference:  UniqueReference(tx.ID.String(), 0),
		Reference2: tx.ID.String(),
		ShipmentDetail: Detail{
			Parcels: 1,
			Value:   tx.TotalItemPrice,
			Weight:  weight,
		},
	}, nil
}

// UniqueReference builds the per-shipment reference: the transaction id
// suffixed by the shipment ordinal.
func UniqueReference(transactionID string, shipmentNumber int) string {
	return fmt.Sprintf("%sS%d", transactionID, shipmentNumber)
}
