package render

import (
	"bytes"
	"testing"

	"shop-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackingQR(t *testing.T) {
	png, err := TrackingQR("ORD-A1B2C3")
	require.NoError(t, err)

	// PNG magic bytes
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
}

func TestSticker(t *testing.T) {
	order := &models.Order{
		ID:            "3f1c9a2e-0d4b-4f6a-9c8e-5b7d2a1e4c6f",
		TrackingCode:  "ORD-1E4C6F",
		UserEmail:     "buyer@example.com",
		TotalAmount:   2000,
		PaymentMethod: models.PaymentMethodCOD,
		Status:        models.OrderStatusPending,
		Address:       "12 Galle Road",
		City:          "Colombo",
		Phone:         "0771234567",
		Items: []models.OrderItem{
			{ProductName: "Blue T-Shirt", Quantity: 2, UnitPrice: 1000},
		},
	}

	pdf, err := Sticker(order)
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
	assert.Greater(t, len(pdf), 1000)
}
