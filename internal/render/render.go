// Package render turns orders into printable artifacts: tracking QR
// codes and A6 shipping sticker PDFs.
package render

import (
	"bytes"
	"fmt"

	"shop-service/internal/models"
	"shop-service/internal/payment"
	"shop-service/internal/util"

	"github.com/jung-kurt/gofpdf"
	qrcode "github.com/skip2/go-qrcode"
)

// QRSize is the pixel edge of generated tracking QR images.
const QRSize = 256

// TrackingQR encodes a tracking code as a PNG image.
func TrackingQR(trackingCode string) ([]byte, error) {
	png, err := qrcode.Encode(trackingCode, qrcode.Medium, QRSize)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tracking QR: %w", err)
	}
	return png, nil
}

// Sticker renders an A6 shipping label for an order: tracking code,
// recipient billing snapshot, payment method, line-item count and an
// embedded tracking QR.
func Sticker(order *models.Order) ([]byte, error) {
	qrPNG, err := TrackingQR(order.TrackingCode)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "mm",
		Size:    gofpdf.SizeType{Wd: 105, Ht: 148}, // A6 portrait
	})
	pdf.SetMargins(8, 8, 8)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, order.TrackingCode, "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, order.UserEmail, "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 6, "Deliver to", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(0, 5, order.Address, "", "L", false)
	pdf.CellFormat(0, 5, order.City, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, order.Phone, "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 6,
		fmt.Sprintf("%s  |  %s  |  %d item(s)",
			order.PaymentMethod,
			payment.FormatAmount(order.TotalAmount),
			len(order.Items)),
		"", 1, "L", false, 0, "")

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("tracking-qr", opts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("tracking-qr", 32.5, pdf.GetY()+4, 40, 40, false, opts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render sticker: %w", err)
	}

	util.StickersRenderedTotal.Inc()
	return buf.Bytes(), nil
}
