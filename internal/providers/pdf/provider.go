package pdf

import (
	"context"
	"io"
)

// ReceiptData carries everything a purchase receipt renders. Amounts arrive
// preformatted so the renderer stays currency-agnostic.
type ReceiptData struct {
	ReceiptNumber string
	DatePaid      string
	BilledToName  string
	BilledToEmail string
	ItemTitle     string
	ItemType      string
	Amount        string
}

type Provider interface {
	GenerateReceipt(ctx context.Context, data ReceiptData) (io.Reader, error)
}
