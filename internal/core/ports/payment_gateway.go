package ports

import "context"

// ApprovedCode is the gateway response code that, alone, means a charge
// was approved.
const ApprovedCode = "2001"

// ChargeRequest is a single mobile wallet charge.
type ChargeRequest struct {
	AccountNo   string
	ReferenceID string
	InvoiceID   string
	Amount      float64
	Currency    string
	Description string
}

// ChargeReceipt is the gateway's answer to a charge.
type ChargeReceipt struct {
	Code          string
	Message       string
	ReferenceID   string
	TransactionID string
	State         string
}

// Approved reports whether the gateway approved the charge.
func (r *ChargeReceipt) Approved() bool {
	return r != nil && r.Code == ApprovedCode
}

// PaymentGateway charges a payer's mobile wallet. A transport failure is
// returned as an error; a declined charge is a receipt with a non-approved
// code.
type PaymentGateway interface {
	Charge(ctx context.Context, req ChargeRequest) (*ChargeReceipt, error)
}
