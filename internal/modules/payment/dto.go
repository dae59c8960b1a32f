package payment

type PaymentInfo struct {
	AppointmentID int64  `json:"appointment_id"`
	AmountDue     int64  `json:"amount_due"`
	PaymentCode   string `json:"payment_code"`
	IsPaid        bool   `json:"is_paid"`
}

type VerifyResult struct {
	AppointmentID int64 `json:"appointment_id"`
	Paid          bool  `json:"paid"`
}
