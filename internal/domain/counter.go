package domain

// OrderCounter is the singleton sequence document behind order ids.
// Date is yyyymmdd; Value resets to 1 when the stored date rolls over.
type OrderCounter struct {
	ID    string `json:"id" bson:"_id"`
	Type  string `json:"type" bson:"type"`
	Date  string `json:"date" bson:"date"`
	Value int64  `json:"value" bson:"value"`
	Rev   int64  `json:"-" bson:"rev"`
}

// ProcessedCallback is one entry in the webhook dedupe ledger, keyed by
// the gateway transaction id so a redelivered callback applies no side
// effects twice.
type ProcessedCallback struct {
	ID              string `json:"id" bson:"_id"`
	MerchantOrderID string `json:"merchantOrderId" bson:"merchantOrderId"`
	State           string `json:"state" bson:"state"`
	ReceivedOn      string `json:"receivedOn" bson:"receivedOn"`
}
