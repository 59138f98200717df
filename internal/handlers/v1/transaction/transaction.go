package transaction

// Transaction is the API response model for a transaction record.
// It is used only for responses, not for request bodies.
type Transaction struct {
	ID               string `json:"id" doc:"Transaction UUID"`
	AccountID        string `json:"accountID" doc:"Account the record belongs to"`
	CounterpartyFrom string `json:"counterpartyFrom" doc:"Name of the account the funds left"`
	CounterpartyTo   string `json:"counterpartyTo" doc:"Name of the account the funds arrived at"`
	Amount           string `json:"amount" doc:"Signed decimal amount, negative for expense records"`
	Description      string `json:"description" doc:"Description recorded at transfer time"`
	Kind             string `json:"kind" enum:"expense,income" doc:"Record kind"`
	RecordedAt       string `json:"recordedAt" doc:"RFC3339 commit timestamp"`
	LinkID           string `json:"linkID" doc:"UUID linking the two legs of a transfer"`
}
