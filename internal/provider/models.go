package provider

import "time"

// Institution is a bank or fintech reachable through the aggregator.
type Institution struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Country  string `json:"country"`
	ImageURL string `json:"imageUrl"`
}

// Account is the aggregator's view of a bank account inside an item.
type Account struct {
	ID           string      `json:"id"`
	ItemID       string      `json:"itemId"`
	Type         string      `json:"type"`    // BANK or CREDIT
	Subtype      string      `json:"subtype"` // CHECKING_ACCOUNT, SAVINGS_ACCOUNT, CREDIT_CARD, ...
	Name         string      `json:"name"`
	Balance      float64     `json:"balance"`
	CurrencyCode string      `json:"currencyCode"`
	CreditData   *CreditData `json:"creditData,omitempty"`
}

type CreditData struct {
	Level                string   `json:"level"`
	CreditLimit          *float64 `json:"creditLimit,omitempty"`
	AvailableCreditLimit *float64 `json:"availableCreditLimit,omitempty"`
}

// Transaction is a single provider-side transaction. Amount keeps the
// provider's sign convention: negative for debits, positive for credits.
type Transaction struct {
	ID                 string              `json:"id"`
	AccountID          string              `json:"accountId"`
	Description        string              `json:"description"`
	Amount             float64             `json:"amount"`
	Date               time.Time           `json:"date"`
	Status             string              `json:"status"` // POSTED or PENDING
	Category           string              `json:"category,omitempty"`
	PaymentData        *PaymentData        `json:"paymentData,omitempty"`
	CreditCardMetadata *CreditCardMetadata `json:"creditCardMetadata,omitempty"`
	Merchant           *Merchant           `json:"merchant,omitempty"`
}

type PaymentData struct {
	PaymentMethod   string        `json:"paymentMethod,omitempty"` // PIX, TED, BOLETO, ...
	ReferenceNumber string        `json:"referenceNumber,omitempty"`
	Payer           *PaymentParty `json:"payer,omitempty"`
	Receiver        *PaymentParty `json:"receiver,omitempty"`
}

type PaymentParty struct {
	Name string `json:"name,omitempty"`
}

type CreditCardMetadata struct {
	InstallmentNumber int `json:"installmentNumber,omitempty"`
	TotalInstallments int `json:"totalInstallments,omitempty"`
}

type Merchant struct {
	Name         string `json:"name,omitempty"`
	BusinessName string `json:"businessName,omitempty"`
}
