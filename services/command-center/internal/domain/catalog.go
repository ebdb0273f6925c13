package domain

import "github.com/shopspring/decimal"

// CatalogProduct is the slice of the product catalog used for substitution
type CatalogProduct struct {
	ProductCode   string          `json:"productCode"`
	ProductName   string          `json:"productName"`
	CategoryID    string          `json:"categoryId"`
	ProductFamily string          `json:"productFamily"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	Active        bool            `json:"active"`
}

// CoOccurrence counts how often two products were ordered together
type CoOccurrence struct {
	SourceProductCode string `json:"sourceProductCode"`
	ProductCode       string `json:"productCode"`
	Times             int64  `json:"times"`
}

// SubstitutionCandidate is one ranked alternative product
type SubstitutionCandidate struct {
	ProductCode  string          `json:"productCode"`
	ProductName  string          `json:"productName"`
	Score        float64         `json:"score"`
	AvailableQty decimal.Decimal `json:"availableQty"`
}

// SubstitutionSuggestion lists alternatives for one shortage line
type SubstitutionSuggestion struct {
	OrderID           string                  `json:"orderId"`
	OrderNumber       string                  `json:"mikroOrderNumber"`
	LineKey           string                  `json:"lineKey"`
	SourceProductCode string                  `json:"sourceProductCode"`
	ShortageQty       decimal.Decimal         `json:"shortageQty"`
	NeededQty         decimal.Decimal         `json:"neededQty"`
	Candidates        []SubstitutionCandidate `json:"candidates"`
}

// SubstitutionReport is the payload of the substitution section
type SubstitutionReport struct {
	Suggestions []SubstitutionSuggestion `json:"suggestions"`
}
