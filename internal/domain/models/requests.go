package models

// Requests for the market HTTP endpoints. Defined in domain for consistency and reuse.

type QuoteRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required,min=1,max=20"`
	Client string `query:"client" json:"client" default:"anonymous"`
}

type HistoricalRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required,min=1,max=20"`
	Range  string `query:"range" json:"range" default:"1mo" validate:"oneof=1d 5d 1mo 3mo 6mo 1y"`
	Client string `query:"client" json:"client" default:"anonymous"`
}

type SentimentRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required,min=1,max=20"`
	Client string `query:"client" json:"client" default:"anonymous"`
}

type NewsRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required,min=1,max=20"`
	Limit  int    `query:"limit" json:"limit" default:"10" validate:"gte=1,lte=50"`
	Client string `query:"client" json:"client" default:"anonymous"`
}
