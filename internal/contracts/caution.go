package contracts

// CautionBlock is the standing disclaimer attached to every external
// response. It is a fixed constant, not generated per request.
type CautionBlock struct {
	Caution []string `json:"caution"`
}

// Caution returns the disclaimer payload.
func Caution() CautionBlock {
	return CautionBlock{
		Caution: []string{
			"This app provides market/news information and automated scoring for educational/demo purposes.",
			"It is NOT investment advice, NOT a buy/sell recommendation, and does not guarantee returns.",
			"News sentiment is computed automatically and can be wrong or incomplete.",
			"Always verify information from primary sources (exchange filings, company announcements) and do your own research.",
			"Markets involve risk. You may lose money.",
		},
	}
}
