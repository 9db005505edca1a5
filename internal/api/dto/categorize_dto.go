package dto

import "github.com/spec-kit/ticket-dataset/internal/categorize"

// CategorizeRequest carries either a free text or a summary and a
// description, joined the way the pipeline joins them.
type CategorizeRequest struct {
	Text        string `json:"text"`
	Summary     string `json:"resumen"`
	Description string `json:"descripcion"`
}

// CategorizeResponse explains a categorization.
type CategorizeResponse struct {
	Category  string             `json:"category"`
	Scores    map[string]float64 `json:"scores"`
	RawScores map[string]float64 `json:"raw_scores"`
	AddHits   int                `json:"add_hits"`
	NegHits   int                `json:"neg_hits"`
	Adjusted  bool               `json:"adjusted_by_rules"`
}

// NewCategorizeResponse renders a result.
func NewCategorizeResponse(res categorize.Result) CategorizeResponse {
	return CategorizeResponse{
		Category:  res.Category.String(),
		Scores:    res.Scores.Map(),
		RawScores: res.Raw.Map(),
		AddHits:   res.AddHits,
		NegHits:   res.NegHits,
		Adjusted:  res.Adjusted,
	}
}
