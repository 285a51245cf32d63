package models

// MetaData identifies the origin of a proof record
type MetaData struct {
	SourceID string `json:"source_id"`
	DlpID    int    `json:"dlp_id"`
}

// ProofAttributes carries audit context alongside the scores
type ProofAttributes struct {
	Score           float64 `json:"score"`
	DidScoreContent bool    `json:"did_score_content"`
	Source          string  `json:"source"`
	Revision        string  `json:"revision"`
	SubmittedOn     string  `json:"submitted_on"` // ISO-8601 UTC
}

// ProofResponse is the proof record handed to downstream consensus logic.
// All score dimensions are in [0,1].
type ProofResponse struct {
	DlpID        int             `json:"dlp_id"`
	Ownership    float64         `json:"ownership"`
	Authenticity float64         `json:"authenticity"`
	Uniqueness   float64         `json:"uniqueness"`
	Quality      float64         `json:"quality"`
	Score        float64         `json:"score"`
	Valid        bool            `json:"valid"`
	Attributes   ProofAttributes `json:"attributes"`
	Metadata     MetaData        `json:"metadata"`
}
