package qdrant

// REST payload types for the subset of the Qdrant HTTP API the store
// consumes: create-collection, upsert-points, search, collection info
// and delete-collection.

type vectorsConfig struct {
	Size     int    `json:"size"`
	Distance string `json:"distance"`
}

type createCollectionRequest struct {
	Vectors vectorsConfig `json:"vectors"`
}

type pointPayload struct {
	FilePath   string `json:"file_path"`
	LineNumber int    `json:"line_number"`
	UUID       string `json:"uuid"`
	Role       string `json:"role"`
	Snippet    string `json:"snippet"`
	Timestamp  string `json:"timestamp"`
	SessionID  string `json:"session_id"`
}

type point struct {
	ID      any          `json:"id"` // UUID string or unsigned integer
	Vector  []float32    `json:"vector"`
	Payload pointPayload `json:"payload"`
}

type upsertRequest struct {
	Points []point `json:"points"`
}

type searchRequest struct {
	Vector         []float32 `json:"vector"`
	Limit          int       `json:"limit"`
	WithPayload    bool      `json:"with_payload"`
	ScoreThreshold float32   `json:"score_threshold"`
}

type searchHit struct {
	Score   float32      `json:"score"`
	Payload pointPayload `json:"payload"`
}

type searchResponse struct {
	Result []searchHit `json:"result"`
}

type collectionInfo struct {
	Status      string `json:"status"`
	PointsCount int    `json:"points_count"`
}

type collectionInfoResponse struct {
	Result collectionInfo `json:"result"`
}
