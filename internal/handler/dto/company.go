package dto

// SearchRequest represents the request body for running a company search.
type SearchRequest struct {
	Country  string `json:"country" validate:"required,min=2,max=100"`
	Keywords string `json:"keywords" validate:"required,min=2,max=200"`
	Limit    int    `json:"limit" validate:"omitempty,min=1,max=50"`
}

// BatchDeleteRequest represents the request body for batch deletion.
type BatchDeleteRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,dive,uuid4"`
}

// BatchDeleteResponse reports how many rows were removed.
type BatchDeleteResponse struct {
	Deleted int `json:"deleted"`
}
