package models

import (
	"time"
)

// GenerationHistory is one rendered artifact. Rows are append-only; DagID
// may repeat for the same source/target pair on the same day.
type GenerationHistory struct {
	ID           int64     `json:"id"`
	DagID        string    `json:"dag_id"`
	MappingID    int64     `json:"mapping_id"`
	RenderedText string    `json:"generated_code,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func (h *GenerationHistory) Prepare() {
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now().UTC()
	}
}
