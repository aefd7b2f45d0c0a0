package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// ScoreStatus is the lifecycle state of a score row. A recalculation cycle
// moves PROCESSING to exactly one of DONE or ERROR; a fresh trigger re-enters
// PROCESSING.
type ScoreStatus string

const (
	ScoreStatusProcessing ScoreStatus = "PROCESSING"
	ScoreStatusDone       ScoreStatus = "DONE"
	ScoreStatusError      ScoreStatus = "ERROR"
)

// Score is the computed trust value for a passport. There is exactly one row
// per passport; recalculation overwrites it in place. Status, Score and
// LastScoreTimestamp are nil before the first resolution.
type Score struct {
	PassportID         uint64              `json:"passport_id"`
	Score              decimal.NullDecimal `json:"score"`
	LastScoreTimestamp *time.Time          `json:"last_score_timestamp,omitempty"`
	Status             *ScoreStatus        `json:"status,omitempty"`
	Error              *string             `json:"error,omitempty"`
	Evidence           json.RawMessage     `json:"evidence,omitempty"`
	Providers          []string            `json:"providers,omitempty"`
}

// CalculationResult is what the score-computation collaborator hands back on
// success.
type CalculationResult struct {
	Score     decimal.Decimal
	Evidence  json.RawMessage
	Providers []string
}
