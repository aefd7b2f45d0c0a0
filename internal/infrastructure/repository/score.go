package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/veritabl/scorer/internal/domain"
	"github.com/veritabl/scorer/internal/infrastructure/database/models"
)

type ScoreRepository struct {
	db *gorm.DB

	// A PROCESSING row older than this is treated as an abandoned claim and
	// may be reclaimed.
	staleClaimAfter time.Duration
}

func NewScoreRepository(db *gorm.DB, staleClaimAfter time.Duration) *ScoreRepository {
	return &ScoreRepository{db: db, staleClaimAfter: staleClaimAfter}
}

// Claim atomically takes ownership of a flagged passport's recalculation
// cycle: it consumes the requires_calculation flag and moves the score row to
// PROCESSING, wiping the previous outcome. Returns false without touching
// anything when the passport is not flagged, or when another cycle is still
// in flight. In the in-flight case the flag is left set, so a fresh cycle is
// claimed once the running one resolves.
//
// Each claim bumps the row's generation and returns it as a token. Finalize
// and Fail require the token, so a claim that was taken over as stale cannot
// resolve against its successor's row.
func (r *ScoreRepository) Claim(ctx context.Context, passportID uint64) (uint64, bool, error) {
	var claim uint64
	claimed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var passport models.Passport
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Take(&passport, "id = ?", passportID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NotFoundError{Resource: "passport"}
			}
			return err
		}

		if passport.RequiresCalculation == nil || !*passport.RequiresCalculation {
			return nil
		}

		var current models.Score
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Take(&current, "passport_id = ?", passportID).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err == nil && current.Status != nil && *current.Status == string(domain.ScoreStatusProcessing) {
			if r.staleClaimAfter <= 0 || time.Since(current.MDate) < r.staleClaimAfter {
				return nil
			}
		}

		err = tx.Model(&models.Passport{}).
			Where("id = ?", passportID).
			Update("requires_calculation", false).Error
		if err != nil {
			return err
		}

		nextGeneration := current.ClaimGeneration + 1
		processing := string(domain.ScoreStatusProcessing)
		score := models.Score{
			PassportID:      passportID,
			Status:          &processing,
			ClaimGeneration: nextGeneration,
		}
		err = tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "passport_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"status":           processing,
				"score":            nil,
				"error":            nil,
				"evidence":         nil,
				"providers":        nil,
				"claim_generation": nextGeneration,
				"m_date":           time.Now(),
			}),
		}).Create(&score).Error
		if err != nil {
			return err
		}

		claim = nextGeneration
		claimed = true
		return nil
	})
	return claim, claimed, err
}

// Finalize resolves a PROCESSING cycle as DONE. The status and generation
// guards keep the transition exactly-once: a stale result from a superseded
// claim matches neither and lands as ConflictError instead.
func (r *ScoreRepository) Finalize(ctx context.Context, passportID uint64, claim uint64, result domain.CalculationResult) error {
	now := time.Now()
	update := r.db.WithContext(ctx).Model(&models.Score{}).
		Where("passport_id = ? AND status = ? AND claim_generation = ?",
			passportID, string(domain.ScoreStatusProcessing), claim).
		Updates(map[string]any{
			"status":               string(domain.ScoreStatusDone),
			"score":                result.Score,
			"evidence":             string(result.Evidence),
			"providers":            pq.StringArray(result.Providers),
			"last_score_timestamp": now,
			"error":                nil,
		})
	if update.Error != nil {
		return update.Error
	}
	if update.RowsAffected == 0 {
		return domain.ConflictError{Resource: "score"}
	}
	return nil
}

// Fail resolves a PROCESSING cycle as ERROR, recording the reason on the row.
func (r *ScoreRepository) Fail(ctx context.Context, passportID uint64, claim uint64, reason string) error {
	update := r.db.WithContext(ctx).Model(&models.Score{}).
		Where("passport_id = ? AND status = ? AND claim_generation = ?",
			passportID, string(domain.ScoreStatusProcessing), claim).
		Updates(map[string]any{
			"status":    string(domain.ScoreStatusError),
			"score":     nil,
			"evidence":  nil,
			"providers": nil,
			"error":     reason,
		})
	if update.Error != nil {
		return update.Error
	}
	if update.RowsAffected == 0 {
		return domain.ConflictError{Resource: "score"}
	}
	return nil
}

func (r *ScoreRepository) GetByPassport(ctx context.Context, passportID uint64) (domain.Score, error) {
	var score models.Score
	err := r.db.WithContext(ctx).Take(&score, "passport_id = ?", passportID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Score{}, domain.NotFoundError{Resource: "score"}
		}
		return domain.Score{}, err
	}
	return toScore(score), nil
}

// Delete removes the score row, lifting the deletion protection on its
// passport.
func (r *ScoreRepository) Delete(ctx context.Context, passportID uint64) error {
	result := r.db.WithContext(ctx).Delete(&models.Score{}, "passport_id = ?", passportID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NotFoundError{Resource: "score"}
	}
	return nil
}

func toScore(score models.Score) domain.Score {
	var status *domain.ScoreStatus
	if score.Status != nil {
		value := domain.ScoreStatus(*score.Status)
		status = &value
	}
	var evidence json.RawMessage
	if score.Evidence != nil {
		evidence = json.RawMessage(*score.Evidence)
	}
	return domain.Score{
		PassportID:         score.PassportID,
		Score:              score.Score,
		LastScoreTimestamp: score.LastScoreTimestamp,
		Status:             status,
		Error:              score.Error,
		Evidence:           evidence,
		Providers:          score.Providers,
	}
}
