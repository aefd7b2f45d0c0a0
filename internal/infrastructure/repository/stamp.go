package repository

import (
	"context"
	"encoding/json"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/veritabl/scorer/internal/domain"
	"github.com/veritabl/scorer/internal/infrastructure/database/models"
)

type StampRepository struct {
	db *gorm.DB
}

func NewStampRepository(db *gorm.DB) *StampRepository {
	return &StampRepository{db: db}
}

// Upsert writes a stamp and flags the owning passport dirty in the same
// transaction. Resubmitting an existing (hash, passport) pair overwrites the
// provider and credential in place, never a second row.
func (r *StampRepository) Upsert(ctx context.Context, passportID uint64, hash string, provider string, credential json.RawMessage) (domain.Stamp, error) {
	stamp := models.Stamp{
		PassportID: passportID,
		Hash:       hash,
		Provider:   provider,
		Credential: string(credential),
	}

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

		err = tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "hash"}, {Name: "passport_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"provider", "credential"}),
		}).Create(&stamp).Error
		if err != nil {
			return err
		}

		return tx.Model(&models.Passport{}).
			Where("id = ?", passportID).
			Update("requires_calculation", true).Error
	})
	if err != nil {
		return domain.Stamp{}, err
	}

	return toStamp(stamp), nil
}

// Remove deletes a stamp if present and flags the passport dirty either way.
// A removal that raced another writer still schedules a recompute rather
// than risking a stale score.
func (r *StampRepository) Remove(ctx context.Context, passportID uint64, hash string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Stamp{}, "passport_id = ? AND hash = ?", passportID, hash).Error; err != nil {
			return err
		}

		result := tx.Model(&models.Passport{}).
			Where("id = ?", passportID).
			Update("requires_calculation", true)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.NotFoundError{Resource: "passport"}
		}
		return nil
	})
}

func (r *StampRepository) List(ctx context.Context, passportID uint64) ([]domain.Stamp, error) {
	var stamps []models.Stamp
	err := r.db.WithContext(ctx).
		Where("passport_id = ?", passportID).
		Find(&stamps).Error
	if err != nil {
		return nil, err
	}

	result := make([]domain.Stamp, 0, len(stamps))
	for _, stamp := range stamps {
		result = append(result, toStamp(stamp))
	}
	return result, nil
}

func toStamp(stamp models.Stamp) domain.Stamp {
	return domain.Stamp{
		ID:         stamp.ID,
		PassportID: stamp.PassportID,
		Hash:       stamp.Hash,
		Provider:   stamp.Provider,
		Credential: json.RawMessage(stamp.Credential),
	}
}
