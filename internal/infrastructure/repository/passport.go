package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/veritabl/scorer/internal/domain"
	"github.com/veritabl/scorer/internal/infrastructure/database/models"
)

type PassportRepository struct {
	db *gorm.DB
}

func NewPassportRepository(db *gorm.DB) *PassportRepository {
	return &PassportRepository{db: db}
}

// Upsert returns the passport for (address, community), creating it if
// missing. Concurrent creators for the same pair resolve through the unique
// index, never through a check-then-insert.
func (r *PassportRepository) Upsert(ctx context.Context, address string, communityID uint32) (domain.Passport, error) {
	passport := models.Passport{
		Address:     address,
		CommunityID: communityID,
	}

	// The self-assignment makes the conflicting row come back through
	// RETURNING, so the surviving row's ID is always populated.
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "address"}, {Name: "community_id"}},
		DoUpdates: clause.Assignments(map[string]any{"address": address}),
	}).Create(&passport).Error
	if err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return domain.Passport{}, domain.NotFoundError{Resource: "community"}
		}
		return domain.Passport{}, err
	}

	return toPassport(passport), nil
}

func (r *PassportRepository) Get(ctx context.Context, id uint64) (domain.Passport, error) {
	var passport models.Passport
	err := r.db.WithContext(ctx).Take(&passport, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Passport{}, domain.NotFoundError{Resource: "passport"}
		}
		return domain.Passport{}, err
	}
	return toPassport(passport), nil
}

func (r *PassportRepository) GetByAddress(ctx context.Context, address string, communityID uint32) (domain.Passport, error) {
	var passport models.Passport
	err := r.db.WithContext(ctx).
		Take(&passport, "address = ? AND community_id = ?", address, communityID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Passport{}, domain.NotFoundError{Resource: "passport"}
		}
		return domain.Passport{}, err
	}
	return toPassport(passport), nil
}

// MarkRequiresCalculation flags the passport dirty. Idempotent.
func (r *PassportRepository) MarkRequiresCalculation(ctx context.Context, id uint64) error {
	result := r.db.WithContext(ctx).Model(&models.Passport{}).
		Where("id = ?", id).
		Update("requires_calculation", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NotFoundError{Resource: "passport"}
	}
	return nil
}

// ListFlagged returns ids of passports awaiting recalculation, oldest
// flag-set first.
func (r *PassportRepository) ListFlagged(ctx context.Context, limit int) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).Model(&models.Passport{}).
		Where("requires_calculation = ?", true).
		Order("m_date asc").
		Limit(limit).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// Delete removes a passport and its stamps. A passport that still has a
// score row is protected and must have the score removed first.
func (r *PassportRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var scores int64
		if err := tx.Model(&models.Score{}).Where("passport_id = ?", id).Count(&scores).Error; err != nil {
			return err
		}
		if scores > 0 {
			return domain.ProtectedReferenceError{Resource: "passport", Referencer: "score"}
		}

		if err := tx.Delete(&models.Stamp{}, "passport_id = ?", id).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Passport{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.NotFoundError{Resource: "passport"}
		}
		return nil
	})
}

func toPassport(passport models.Passport) domain.Passport {
	return domain.Passport{
		ID:                  passport.ID,
		Address:             passport.Address,
		CommunityID:         passport.CommunityID,
		RequiresCalculation: passport.RequiresCalculation,
	}
}
