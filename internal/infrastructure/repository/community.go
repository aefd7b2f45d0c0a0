package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/veritabl/scorer/internal/domain"
	"github.com/veritabl/scorer/internal/infrastructure/database/models"
)

type CommunityRepository struct {
	db *gorm.DB
}

func NewCommunityRepository(db *gorm.DB) *CommunityRepository {
	return &CommunityRepository{db: db}
}

func (r *CommunityRepository) Create(ctx context.Context, name string) (domain.Community, error) {
	community := models.Community{Name: name}
	if err := r.db.WithContext(ctx).Create(&community).Error; err != nil {
		return domain.Community{}, err
	}
	return domain.Community{ID: community.ID, Name: community.Name}, nil
}

func (r *CommunityRepository) Get(ctx context.Context, id uint32) (domain.Community, error) {
	var community models.Community
	err := r.db.WithContext(ctx).Take(&community, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Community{}, domain.NotFoundError{Resource: "community"}
		}
		return domain.Community{}, err
	}
	return domain.Community{ID: community.ID, Name: community.Name}, nil
}

// Delete removes a community and cascades through its passports, their
// stamps, and their scores. This is the only path that physically deletes
// passports in bulk.
func (r *CommunityRepository) Delete(ctx context.Context, id uint32) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var passportIDs []uint64
		err := tx.Model(&models.Passport{}).
			Where("community_id = ?", id).
			Pluck("id", &passportIDs).Error
		if err != nil {
			return err
		}

		if len(passportIDs) > 0 {
			if err := tx.Delete(&models.Score{}, "passport_id IN ?", passportIDs).Error; err != nil {
				return err
			}
			if err := tx.Delete(&models.Stamp{}, "passport_id IN ?", passportIDs).Error; err != nil {
				return err
			}
			if err := tx.Delete(&models.Passport{}, "community_id = ?", id).Error; err != nil {
				return err
			}
		}

		result := tx.Delete(&models.Community{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.NotFoundError{Resource: "community"}
		}
		return nil
	})
}
