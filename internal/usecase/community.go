package usecase

import (
	"context"

	"github.com/veritabl/scorer/internal/domain"
)

type CommunityUsecase struct {
	communities CommunityRepository
}

func NewCommunityUsecase(communities CommunityRepository) *CommunityUsecase {
	return &CommunityUsecase{communities: communities}
}

func (uc *CommunityUsecase) Create(ctx context.Context, name string) (domain.Community, error) {
	return uc.communities.Create(ctx, name)
}

func (uc *CommunityUsecase) Get(ctx context.Context, id uint32) (domain.Community, error) {
	return uc.communities.Get(ctx, id)
}

// Delete tears down a community and everything registered in it. This is the
// cascading path that may remove passports together with their scores.
func (uc *CommunityUsecase) Delete(ctx context.Context, id uint32) error {
	return uc.communities.Delete(ctx, id)
}
