package store

import (
	"context"
	"fmt"

	"github.com/cppla/greenhabit/models"
)

// CreateReward appends a reward for the user.
func (s *Store) CreateReward(ctx context.Context, userID uint, text string) (*models.Reward, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	reward := models.Reward{UserID: userID, Reward: text}
	if err := s.db.WithContext(ctx).Create(&reward).Error; err != nil {
		return nil, fmt.Errorf("create reward: %w", err)
	}
	return &reward, nil
}

// ListRewards returns the user's rewards, most recent first.
func (s *Store) ListRewards(ctx context.Context, userID uint) ([]models.Reward, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rewards := []models.Reward{}
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&rewards).Error
	if err != nil {
		return nil, fmt.Errorf("list rewards: %w", err)
	}
	return rewards, nil
}
