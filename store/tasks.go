package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/cppla/greenhabit/models"
)

// FindCompletion returns the user's completion row for date or ErrNotFound.
func (s *Store) FindCompletion(ctx context.Context, userID uint, date string) (*models.TaskCompletion, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var row models.TaskCompletion
	err := s.db.WithContext(ctx).Where("user_id = ? AND date = ?", userID, date).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find completion: %w", err)
	}
	return &row, nil
}

// CompleteTask records the completion for (userID, date) and its reward in one transaction.
// The unique (user_id, date) index decides the race: the loser gets ErrAlreadyCompleted and
// no reward row is written.
func (s *Store) CompleteTask(ctx context.Context, userID uint, date, rewardText string) (*models.Reward, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var reward models.Reward
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		completion := models.TaskCompletion{UserID: userID, Date: date, Done: true}
		if err := tx.Create(&completion).Error; err != nil {
			if isDuplicate(err) {
				return ErrAlreadyCompleted
			}
			return err
		}
		reward = models.Reward{UserID: userID, Reward: rewardText}
		return tx.Create(&reward).Error
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyCompleted) {
			return nil, err
		}
		return nil, fmt.Errorf("complete task: %w", err)
	}
	return &reward, nil
}

// CompletionDates returns the set of dates in [from, to] on which the user completed the task.
// Dates compare lexically because they are stored as YYYY-MM-DD.
func (s *Store) CompletionDates(ctx context.Context, userID uint, from, to string) (map[string]bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var dates []string
	err := s.db.WithContext(ctx).
		Model(&models.TaskCompletion{}).
		Where("user_id = ? AND date >= ? AND date <= ? AND done = ?", userID, from, to, true).
		Pluck("date", &dates).Error
	if err != nil {
		return nil, fmt.Errorf("list completion dates: %w", err)
	}

	set := make(map[string]bool, len(dates))
	for _, d := range dates {
		set[d] = true
	}
	return set, nil
}
