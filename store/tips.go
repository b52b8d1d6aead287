package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/cppla/greenhabit/models"
)

// DefaultTips is the catalog inserted into an empty tips table.
var DefaultTips = []string{
	"Turn off lights when leaving a room.",
	"Use a reusable bottle instead of single-use plastic.",
	"Take shorter showers to save water.",
	"Carry a cloth bag for shopping.",
	"Compost kitchen scraps if you can.",
	"Plant a native flower to help pollinators.",
	"Air dry clothes when possible to save energy.",
}

// SeedTips inserts tips in order if and only if the table is empty. It reports whether rows
// were inserted.
func (s *Store) SeedTips(ctx context.Context, tips []string) (bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	seeded := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Tip{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		// One row at a time so ids follow the seed order.
		for _, t := range tips {
			if err := tx.Create(&models.Tip{Tip: t}).Error; err != nil {
				return err
			}
		}
		seeded = len(tips) > 0
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("seed tips: %w", err)
	}
	return seeded, nil
}

// ListTips returns the catalog in insertion order.
func (s *Store) ListTips(ctx context.Context) ([]string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var tips []string
	if err := s.db.WithContext(ctx).Model(&models.Tip{}).Order("id").Pluck("tip", &tips).Error; err != nil {
		return nil, fmt.Errorf("list tips: %w", err)
	}
	return tips, nil
}
