package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/greenhabit/middleware"
	"github.com/cppla/greenhabit/store"
	"github.com/cppla/greenhabit/utils"
)

// RewardController lists the current user's rewards.
type RewardController struct {
	store *store.Store
}

// NewRewardController creates a RewardController.
func NewRewardController(s *store.Store) *RewardController {
	return &RewardController{store: s}
}

type rewardItem struct {
	Text string    `json:"text"`
	Date time.Time `json:"date"`
}

// ListRewards returns rewards newest first.
func (r *RewardController) ListRewards(ctx *gin.Context) {
	userID, _ := middleware.UserID(ctx)
	rewards, err := r.store.ListRewards(ctx.Request.Context(), userID)
	if err != nil {
		utils.Logger.Error("list rewards failed", zap.Uint("user_id", userID), zap.Error(err))
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to load rewards")
		return
	}

	items := make([]rewardItem, 0, len(rewards))
	for _, rw := range rewards {
		items = append(items, rewardItem{Text: rw.Reward, Date: rw.CreatedAt})
	}
	utils.Success(ctx, gin.H{"rewards": items, "count": len(items)})
}
