package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/greenhabit/middleware"
	"github.com/cppla/greenhabit/store"
	"github.com/cppla/greenhabit/utils"
)

// DailyTasks rotate by day of month.
var DailyTasks = []string{
	"Plant a seed or small plant 🌱",
	"Refill a reusable bottle instead of buying plastic",
	"Collect and compost kitchen scraps for 15 minutes",
	"Pick up 5 pieces of litter in your neighborhood",
	"Avoid single-use plastics for the whole day",
	"Use public transport or walk for one trip today",
}

const (
	defaultStreakDays = 14
	maxStreakDays     = 366
)

// RewardText is the reward granted for completing the task on date.
func RewardText(date string) string {
	return fmt.Sprintf("Eco Star — completed task on %s", date)
}

// TaskController serves the daily task, task claims and the streak chart.
type TaskController struct {
	store *store.Store
	now   utils.Clock
	loc   *time.Location
}

// NewTaskController creates a TaskController. A nil clock means time.Now.
func NewTaskController(s *store.Store, now utils.Clock, loc *time.Location) *TaskController {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	return &TaskController{store: s, now: now, loc: loc}
}

// GetTask returns today's task.
func (t *TaskController) GetTask(ctx *gin.Context) {
	idx := utils.DayIndex(t.now(), t.loc, len(DailyTasks))
	utils.Success(ctx, gin.H{"task": DailyTasks[idx]})
}

// CompleteTask claims today's task for the current user. A repeat claim is not an error.
func (t *TaskController) CompleteTask(ctx *gin.Context) {
	userID, _ := middleware.UserID(ctx)
	date := utils.DateKey(t.now(), t.loc)
	text := RewardText(date)

	_, err := t.store.CompleteTask(ctx.Request.Context(), userID, date, text)
	switch {
	case errors.Is(err, store.ErrAlreadyCompleted):
		utils.Success(ctx, gin.H{
			"success":          true,
			"alreadyCompleted": true,
			"message":          "Already completed today",
		})
	case err != nil:
		utils.Logger.Error("complete task failed",
			zap.Uint("user_id", userID),
			zap.String("date", date),
			zap.Error(err),
		)
		utils.Error(ctx, http.StatusInternalServerError, 50010, "failed to complete task")
	default:
		utils.Logger.Info("task completed", zap.Uint("user_id", userID), zap.String("date", date))
		utils.Success(ctx, gin.H{"success": true, "reward": text})
	}
}

// Streak returns one 0/1 value per day for the last N days, oldest first.
func (t *TaskController) Streak(ctx *gin.Context) {
	days := defaultStreakDays
	var err error
	if raw := ctx.Query("days"); raw != "" {
		days, err = strconv.Atoi(raw)
	}
	if err != nil || days < 1 || days > maxStreakDays {
		utils.Error(ctx, http.StatusBadRequest, 40010,
			fmt.Sprintf("days must be an integer between 1 and %d", maxStreakDays))
		return
	}

	userID, _ := middleware.UserID(ctx)
	labels := utils.LastNDays(t.now(), t.loc, days)
	done, err := t.store.CompletionDates(ctx.Request.Context(), userID, labels[0], labels[len(labels)-1])
	if err != nil {
		utils.Logger.Error("load streak failed", zap.Uint("user_id", userID), zap.Error(err))
		utils.Error(ctx, http.StatusInternalServerError, 50011, "failed to load streak")
		return
	}

	values := make([]int, len(labels))
	for i, d := range labels {
		if done[d] {
			values[i] = 1
		}
	}
	utils.Success(ctx, gin.H{"labels": labels, "values": values})
}
