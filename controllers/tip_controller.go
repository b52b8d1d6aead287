package controllers

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/greenhabit/store"
	"github.com/cppla/greenhabit/utils"
)

const fallbackTip = "Reduce, reuse, recycle."

// TipsCacheKey holds the cached tip catalog.
const TipsCacheKey = "cache:tips"

// TipController serves the tip of the day.
type TipController struct {
	store *store.Store
	cache *utils.Cache
	now   utils.Clock
	loc   *time.Location
}

// NewTipController creates a TipController. cache may be nil.
func NewTipController(s *store.Store, cache *utils.Cache, now utils.Clock, loc *time.Location) *TipController {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	return &TipController{store: s, cache: cache, now: now, loc: loc}
}

// GetTip never fails: an empty or unreadable catalog yields the fallback tip.
func (t *TipController) GetTip(ctx *gin.Context) {
	tips := t.loadTips(ctx)
	if len(tips) == 0 {
		utils.Success(ctx, gin.H{"tip": fallbackTip})
		return
	}
	idx := utils.DayIndex(t.now(), t.loc, len(tips))
	utils.Success(ctx, gin.H{"tip": tips[idx]})
}

func (t *TipController) loadTips(ctx *gin.Context) []string {
	reqCtx := ctx.Request.Context()
	var tips []string
	if t.cache != nil && t.cache.GetJSON(reqCtx, TipsCacheKey, &tips) && len(tips) > 0 {
		return tips
	}

	tips, err := t.store.ListTips(reqCtx)
	if err != nil {
		utils.Logger.Warn("load tips failed", zap.Error(err))
		return nil
	}
	if t.cache != nil && len(tips) > 0 {
		t.cache.SetJSON(reqCtx, TipsCacheKey, tips)
	}
	return tips
}
