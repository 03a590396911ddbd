package controller

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"credilink_backend/internals/features/learning/leaderboard/service"
	helper "credilink_backend/internals/helpers"
)

const defaultLeaderboardSize = 50

type LeaderboardController struct {
	Service *service.LeaderboardService
}

func NewLeaderboardController(db *gorm.DB) *LeaderboardController {
	return &LeaderboardController{Service: service.NewLeaderboardService(db)}
}

// GET /leaderboard
func (ctl *LeaderboardController) Get(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", strconv.Itoa(defaultLeaderboardSize)))
	if limit <= 0 || limit > 500 {
		limit = defaultLeaderboardSize
	}

	entries, err := ctl.Service.GetRankedLeaderboard(c.Context(), limit)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.Success(c, "Leaderboard fetched", entries)
}

// POST /leaderboard/recompute/:user_id: admin repair hook for the derived view.
func (ctl *LeaderboardController) Recompute(c *fiber.Ctx) error {
	entry, err := ctl.Service.RecomputeEntry(c.Context(), c.Params("user_id"))
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.Success(c, "Leaderboard entry recomputed", entry)
}
