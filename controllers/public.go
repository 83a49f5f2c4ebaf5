package controllers

import (
	"net/http"
	"time"

	"github.com/Bhavnish15/taskoPro/catalog"
	"github.com/Bhavnish15/taskoPro/database"
	"github.com/Bhavnish15/taskoPro/models"
	"github.com/Bhavnish15/taskoPro/utils"
	"github.com/Bhavnish15/taskoPro/vip"
)

// ListTasksHandler serves the active task catalog. Ordering defaults to
// reward descending; ?sort=duration|title selects the alternatives.
func ListTasksHandler(w http.ResponseWriter, r *http.Request) {
	store := catalog.NewStore(database.DB)
	key := catalog.ParseSortKey(r.URL.Query().Get("sort"))
	tasks, err := store.ListActive(key)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data:    map[string]interface{}{"tasks": tasks, "sort": string(key)},
	})
}

// ListVIPLevelsHandler serves the tier table with per-tier benefits expanded.
func ListVIPLevelsHandler(w http.ResponseWriter, r *http.Request) {
	table, err := vip.Load(database.DB)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}
	levels := table.Levels()
	out := make([]map[string]interface{}, 0, len(levels))
	for _, lv := range levels {
		out = append(out, map[string]interface{}{
			"level":      lv.Level,
			"name":       lv.Name,
			"cost":       lv.Cost,
			"multiplier": lv.Multiplier,
			"benefits":   lv.BenefitList(),
		})
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data:    map[string]interface{}{"vip_levels": out},
	})
}

// StatsHandler serves the public platform overview: user counts, credits
// distributed and the top earners leaderboard.
func StatsHandler(w http.ResponseWriter, r *http.Request) {
	db := database.DB
	today := time.Now().Format(time.DateOnly)

	var overview models.StatsOverview
	if err := db.Model(&models.User{}).Count(&overview.TotalUsers).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}
	db.Model(&models.User{}).Where("last_task_date = ?", today).Count(&overview.ActiveToday)

	var stats models.SystemStats
	if err := db.First(&stats, 1).Error; err == nil {
		overview.TotalCreditsDistributed = stats.TotalCreditsDistributed
	}

	var avg float64
	db.Model(&models.User{}).Select("COALESCE(AVG(vip_level),0)").Scan(&avg)
	overview.AverageVIPLevel = utils.RoundFloat(avg, 2)

	db.Model(&models.User{}).
		Order("total_credits_earned DESC, id ASC").
		Limit(10).
		Find(&overview.TopUsers)

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data:    overview,
	})
}

// HealthHandler is the liveness probe.
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	healthy := true
	if database.DB == nil {
		healthy = false
	} else if sqlDB, err := database.DB.DB(); err != nil || sqlDB.Ping() != nil {
		healthy = false
	}
	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	utils.WriteJSON(w, status, utils.APIResponse{
		Success: healthy,
		Message: "Health check",
		Data:    map[string]interface{}{"healthy": healthy, "time": time.Now().UTC().Format(time.RFC3339)},
	})
}
