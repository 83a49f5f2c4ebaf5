package users

import (
	"net/http"
	"time"

	"github.com/Bhavnish15/taskoPro/database"
	"github.com/Bhavnish15/taskoPro/models"
	"github.com/Bhavnish15/taskoPro/utils"
	"github.com/Bhavnish15/taskoPro/vip"
)

// InfoHandler serves the caller's profile: wallet, VIP tier, daily counter
// (as of today, regardless of when it was last stored) and the next tier to
// upgrade to.
func InfoHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "User not found"})
		return
	}

	today := time.Now().Format(time.DateOnly)
	data := map[string]interface{}{
		"id":                    user.ID,
		"email":                 user.Email,
		"display_name":          user.DisplayName,
		"wallet":                user.Wallet,
		"vip_level":             user.VIPLevel,
		"tasks_today":           user.TasksOn(today),
		"total_tasks_completed": user.TotalTasksCompleted,
		"total_credits_earned":  user.TotalCreditsEarned,
		"is_admin":              user.IsAdmin,
	}

	if table, err := vip.Load(database.DB); err == nil {
		if tier, terr := table.TierFor(user.VIPLevel); terr == nil {
			data["vip_name"] = tier.Name
			data["vip_multiplier"] = tier.Multiplier
		}
		if next := table.NextTier(user.VIPLevel); next != nil {
			data["next_tier"] = map[string]interface{}{
				"level":      next.Level,
				"name":       next.Name,
				"cost":       next.Cost,
				"multiplier": next.Multiplier,
				"affordable": user.Wallet >= next.Cost,
			}
		}
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: data})
}

// CompletionsHandler lists the caller's completion history, newest first.
func CompletionsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	var completions []models.TaskCompletion
	if err := database.DB.
		Where("user_id = ?", userID).
		Order("completed_at DESC, id DESC").
		Limit(100).
		Find(&completions).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data:    map[string]interface{}{"completions": completions},
	})
}
