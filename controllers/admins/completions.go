package admins

import (
	"net/http"
	"strconv"

	"github.com/Bhavnish15/taskoPro/database"
	"github.com/Bhavnish15/taskoPro/models"
	"github.com/Bhavnish15/taskoPro/utils"
)

// GetCompletions lists settlement records across all users, newest first,
// optionally filtered by user, task or calendar day.
func GetCompletions(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	userID, _ := strconv.Atoi(r.URL.Query().Get("user_id"))
	taskID, _ := strconv.Atoi(r.URL.Query().Get("task_id"))
	date := r.URL.Query().Get("date")

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}
	offset := (page - 1) * limit

	query := database.DB.Model(&models.TaskCompletion{})
	if userID > 0 {
		query = query.Where("user_id = ?", userID)
	}
	if taskID > 0 {
		query = query.Where("task_id = ?", taskID)
	}
	if date != "" {
		query = query.Where("date = ?", date)
	}

	var total int64
	query.Count(&total)

	var completions []models.TaskCompletion
	query.Order("completed_at DESC, id DESC").Offset(offset).Limit(limit).Find(&completions)

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"completions": completions,
			"page":        page,
			"limit":       limit,
			"total":       total,
		},
	})
}
