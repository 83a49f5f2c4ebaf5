package admins

import (
	"net/http"
	"time"

	"github.com/Bhavnish15/taskoPro/database"
	"github.com/Bhavnish15/taskoPro/models"
	"github.com/Bhavnish15/taskoPro/utils"
)

type DailyCompletions struct {
	Day   string `json:"day"`
	Count int64  `json:"count"`
}

type TransactionDetail struct {
	UserName  string    `json:"user_name"`
	Amount    int64     `json:"amount"`
	Flow      string    `json:"flow"`
	Type      string    `json:"type"`
	Message   *string   `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

type DashboardStats struct {
	TotalUsers              int64               `json:"total_users"`
	ActiveToday             int64               `json:"active_today"`
	TotalTasks              int64               `json:"total_tasks"`
	ActiveTasks             int64               `json:"active_tasks"`
	TotalCreditsDistributed int64               `json:"total_credits_distributed"`
	CompletionsToday        int64               `json:"completions_today"`
	CompletionsByDay        []DailyCompletions  `json:"completions_by_day"`
	PendingPayments         int64               `json:"pending_payments"`
	AverageVIPLevel         float64             `json:"average_vip_level"`
	LastTransactions        []TransactionDetail `json:"last_transactions"`
	TopUsers                []models.User       `json:"top_users"`
}

func GetDashboardStats(w http.ResponseWriter, r *http.Request) {
	var stats DashboardStats
	db := database.DB
	today := time.Now().Format(time.DateOnly)

	// initialize slices to ensure empty arrays are returned (not null)
	stats.CompletionsByDay = make([]DailyCompletions, 0, 7)
	stats.LastTransactions = make([]TransactionDetail, 0)
	stats.TopUsers = make([]models.User, 0)

	db.Model(&models.User{}).Count(&stats.TotalUsers)
	db.Model(&models.User{}).Where("last_task_date = ?", today).Count(&stats.ActiveToday)
	db.Model(&models.Task{}).Count(&stats.TotalTasks)
	db.Model(&models.Task{}).Where("is_active = ?", true).Count(&stats.ActiveTasks)
	db.Model(&models.TaskCompletion{}).Where("date = ?", today).Count(&stats.CompletionsToday)
	db.Model(&models.VIPPayment{}).Where("status = ?", "Pending").Count(&stats.PendingPayments)

	var sysStats models.SystemStats
	if err := db.First(&sysStats, 1).Error; err == nil {
		stats.TotalCreditsDistributed = sysStats.TotalCreditsDistributed
	}

	var avg float64
	db.Model(&models.User{}).Select("COALESCE(AVG(vip_level),0)").Scan(&avg)
	stats.AverageVIPLevel = utils.RoundFloat(avg, 2)

	// completions per calendar day, last 7 days; date column is a plain
	// YYYY-MM-DD string so this works on both MySQL and sqlite
	for i := 6; i >= 0; i-- {
		day := time.Now().AddDate(0, 0, -i).Format(time.DateOnly)
		var count int64
		db.Model(&models.TaskCompletion{}).Where("date = ?", day).Count(&count)
		stats.CompletionsByDay = append(stats.CompletionsByDay, DailyCompletions{Day: day, Count: count})
	}

	// last 10 ledger rows with the owning user's name
	type row struct {
		DisplayName string
		Amount      int64
		Flow        string
		Type        string
		Message     *string
		CreatedAt   time.Time
	}
	var rows []row
	db.Model(&models.Transaction{}).
		Select("users.display_name, transactions.amount, transactions.flow, transactions.type, transactions.message, transactions.created_at").
		Joins("JOIN users ON users.id = transactions.user_id").
		Order("transactions.created_at DESC").
		Limit(10).
		Scan(&rows)
	for _, tr := range rows {
		stats.LastTransactions = append(stats.LastTransactions, TransactionDetail{
			UserName:  tr.DisplayName,
			Amount:    tr.Amount,
			Flow:      tr.Flow,
			Type:      tr.Type,
			Message:   tr.Message,
			CreatedAt: tr.CreatedAt,
		})
	}

	db.Model(&models.User{}).
		Order("total_credits_earned DESC, id ASC").
		Limit(10).
		Find(&stats.TopUsers)

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data:    stats,
	})
}
