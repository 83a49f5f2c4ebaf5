package admins

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/Bhavnish15/taskoPro/database"
	"github.com/Bhavnish15/taskoPro/middleware"
	"github.com/Bhavnish15/taskoPro/models"
	"github.com/Bhavnish15/taskoPro/utils"
	"github.com/Bhavnish15/taskoPro/vip"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

func GetUsers(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	search := r.URL.Query().Get("search")
	level, _ := strconv.Atoi(r.URL.Query().Get("vip_level"))

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	offset := (page - 1) * limit

	db := database.DB
	query := db.Model(&models.User{})

	if search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(email) LIKE ? OR LOWER(display_name) LIKE ?", like, like)
	}
	if level > 0 {
		query = query.Where("vip_level = ?", level)
	}

	var total int64
	query.Count(&total)

	var users []models.User
	query.Order("id ASC").Offset(offset).Limit(limit).Find(&users)

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"users": users,
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

func GetUserDetail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid user id"})
		return
	}

	var user models.User
	if err := database.DB.First(&user, uint(id)).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "User not found"})
		return
	}

	var completions int64
	database.DB.Model(&models.TaskCompletion{}).Where("user_id = ?", user.ID).Count(&completions)

	var lastLedger []models.Transaction
	database.DB.Where("user_id = ?", user.ID).Order("created_at DESC").Limit(10).Find(&lastLedger)

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"user":              user,
			"completions_total": completions,
			"last_transactions": lastLedger,
		},
	})
}

type GrantRequest struct {
	Amount  int64  `json:"amount"`
	Message string `json:"message"`
}

// GrantCredits credits (or, with a negative amount, debits) a user's wallet
// from the admin console. The balance change and the ledger row commit
// together; a debit below zero is rejected.
func GrantCredits(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid user id"})
		return
	}

	var req GrantRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	if req.Amount == 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "amount must be non-zero"})
		return
	}

	userID := uint(id)
	var updated models.User
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		query := tx.Model(&models.User{}).Where("id = ?", userID)
		if req.Amount < 0 {
			query = query.Where("wallet >= ?", -req.Amount)
		}
		res := query.Update("wallet", gorm.Expr("wallet + ?", req.Amount))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errGrantRejected
		}

		flow := "credit"
		amount := req.Amount
		if req.Amount < 0 {
			flow = "debit"
			amount = -req.Amount
		}
		msg := strings.TrimSpace(req.Message)
		if msg == "" {
			msg = "Admin wallet adjustment"
		}
		ledger := models.Transaction{
			UserID:  userID,
			Amount:  amount,
			OrderID: utils.GenerateOrderID(userID),
			Flow:    flow,
			Type:    "grant",
			Message: &msg,
			Status:  "Success",
		}
		if err := tx.Create(&ledger).Error; err != nil {
			return err
		}
		return tx.First(&updated, userID).Error
	})
	if err != nil {
		if errors.Is(err, errGrantRejected) {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Adjustment rejected: user missing or balance would go negative"})
			return
		}
		log.Printf("[admin] grant error: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: fmt.Sprintf("Wallet adjusted by %d", req.Amount),
		Data:    map[string]interface{}{"wallet": updated.Wallet},
	})
}

var errGrantRejected = errors.New("admins: wallet adjustment rejected")

type SetVIPRequest struct {
	Level int `json:"level"`
}

// SetUserVIPLevel overrides a user's tier without charging the wallet.
func SetUserVIPLevel(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid user id"})
		return
	}

	var req SetVIPRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	table, err := vip.Load(database.DB)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}
	if _, err := table.TierFor(req.Level); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Unknown VIP level"})
		return
	}

	res := database.DB.Model(&models.User{}).Where("id = ?", uint(id)).Update("vip_level", req.Level)
	if res.Error != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}
	if res.RowsAffected == 0 {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "User not found"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "VIP level updated"})
}
