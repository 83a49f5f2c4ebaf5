package admins

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/Bhavnish15/taskoPro/database"
	"github.com/Bhavnish15/taskoPro/models"
	"github.com/Bhavnish15/taskoPro/utils"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

func GetPayments(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	status := r.URL.Query().Get("status")

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	offset := (page - 1) * limit

	query := database.DB.Model(&models.VIPPayment{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	query.Count(&total)

	var payments []models.VIPPayment
	query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&payments)

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"payments": payments,
			"page":     page,
			"limit":    limit,
			"total":    total,
		},
	})
}

// ApprovePayment marks a pending payment Approved and applies its target
// level to the user in one transaction. Approving twice is a conflict; the
// status flip is guarded in the UPDATE.
func ApprovePayment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid payment id"})
		return
	}

	var payment models.VIPPayment
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&payment, uint(id)).Error; err != nil {
			return err
		}
		res := tx.Model(&models.VIPPayment{}).
			Where("id = ? AND status = ?", payment.ID, "Pending").
			Update("status", "Approved")
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errNotPending
		}
		// Never downgrade: the user may have upgraded with credits meanwhile.
		return tx.Model(&models.User{}).
			Where("id = ? AND vip_level < ?", payment.UserID, payment.TargetLevel).
			Update("vip_level", payment.TargetLevel).Error
	})
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Payment not found"})
		case errors.Is(err, errNotPending):
			utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Payment is not pending"})
		default:
			log.Printf("[admin] approve payment error: %v", err)
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		}
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Payment approved"})
}

// RejectPayment marks a pending payment Rejected; the user's level is
// untouched.
func RejectPayment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid payment id"})
		return
	}

	res := database.DB.Model(&models.VIPPayment{}).
		Where("id = ? AND status = ?", uint(id), "Pending").
		Update("status", "Rejected")
	if res.Error != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}
	if res.RowsAffected == 0 {
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Payment not found or not pending"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Payment rejected"})
}

var errNotPending = errors.New("admins: payment is not pending")
