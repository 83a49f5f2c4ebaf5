package users

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Bhavnish15/taskoPro/database"
	"github.com/Bhavnish15/taskoPro/middleware"
	"github.com/Bhavnish15/taskoPro/models"
	"github.com/Bhavnish15/taskoPro/utils"
	"github.com/Bhavnish15/taskoPro/vip"

	"gorm.io/gorm"
)

type UpgradeRequest struct {
	TargetLevel int `json:"target_level"`
}

// UpgradeHandler buys a VIP tier with wallet credits. The debit, the level
// change and the ledger row commit in one transaction; the balance guard sits
// in the UPDATE itself so two concurrent upgrades cannot both spend the same
// credits.
func UpgradeHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	var req UpgradeRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	table, err := vip.Load(database.DB)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}
	tier, err := table.TierFor(req.TargetLevel)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Unknown VIP level"})
		return
	}

	var updated models.User
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			return err
		}
		if user.VIPLevel >= tier.Level {
			return errAlreadyAtLevel
		}
		if user.Wallet < tier.Cost {
			return errInsufficient
		}

		res := tx.Model(&models.User{}).
			Where("id = ? AND wallet >= ? AND vip_level < ?", userID, tier.Cost, tier.Level).
			Updates(map[string]interface{}{
				"wallet":    gorm.Expr("wallet - ?", tier.Cost),
				"vip_level": tier.Level,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errInsufficient
		}

		msg := fmt.Sprintf("VIP upgrade to %s (level %d)", tier.Name, tier.Level)
		ledger := models.Transaction{
			UserID:  userID,
			Amount:  tier.Cost,
			OrderID: utils.GenerateOrderID(userID),
			Flow:    "debit",
			Type:    "upgrade",
			Message: &msg,
			Status:  "Success",
		}
		if err := tx.Create(&ledger).Error; err != nil {
			return err
		}
		return tx.First(&updated, userID).Error
	})
	if err != nil {
		switch {
		case errors.Is(err, errAlreadyAtLevel):
			utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "You already have this VIP level"})
		case errors.Is(err, errInsufficient):
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Not enough credits for this upgrade"})
		case errors.Is(err, gorm.ErrRecordNotFound):
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "User not found"})
		default:
			log.Printf("[upgrade] transaction error: %v", err)
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		}
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: fmt.Sprintf("Welcome to %s!", tier.Name),
		Data: map[string]interface{}{
			"vip_level": updated.VIPLevel,
			"wallet":    updated.Wallet,
		},
	})
}

var (
	errAlreadyAtLevel = errors.New("upgrade: already at or above target level")
	errInsufficient   = errors.New("upgrade: insufficient credits")
)

// UpgradePaymentHandler accepts an external-payment proof for a VIP upgrade:
// multipart form with country, currency, amount, method, target_level and a
// proof file. The file lands in R2 and a Pending payment row is created; the
// user's level changes only when an admin approves it.
func UpgradePaymentHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	if err := r.ParseMultipartForm(8 << 20); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid multipart form"})
		return
	}

	targetLevel, err := strconv.Atoi(r.FormValue("target_level"))
	if err != nil || targetLevel < 1 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "target_level is required"})
		return
	}
	amount, err := strconv.ParseInt(r.FormValue("amount"), 10, 64)
	if err != nil || amount <= 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "amount must be a positive number"})
		return
	}
	country := strings.TrimSpace(r.FormValue("country"))
	currency := strings.TrimSpace(r.FormValue("currency"))
	method := strings.TrimSpace(r.FormValue("method"))
	if currency == "" || method == "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "currency and method are required"})
		return
	}

	table, err := vip.Load(database.DB)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}
	if _, err := table.TierFor(targetLevel); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Unknown VIP level"})
		return
	}

	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "User not found"})
		return
	}
	if user.VIPLevel >= targetLevel {
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "You already have this VIP level"})
		return
	}

	file, header, err := r.FormFile("proof")
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "proof file is required"})
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp", ".pdf":
	default:
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "proof must be an image or PDF"})
		return
	}

	objectName := fmt.Sprintf("payments/%d/%d%s", userID, time.Now().UnixNano(), ext)
	proofURL, err := utils.UploadToS3AndPresign(objectName, file, header.Size, 7*24*3600)
	if err != nil {
		log.Printf("[upgrade] proof upload failed: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to store payment proof"})
		return
	}

	payment := models.VIPPayment{
		UserID:      userID,
		Email:       user.Email,
		Country:     country,
		Currency:    currency,
		Amount:      amount,
		Method:      method,
		ProofURL:    proofURL,
		TargetLevel: targetLevel,
		Status:      "Pending",
	}
	if err := database.DB.Create(&payment).Error; err != nil {
		log.Printf("[upgrade] DB Create payment error: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{
		Success: true,
		Message: "Payment submitted, awaiting review",
		Data:    map[string]interface{}{"payment_id": payment.ID, "status": payment.Status},
	})
}
