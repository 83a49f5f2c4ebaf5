package admins

import (
	"net/http"
	"strconv"

	"github.com/Bhavnish15/taskoPro/database"
	"github.com/Bhavnish15/taskoPro/middleware"
	"github.com/Bhavnish15/taskoPro/models"
	"github.com/Bhavnish15/taskoPro/utils"
	"github.com/Bhavnish15/taskoPro/vip"

	"github.com/gorilla/mux"
)

type VIPLevelRequest struct {
	Level      int      `json:"level"`
	Name       string   `json:"name" validate:"required"`
	Cost       int64    `json:"cost"`
	Multiplier float64  `json:"multiplier"`
	Benefits   []string `json:"benefits"`
}

func GetVIPLevels(w http.ResponseWriter, r *http.Request) {
	var levels []models.VIPLevel
	if err := database.DB.Order("level ASC").Find(&levels).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: levels})
}

// CreateVIPLevel inserts a tier after validating the resulting table as a
// whole: new levels cannot break the cost/multiplier monotonicity of the
// neighbours.
func CreateVIPLevel(w http.ResponseWriter, r *http.Request) {
	var req VIPLevelRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	tier := models.VIPLevel{Level: req.Level, Name: req.Name, Cost: req.Cost, Multiplier: req.Multiplier}
	tier.SetBenefits(req.Benefits)

	var existing []models.VIPLevel
	if err := database.DB.Order("level ASC").Find(&existing).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}
	if _, err := vip.NewTable(append(existing, tier)); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: err.Error()})
		return
	}

	if err := database.DB.Create(&tier).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{Success: true, Message: "VIP level created", Data: tier})
}

// UpdateVIPLevel edits a tier, again validating the whole table first.
func UpdateVIPLevel(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid VIP level id"})
		return
	}

	var req VIPLevelRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	var tier models.VIPLevel
	if err := database.DB.First(&tier, uint(id)).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "VIP level not found"})
		return
	}

	tier.Level = req.Level
	tier.Name = req.Name
	tier.Cost = req.Cost
	tier.Multiplier = req.Multiplier
	tier.SetBenefits(req.Benefits)

	var others []models.VIPLevel
	if err := database.DB.Where("id <> ?", tier.ID).Order("level ASC").Find(&others).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}
	if _, err := vip.NewTable(append(others, tier)); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: err.Error()})
		return
	}

	if err := database.DB.Save(&tier).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "VIP level updated", Data: tier})
}

// DeleteVIPLevel removes a tier unless users still sit on it.
func DeleteVIPLevel(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid VIP level id"})
		return
	}

	var tier models.VIPLevel
	if err := database.DB.First(&tier, uint(id)).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "VIP level not found"})
		return
	}

	var inUse int64
	database.DB.Model(&models.User{}).Where("vip_level = ?", tier.Level).Count(&inUse)
	if inUse > 0 {
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "VIP level is still assigned to users"})
		return
	}

	var remaining []models.VIPLevel
	if err := database.DB.Where("id <> ?", tier.ID).Order("level ASC").Find(&remaining).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}
	if _, err := vip.NewTable(remaining); err != nil {
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Deleting this level would leave an invalid tier table"})
		return
	}

	if err := database.DB.Delete(&tier).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "VIP level deleted"})
}
