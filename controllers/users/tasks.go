package users

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/Bhavnish15/taskoPro/catalog"
	"github.com/Bhavnish15/taskoPro/database"
	"github.com/Bhavnish15/taskoPro/models"
	"github.com/Bhavnish15/taskoPro/settlement"
	"github.com/Bhavnish15/taskoPro/timer"
	"github.com/Bhavnish15/taskoPro/utils"
	"github.com/Bhavnish15/taskoPro/vip"

	"github.com/gorilla/mux"
)

// TaskController owns the per-user timer sessions behind the task endpoints.
// One instance is shared by all routes; the registry inside serializes each
// user's attempts.
type TaskController struct {
	Registry *timer.Registry
}

// NewTaskController wires the timer registry to the settlement service.
func NewTaskController() *TaskController {
	return &TaskController{
		Registry: timer.NewRegistry(settlement.NewService(database.DB), nil),
	}
}

func taskIDFromRequest(r *http.Request) (uint, bool) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// session returns the caller's timer session with the auto-claim switch
// refreshed from settings.
func (c *TaskController) session(userID uint) *timer.Session {
	s := c.Registry.Session(userID)
	var setting models.Setting
	if err := database.DB.Model(&models.Setting{}).Select("auto_claim").Take(&setting).Error; err == nil {
		s.SetAutoClaim(setting.AutoClaim)
	}
	return s
}

// StartHandler begins (or re-reads) an attempt for the task. Starting an
// already-running task returns its current snapshot unchanged.
func (c *TaskController) StartHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	taskID, ok := taskIDFromRequest(r)
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid task id"})
		return
	}

	store := catalog.NewStore(database.DB)
	task, err := store.Get(taskID)
	if err != nil {
		if errors.Is(err, catalog.ErrTaskNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Task not found"})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}
	if !task.IsActive {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Task not found"})
		return
	}

	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	tiers, err := vip.Load(database.DB)
	if err != nil {
		log.Printf("[tasks] loading VIP table: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	snap, err := c.session(userID).Start(*task, user.VIPLevel, tiers)
	if err != nil {
		if errors.Is(err, timer.ErrAccessDenied) {
			utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{
				Success: false,
				Message: "Your VIP level is too low for this task",
				Data:    map[string]interface{}{"required_vip_level": task.RequiredVIPLevel, "vip_level": user.VIPLevel},
			})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Task started", Data: snap})
}

// PauseHandler freezes a running attempt.
func (c *TaskController) PauseHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	taskID, ok := taskIDFromRequest(r)
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid task id"})
		return
	}
	snap, err := c.session(userID).Pause(taskID)
	if err != nil {
		writeTimerError(w, err, snap)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Task paused", Data: snap})
}

// ResumeHandler continues a paused attempt.
func (c *TaskController) ResumeHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	taskID, ok := taskIDFromRequest(r)
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid task id"})
		return
	}
	snap, err := c.session(userID).Resume(taskID)
	if err != nil {
		writeTimerError(w, err, snap)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Task resumed", Data: snap})
}

// ProgressHandler is the poll endpoint. With auto-claim enabled an expired
// attempt settles here; a transient settle failure leaves it claimable and is
// reported so the client keeps polling.
func (c *TaskController) ProgressHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	taskID, ok := taskIDFromRequest(r)
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid task id"})
		return
	}
	snap, err := c.session(userID).Progress(taskID)
	if err != nil {
		if settlement.IsRetryable(err) {
			utils.WriteJSON(w, http.StatusServiceUnavailable, utils.APIResponse{
				Success: false,
				Message: "Reward pending, settlement will be retried",
				Data:    snap,
			})
			return
		}
		writeTimerError(w, err, snap)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: snap})
}

// ClaimHandler settles an expired attempt and returns the refreshed user.
func (c *TaskController) ClaimHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	taskID, ok := taskIDFromRequest(r)
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid task id"})
		return
	}
	user, snap, err := c.session(userID).Claim(taskID)
	if err != nil {
		if settlement.IsRetryable(err) {
			utils.WriteJSON(w, http.StatusServiceUnavailable, utils.APIResponse{
				Success: false,
				Message: "Settlement failed, please retry the claim",
				Data:    snap,
			})
			return
		}
		if errors.Is(err, settlement.ErrUserNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "User not found"})
			return
		}
		writeTimerError(w, err, snap)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Reward claimed",
		Data: map[string]interface{}{
			"snapshot": snap,
			"wallet":   user.Wallet,
			"user":     user,
		},
	})
}

// AbandonHandler discards the attempt; nothing was persisted for it.
func (c *TaskController) AbandonHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	taskID, ok := taskIDFromRequest(r)
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid task id"})
		return
	}
	c.session(userID).Abandon(taskID)
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Task abandoned"})
}

// ActiveHandler lists live attempts for session restore after a reload.
func (c *TaskController) ActiveHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	snaps := c.session(userID).Active()
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: map[string]interface{}{"attempts": snaps}})
}

func writeTimerError(w http.ResponseWriter, err error, snap timer.Snapshot) {
	switch {
	case errors.Is(err, timer.ErrInvalidState):
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: err.Error(), Data: snap})
	case errors.Is(err, timer.ErrAccessDenied):
		utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{Success: false, Message: err.Error(), Data: snap})
	default:
		log.Printf("[tasks] timer error: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
	}
}
