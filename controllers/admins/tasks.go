package admins

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Bhavnish15/taskoPro/catalog"
	"github.com/Bhavnish15/taskoPro/database"
	"github.com/Bhavnish15/taskoPro/middleware"
	"github.com/Bhavnish15/taskoPro/models"
	"github.com/Bhavnish15/taskoPro/utils"

	"github.com/gorilla/mux"
)

type TaskRequest struct {
	Title            string `json:"title" validate:"required"`
	Description      string `json:"description"`
	Category         string `json:"category"`
	BaseDuration     int    `json:"base_duration"`
	Reward           int64  `json:"reward"`
	IsActive         *bool  `json:"is_active"`
	RequiredVIPLevel int    `json:"required_vip_level"`
}

func (req *TaskRequest) toModel() models.Task {
	task := models.Task{
		Title:            req.Title,
		Description:      req.Description,
		Category:         req.Category,
		BaseDuration:     req.BaseDuration,
		Reward:           req.Reward,
		IsActive:         true,
		RequiredVIPLevel: req.RequiredVIPLevel,
	}
	if req.IsActive != nil {
		task.IsActive = *req.IsActive
	}
	if task.RequiredVIPLevel == 0 {
		task.RequiredVIPLevel = 1
	}
	return task
}

// GetTasks lists the full catalog, active and inactive.
func GetTasks(w http.ResponseWriter, r *http.Request) {
	store := catalog.NewStore(database.DB)
	tasks, err := store.List()
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: tasks})
}

func CreateTask(w http.ResponseWriter, r *http.Request) {
	var req TaskRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	task := req.toModel()

	store := catalog.NewStore(database.DB)
	if err := store.Create(&task); err != nil {
		writeCatalogError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{Success: true, Message: "Task created", Data: task})
}

func UpdateTask(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid task id"})
		return
	}

	var req TaskRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	task := req.toModel()
	task.ID = uint(id)

	store := catalog.NewStore(database.DB)
	if err := store.Update(&task); err != nil {
		writeCatalogError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Task updated", Data: task})
}

func DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid task id"})
		return
	}
	store := catalog.NewStore(database.DB)
	if err := store.Delete(uint(id)); err != nil {
		writeCatalogError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Task deleted"})
}

func writeCatalogError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrValidation):
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: err.Error()})
	case errors.Is(err, catalog.ErrTaskNotFound):
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Task not found"})
	default:
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
	}
}
