package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"munjiz/internal/logging"
	"munjiz/internal/models"
	"munjiz/internal/notification"
	"munjiz/internal/scheduler"
	"munjiz/internal/services"
	"munjiz/internal/settings"
	"munjiz/internal/tasks"
)

// Ticker runs one reminder pass on demand.
type Ticker interface {
	Tick(ctx context.Context) scheduler.TickResult
}

type Deps struct {
	Tasks     *tasks.Repository
	Log       *notification.Log
	Settings  *settings.Service
	Services  *services.Service
	Scheduler Ticker
	Popups    *services.Popups
	Hub       *services.Hub
}

type Handler struct {
	deps   Deps
	now    func() time.Time
	logger *logrus.Entry
}

func NewHandler(deps Deps, logger *logging.Logger) *Handler {
	return &Handler{deps: deps, now: time.Now, logger: logger.Component("api")}
}

// fail maps domain errors onto HTTP status codes.
func (h *Handler) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Errorf("%s %s failed: %v", c.Request.Method, c.FullPath(), err)
	} else {
		h.logger.Warnf("%s %s rejected: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, tasks.ErrTaskNotFound), errors.Is(err, notification.ErrNotificationNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrConfirmationRequired):
		return http.StatusConflict
	case errors.Is(err, models.ErrInvalidPriority),
		errors.Is(err, models.ErrInvalidStatus),
		errors.Is(err, models.ErrInvalidFrequency),
		errors.Is(err, models.ErrInvalidDate),
		errors.Is(err, models.ErrInvalidReminderDate),
		errors.Is(err, models.ErrMissingField),
		errors.Is(err, services.ErrInvalidSnooze),
		errors.Is(err, services.ErrInvalidQuickReminder),
		errors.Is(err, services.ErrInvalidPermission):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) badRequest(c *gin.Context, err error) {
	h.logger.Warnf("Invalid request body: %v", err)
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
}

func confirmed(c *gin.Context) bool {
	ok, _ := strconv.ParseBool(c.Query("confirm"))
	return ok
}

func (h *Handler) ListTasks(c *gin.Context) {
	f := tasks.Filter(c.DefaultQuery("filter", string(tasks.FilterAll)))
	switch f {
	case tasks.FilterAll, tasks.FilterActive, tasks.FilterCompleted:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid filter"})
		return
	}
	c.JSON(http.StatusOK, nonNil(h.deps.Tasks.List(f)))
}

func (h *Handler) CompletedTasks(c *gin.Context) {
	c.JSON(http.StatusOK, nonNil(h.deps.Tasks.Completed()))
}

func (h *Handler) CreateTask(c *gin.Context) {
	var draft models.TaskDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		h.badRequest(c, err)
		return
	}
	task, err := h.deps.Tasks.Add(c.Request.Context(), draft)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.logger.Infof("Created task: %s", task.ID)
	c.JSON(http.StatusCreated, task)
}

func (h *Handler) GetTask(c *gin.Context) {
	task, ok := h.deps.Tasks.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *Handler) UpdateTask(c *gin.Context) {
	var task models.Task
	if err := c.ShouldBindJSON(&task); err != nil {
		h.badRequest(c, err)
		return
	}
	task.ID = c.Param("id")
	updated, err := h.deps.Tasks.Update(c.Request.Context(), task)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) DeleteTask(c *gin.Context) {
	id := c.Param("id")
	if err := h.deps.Tasks.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	h.logger.Infof("Deleted task: %s", id)
	c.Status(http.StatusNoContent)
}

func (h *Handler) UpdateTaskStatus(c *gin.Context) {
	var req struct {
		Status models.Status `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	task, err := h.deps.Tasks.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// SendTaskEmail answers 202 whether or not delivery succeeded.
func (h *Handler) SendTaskEmail(c *gin.Context) {
	if err := h.deps.Services.SendTaskDetails(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "Email request processed"})
}

func (h *Handler) StopReminders(c *gin.Context) {
	task, err := h.deps.Services.StopReminders(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *Handler) SnoozeTask(c *gin.Context) {
	var req struct {
		Preset services.SnoozePreset `json:"preset"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.badRequest(c, err)
			return
		}
	}
	task, err := h.deps.Services.SnoozeUntil(c.Request.Context(), c.Param("id"), req.Preset)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *Handler) QuickReminder(c *gin.Context) {
	var req struct {
		Hours int `json:"hours" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	task, err := h.deps.Services.QuickReminder(c.Request.Context(), c.Param("id"), req.Hours)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *Handler) Stats(c *gin.Context) {
	loc := h.deps.Tasks.Location()
	now := h.now().In(loc)
	year := now.Year()
	if raw := c.Query("year"); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid year"})
			return
		}
		year = y
	}
	c.JSON(http.StatusOK, h.deps.Tasks.Stats(year, models.StartOfDay(now, loc)))
}

func (h *Handler) Calendar(c *gin.Context) {
	now := h.now().In(h.deps.Tasks.Location())
	year, month := now.Year(), int(now.Month())
	if raw := c.Query("year"); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid year"})
			return
		}
		year = y
	}
	if raw := c.Query("month"); raw != "" {
		m, err := strconv.Atoi(raw)
		if err != nil || m < 1 || m > 12 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid month"})
			return
		}
		month = m
	}
	c.JSON(http.StatusOK, gin.H{
		"year":  year,
		"month": month,
		"days":  h.deps.Tasks.Calendar(year, time.Month(month)),
	})
}

func (h *Handler) ListNotifications(c *gin.Context) {
	c.JSON(http.StatusOK, nonNil(h.deps.Log.List()))
}

func (h *Handler) UnreadCount(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"unread": h.deps.Log.UnreadCount()})
}

func (h *Handler) MarkRead(c *gin.Context) {
	if err := h.deps.Log.MarkRead(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) MarkAllRead(c *gin.Context) {
	h.deps.Log.MarkAllRead(c.Request.Context())
	c.Status(http.StatusNoContent)
}

func (h *Handler) DeleteNotification(c *gin.Context) {
	if err := h.deps.Services.DeleteNotification(c.Request.Context(), c.Param("id"), confirmed(c)); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ClearNotifications(c *gin.Context) {
	n, err := h.deps.Services.ClearNotifications(c.Request.Context(), confirmed(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": n})
}

func (h *Handler) Reschedule(c *gin.Context) {
	var req struct {
		TaskID string `json:"taskId" binding:"required"`
		At     string `json:"at" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	task, err := h.deps.Services.Reschedule(c.Request.Context(), c.Param("id"), req.TaskID, req.At)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// NotificationTask follows the notification's task link; a dangling
// link is a plain 404.
func (h *Handler) NotificationTask(c *gin.Context) {
	task, ok := h.deps.Services.OpenTaskFromNotification(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *Handler) GetPopup(c *gin.Context) {
	p, ok := h.deps.Popups.Current()
	if !ok {
		c.JSON(http.StatusOK, gin.H{"popup": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"popup": p})
}

func (h *Handler) ClosePopup(c *gin.Context) {
	h.deps.Popups.Close()
	c.Status(http.StatusNoContent)
}

func (h *Handler) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, h.deps.Settings.Get())
}

func (h *Handler) SaveSettings(c *gin.Context) {
	var s models.Settings
	if err := c.ShouldBindJSON(&s); err != nil {
		h.badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, h.deps.Settings.Save(c.Request.Context(), s))
}

func (h *Handler) RunScheduler(c *gin.Context) {
	// The pass outlives a client that hangs up mid-request.
	c.JSON(http.StatusOK, h.deps.Scheduler.Tick(context.WithoutCancel(c.Request.Context())))
}

func (h *Handler) Analyze(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"analysis": h.deps.Services.Analyze(c.Request.Context())})
}

func (h *Handler) SetPermission(c *gin.Context) {
	var req struct {
		Permission string `json:"permission" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	p, err := services.ParsePermission(req.Permission)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.deps.Hub.SetPermission(p)
	c.JSON(http.StatusOK, gin.H{"permission": p})
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
