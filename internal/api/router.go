package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(h *Handler, basePath string) *gin.Engine {
	if basePath == "" {
		basePath = "/api/v0"
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLoggingMiddleware(h.logger))
	r.Use(MetricsMiddleware())

	api := r.Group(basePath)
	{
		// Tasks
		api.GET("/tasks", h.ListTasks)
		api.POST("/tasks", h.CreateTask)
		api.GET("/tasks/completed", h.CompletedTasks)
		api.GET("/tasks/:id", h.GetTask)
		api.PUT("/tasks/:id", h.UpdateTask)
		api.DELETE("/tasks/:id", h.DeleteTask)
		api.PATCH("/tasks/:id/status", h.UpdateTaskStatus)
		api.POST("/tasks/:id/email", h.SendTaskEmail)
		api.POST("/tasks/:id/reminders/stop", h.StopReminders)
		api.POST("/tasks/:id/reminders/snooze", h.SnoozeTask)
		api.POST("/tasks/:id/reminders/quick", h.QuickReminder)
		api.GET("/stats", h.Stats)
		api.GET("/calendar", h.Calendar)

		// Notifications
		api.GET("/notifications", h.ListNotifications)
		api.DELETE("/notifications", h.ClearNotifications)
		api.GET("/notifications/unread-count", h.UnreadCount)
		api.POST("/notifications/read-all", h.MarkAllRead)
		api.PATCH("/notifications/:id/read", h.MarkRead)
		api.DELETE("/notifications/:id", h.DeleteNotification)
		api.POST("/notifications/:id/reschedule", h.Reschedule)
		api.GET("/notifications/:id/task", h.NotificationTask)

		api.GET("/popup", h.GetPopup)
		api.DELETE("/popup", h.ClosePopup)

		api.GET("/settings", h.GetSettings)
		api.PUT("/settings", h.SaveSettings)

		api.POST("/scheduler/run", h.RunScheduler)
		api.POST("/assistant/analyze", h.Analyze)
		api.POST("/permission", h.SetPermission)
		api.GET("/ws", h.ServeWS)
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}
