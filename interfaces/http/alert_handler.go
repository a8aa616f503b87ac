package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"channelhub/domain/dto"
	"channelhub/infrastructure/realtime"
	"channelhub/usecase"
)

type IAlertHandler interface {
	List(c *gin.Context)
	MarkRead(c *gin.Context)
	Stream(c *gin.Context)
}

type AlertHandler struct {
	alertUsecase usecase.IAlertUsecase
	hub          *realtime.Hub
}

func NewAlertHandler(alertUsecase usecase.IAlertUsecase, hub *realtime.Hub) IAlertHandler {
	return &AlertHandler{alertUsecase: alertUsecase, hub: hub}
}

// List returns the user's alerts, newest first. ?unread=true narrows to
// unread ones.
func (h *AlertHandler) List(c *gin.Context) {
	userID := c.GetString("user_id")
	unreadOnly := c.Query("unread") == "true"

	alerts, err := h.alertUsecase.List(c.Request.Context(), userID, unreadOnly)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Res{ResponseCode: "200", ResponseMessage: "OK", Data: alerts})
}

func (h *AlertHandler) MarkRead(c *gin.Context) {
	userID := c.GetString("user_id")
	alertID := c.Param("alertId")

	if err := h.alertUsecase.MarkRead(c.Request.Context(), userID, alertID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Res{ResponseCode: "200", ResponseMessage: "OK"})
}

// Stream serves the SSE feed of freshly raised alerts.
func (h *AlertHandler) Stream(c *gin.Context) {
	h.hub.Serve(c)
}
