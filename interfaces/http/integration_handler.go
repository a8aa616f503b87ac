package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"channelhub/domain/dto"
	"channelhub/domain/model"
	"channelhub/infrastructure/configuration"
	"channelhub/infrastructure/filecsv"
	"channelhub/infrastructure/logger"
	"channelhub/usecase"
)

// IIntegrationHandler exposes the generic platform lifecycle endpoints. The
// :platform param selects the adapter; unknown values get a 400.
type IIntegrationHandler interface {
	Connect(c *gin.Context)
	Callback(c *gin.Context)
	Sync(c *gin.Context)
	Status(c *gin.Context)
	Data(c *gin.Context)
	Export(c *gin.Context)
	Disconnect(c *gin.Context)
}

type IntegrationHandler struct {
	integrationUsecase usecase.IIntegrationUsecase
}

func NewIntegrationHandler(integrationUsecase usecase.IIntegrationUsecase) IIntegrationHandler {
	return &IntegrationHandler{integrationUsecase: integrationUsecase}
}

// Connect returns the provider authorization URL for the frontend to open.
// Shopify needs ?shop=..., Google Analytics ?propertyId=....
func (h *IntegrationHandler) Connect(c *gin.Context) {
	userID := c.GetString("user_id")
	platform := c.Param("platform")
	params := model.AuthParams{
		ShopDomain: c.Query("shop"),
		PropertyID: c.Query("propertyId"),
	}

	res, err := h.integrationUsecase.Connect(c.Request.Context(), userID, platform, params)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Res{ResponseCode: "200", ResponseMessage: "OK", Data: res})
}

// Callback is hit by the provider redirect, unauthenticated; the user is
// recovered from the state payload. On success the browser is sent back to
// the frontend dashboard.
func (h *IntegrationHandler) Callback(c *gin.Context) {
	platform := c.Param("platform")
	params := model.CallbackParams{
		Code:  c.Query("code"),
		State: c.Query("state"),
		Shop:  c.Query("shop"),
	}
	if params.Code == "" || params.State == "" {
		c.JSON(http.StatusBadRequest, dto.Res{ResponseCode: "400", ResponseMessage: "code and state are required"})
		return
	}

	if _, err := h.integrationUsecase.HandleCallback(c.Request.Context(), platform, params); err != nil {
		logger.GetLogger().WithField("error", err).WithField("platform", platform).Error("OAuth callback failed")
		c.Redirect(http.StatusFound, fmt.Sprintf("%s/dashboard?connected=%s&error=1", configuration.C.App.FrontendURL, platform))
		return
	}
	c.Redirect(http.StatusFound, fmt.Sprintf("%s/dashboard?connected=%s", configuration.C.App.FrontendURL, platform))
}

func (h *IntegrationHandler) Sync(c *gin.Context) {
	userID := c.GetString("user_id")
	platform := c.Param("platform")

	res, err := h.integrationUsecase.Sync(c.Request.Context(), userID, platform)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Res{ResponseCode: "200", ResponseMessage: "OK", Data: res})
}

func (h *IntegrationHandler) Status(c *gin.Context) {
	userID := c.GetString("user_id")

	statuses, err := h.integrationUsecase.Status(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Res{ResponseCode: "200", ResponseMessage: "OK", Data: statuses})
}

// Data lists stored unified records; ?type= narrows to one data type.
func (h *IntegrationHandler) Data(c *gin.Context) {
	userID := c.GetString("user_id")
	platform := c.Param("platform")
	dataType := c.Query("type")

	records, err := h.integrationUsecase.Data(c.Request.Context(), userID, platform, dataType)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Res{ResponseCode: "200", ResponseMessage: "OK", Data: records})
}

// Export streams the stored records as a CSV download.
func (h *IntegrationHandler) Export(c *gin.Context) {
	userID := c.GetString("user_id")
	platform := c.Param("platform")
	dataType := c.Query("type")

	records, err := h.integrationUsecase.Data(c.Request.Context(), userID, platform, dataType)
	if err != nil {
		writeError(c, err)
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s_data.csv", platform))
	if err := filecsv.WriteUnifiedData(c.Writer, records); err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while writing CSV export")
	}
}

func (h *IntegrationHandler) Disconnect(c *gin.Context) {
	userID := c.GetString("user_id")
	platform := c.Param("platform")

	if err := h.integrationUsecase.Disconnect(c.Request.Context(), userID, platform); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Res{ResponseCode: "200", ResponseMessage: "Disconnected"})
}

// writeError maps domain errors onto HTTP statuses.
func writeError(c *gin.Context, err error) {
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, dto.Res{ResponseCode: "400", ResponseMessage: err.Error()})
	case errors.Is(err, model.ErrNotConnected):
		c.JSON(http.StatusConflict, dto.Res{ResponseCode: "409", ResponseMessage: "Platform not connected"})
	case errors.Is(err, mongo.ErrNoDocuments):
		c.JSON(http.StatusNotFound, dto.Res{ResponseCode: "404", ResponseMessage: "Not found"})
	default:
		logger.GetLogger().WithField("error", err).Error("Request failed")
		c.JSON(http.StatusInternalServerError, dto.Res{ResponseCode: "500", ResponseMessage: "Internal server error"})
	}
}
