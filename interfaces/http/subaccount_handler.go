package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"channelhub/domain/dto"
	"channelhub/usecase"
)

type ISubAccountHandler interface {
	List(c *gin.Context)
	Toggle(c *gin.Context)
	ListWithData(c *gin.Context)
}

type SubAccountHandler struct {
	subAccountUsecase usecase.ISubAccountUsecase
}

func NewSubAccountHandler(subAccountUsecase usecase.ISubAccountUsecase) ISubAccountHandler {
	return &SubAccountHandler{subAccountUsecase: subAccountUsecase}
}

func (h *SubAccountHandler) List(c *gin.Context) {
	userID := c.GetString("user_id")
	platform := c.Param("platform")

	subs, err := h.subAccountUsecase.List(c.Request.Context(), userID, platform)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Res{ResponseCode: "200", ResponseMessage: "OK", Data: subs})
}

type reqToggle struct {
	Connected bool `json:"connected"`
}

func (h *SubAccountHandler) Toggle(c *gin.Context) {
	userID := c.GetString("user_id")
	platform := c.Param("platform")
	subAccountID := c.Param("subAccountId")

	var req reqToggle
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Res{ResponseCode: "400", ResponseMessage: "connected flag is required"})
		return
	}

	sub, err := h.subAccountUsecase.Toggle(c.Request.Context(), userID, platform, subAccountID, req.Connected)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Res{ResponseCode: "200", ResponseMessage: "OK", Data: sub})
}

// ListWithData fans out live insight fetches; individual account failures
// surface as stale entries rather than an error.
func (h *SubAccountHandler) ListWithData(c *gin.Context) {
	userID := c.GetString("user_id")
	platform := c.Param("platform")

	views, err := h.subAccountUsecase.ListWithData(c.Request.Context(), userID, platform)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Res{ResponseCode: "200", ResponseMessage: "OK", Data: views})
}
