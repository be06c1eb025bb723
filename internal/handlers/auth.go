package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"door_controller/internal/service"
)

type signInRequest struct {
	Password string `json:"password" binding:"required"`
}

// ProvisionRequest is the provisioning form payload (exported for Swagger).
type ProvisionRequest struct {
	// Wifi network name
	SSID string `json:"ssid" form:"ssid" example:"building-42"`
	// Wifi secret
	Pass string `json:"pass" form:"pass"`
	// Messaging transport credential
	Token string `json:"token" form:"token"`
	// Comma-separated authorized user ids (max 10)
	Users string `json:"users" form:"users" example:"111,222,333"`
	// Portal admin password
	AdminPass string `json:"admin_pass" form:"admin_pass"`
}

// bindOrBadRequest binds JSON or form data into dst, answering 400 on
// failure. Returns false if the request was already handled.
func (h *Handler) bindOrBadRequest(c *gin.Context, dst any) bool {
	if err := c.ShouldBind(dst); err != nil {
		if h.log != nil {
			h.log.Infow("portal_bad_request_body", "err", err)
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

// @Summary      Sign in with the admin password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  signInRequest  true  "Admin password"
// @Success      200   {object}  map[string]string  "token"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /auth/sign-in [post]
func (h *Handler) signIn(c *gin.Context) {
	var input signInRequest
	if ok := h.bindOrBadRequest(c, &input); !ok {
		return
	}

	token, err := h.services.GenerateToken(input.Password)
	if err != nil {
		if h.log != nil {
			h.log.Infow("portal_sign_in_failed", "err", err)
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// @Summary      Save provisioning data
// @Description  Stores network credentials, the transport token, the authorized id list and the admin password. Takes effect after restart.
// @Tags         provisioning
// @Accept       json
// @Produce      json
// @Param        body  body  ProvisionRequest  true  "Provisioning form"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  map[string]string
// @Router       /provision [post]
func (h *Handler) provision(c *gin.Context) {
	var input ProvisionRequest
	if ok := h.bindOrBadRequest(c, &input); !ok {
		return
	}

	err := h.services.Provision(c.Request.Context(), provisionParams(input))
	if err != nil {
		if h.log != nil {
			h.log.Infow("provision_failed", "err", err)
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if h.log != nil {
		h.log.Infow("provision_saved", "ssid", input.SSID)
	}
	c.JSON(http.StatusOK, gin.H{"status": "saved", "note": "restart the controller to apply"})
}

func provisionParams(in ProvisionRequest) service.ProvisionParams {
	return service.ProvisionParams{
		SSID:      in.SSID,
		WifiPass:  in.Pass,
		Token:     in.Token,
		Users:     in.Users,
		AdminPass: in.AdminPass,
	}
}
