package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"door_controller/internal/service"
)

// Common response/status constants to avoid magic strings.
const (
	statusOK       = "ok"
	statusAccepted = "accepted"

	errOpenDoor = "failed to open door"
	errLightOn  = "failed to switch light on"
)

// logAndJSONError centralizes error logging and the JSON error response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// respondAccepted answers an actuation request with the current snapshot.
// The action itself completes on the control loop, not on this goroutine.
func (h *Handler) respondAccepted(c *gin.Context, action string) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusAccepted,
		"action": action,
		"state":  h.services.Snapshot(),
	})
}

func deviceErrorCode(err error) int {
	if errors.Is(err, service.ErrBusy) || errors.Is(err, service.ErrNotRunning) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Open the door
// @Tags         device
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "status, action, state"
// @Failure      401  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/v1/door/open [post]
// @Security     BearerAuth
func (h *Handler) openDoor(c *gin.Context) {
	if err := h.services.OpenDoor(c.Request.Context()); err != nil {
		h.logAndJSONError(c, deviceErrorCode(err), errOpenDoor, "portal_open_door_failed", err)
		return
	}
	h.respondAccepted(c, "door_open")
}

// @Summary      Switch the staircase light on
// @Tags         device
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/v1/light/on [post]
// @Security     BearerAuth
func (h *Handler) lightOn(c *gin.Context) {
	if err := h.services.LightOn(c.Request.Context()); err != nil {
		h.logAndJSONError(c, deviceErrorCode(err), errLightOn, "portal_light_on_failed", err)
		return
	}
	h.respondAccepted(c, "light_on")
}

// @Summary      Get system status
// @Tags         device
// @Produce      json
// @Success      200  {object}  models.StatusSnapshot
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/status [get]
// @Security     BearerAuth
func (h *Handler) getStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Snapshot())
}
