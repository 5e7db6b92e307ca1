package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"servihub/utils"
)

// PreferencesHandler persists dashboard widget layout. This is the injected
// capability replacing ad hoc localStorage access: views read and write
// through it with an explicit lifecycle instead of touching storage directly.
type PreferencesHandler struct {
	Client *redis.Client
}

func NewPreferencesHandler(client *redis.Client) *PreferencesHandler {
	return &PreferencesHandler{Client: client}
}

// GetLayout returns the stored widget layout, or null when none is saved.
func (h *PreferencesHandler) GetLayout(c *gin.Context) {
	data, err := h.Client.Get(c.Request.Context(), utils.PrefsCachePrefix+sessionKey(c)).Result()
	if err == redis.Nil {
		c.JSON(http.StatusOK, gin.H{"layout": nil})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load layout", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"layout": json.RawMessage(data)})
}

// SaveLayout stores the widget layout as opaque JSON.
func (h *PreferencesHandler) SaveLayout(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil || !json.Valid(raw) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "layout must be valid JSON"})
		return
	}

	if err := h.Client.Set(c.Request.Context(), utils.PrefsCachePrefix+sessionKey(c), raw, 0).Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save layout", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Layout saved"})
}
