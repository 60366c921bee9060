package response

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/kaizen-portal-api/internal/models"
	appErrors "github.com/noah-isme/kaizen-portal-api/pkg/errors"
	"github.com/noah-isme/kaizen-portal-api/pkg/middleware/requestid"
)

const (
	metaContextKey  = "response_meta"
	startContextKey = "response_started_at"
)

// Envelope is the JSON body shared by every API response.
type Envelope struct {
	Data       interface{}            `json:"data,omitempty"`
	Error      *appErrors.Error       `json:"error,omitempty"`
	Pagination *models.Pagination     `json:"pagination,omitempty"`
	Meta       map[string]interface{} `json:"meta,omitempty"`
}

// Begin records the request start; envelopes written afterwards carry processing_time_ms.
func Begin(c *gin.Context) {
	c.Set(startContextKey, time.Now())
}

// SetMeta attaches a key to the meta block of the envelope written for this request.
func SetMeta(c *gin.Context, key string, value interface{}) {
	if c == nil {
		return
	}
	meta, _ := c.Get(metaContextKey)
	typed, ok := meta.(map[string]interface{})
	if !ok {
		typed = map[string]interface{}{}
		c.Set(metaContextKey, typed)
	}
	typed[key] = value
}

// Meta returns a copy of the meta collected so far, including timing when Begin ran.
func Meta(c *gin.Context) map[string]interface{} {
	if c == nil {
		return nil
	}
	out := map[string]interface{}{}
	if stored, ok := c.Get(metaContextKey); ok {
		if typed, ok := stored.(map[string]interface{}); ok {
			for k, v := range typed {
				out[k] = v
			}
		}
	}
	if started, ok := c.Get(startContextKey); ok {
		if at, ok := started.(time.Time); ok {
			out["processing_time_ms"] = time.Since(at).Milliseconds()
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// JSON writes a success envelope.
func JSON(c *gin.Context, status int, data interface{}, pagination *models.Pagination) {
	noStore(c)
	c.JSON(status, Envelope{Data: data, Pagination: pagination, Meta: Meta(c)})
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, data interface{}) {
	JSON(c, http.StatusCreated, data, nil)
}

// Accepted responds with HTTP 202 for work handed to a background worker.
func Accepted(c *gin.Context, data interface{}) {
	JSON(c, http.StatusAccepted, data, nil)
}

// Error converts err to the public error shape. Unknown errors surface as INTERNAL_ERROR
// and the request id is echoed so the log line can be found.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	noStore(c)
	var meta map[string]interface{}
	if id := requestid.Value(c); id != "" {
		meta = map[string]interface{}{"request_id": id}
	}
	c.JSON(appErr.Status, Envelope{Error: appErr, Meta: meta})
}

// Attachment sets Content-Disposition for a generated file; inline lets browsers preview it.
func Attachment(c *gin.Context, filename string, inline bool) {
	disposition := "attachment"
	if inline {
		disposition = "inline"
	}
	c.Header("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, filename))
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
}
