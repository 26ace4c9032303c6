package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nexhost/core/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const contextKeyAudit = "audit_entry"

// AuditEntry describes one admin mutation for the activity log.
type AuditEntry struct {
	Action     string
	Resource   string
	ResourceID string
	Details    map[string]interface{}
}

// StageAudit records what a mutation handler did. The Audit middleware
// persists the entry after the handler returns.
func StageAudit(c *gin.Context, action, resource, resourceID string, details map[string]interface{}) {
	c.Set(contextKeyAudit, &AuditEntry{
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		Details:    details,
	})
}

// auditBodyWriter buffers the response so the activity-log row can be
// written before anything reaches the client.
type auditBodyWriter struct {
	gin.ResponseWriter
	body   []byte
	status int
}

func (w *auditBodyWriter) WriteHeader(code int) {
	if code > 0 {
		w.status = code
	}
}

func (w *auditBodyWriter) WriteHeaderNow() {}

func (w *auditBodyWriter) Write(data []byte) (int, error) {
	w.body = append(w.body, data...)
	return len(data), nil
}

func (w *auditBodyWriter) WriteString(s string) (int, error) {
	w.body = append(w.body, s...)
	return len(s), nil
}

func (w *auditBodyWriter) Status() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

func (w *auditBodyWriter) Size() int { return len(w.body) }

func (w *auditBodyWriter) Written() bool { return w.status != 0 || len(w.body) > 0 }

func (w *auditBodyWriter) flush() {
	w.ResponseWriter.WriteHeader(w.Status())
	if len(w.body) > 0 {
		_, _ = w.ResponseWriter.Write(w.body)
	}
}

// Audit persists exactly one activity-log row for every successful admin
// mutation, synchronously, before the buffered response is released. A
// failed audit write turns the whole request into a 500, so no mutation
// can slip through unlogged.
func Audit(db *gorm.DB, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !isMutatingMethod(c.Request.Method) {
			c.Next()
			return
		}

		buffer := &auditBodyWriter{ResponseWriter: c.Writer}
		c.Writer = buffer
		c.Next()
		c.Writer = buffer.ResponseWriter

		status := buffer.Status()
		if status < 200 || status >= 400 {
			buffer.flush()
			return
		}

		entry := stagedAuditEntry(c)
		row := models.ActivityLogModel{
			UserID:     CurrentUserID(c),
			Action:     entry.Action,
			Resource:   entry.Resource,
			ResourceID: entry.ResourceID,
			Details:    entry.Details,
			IPAddress:  c.ClientIP(),
			UserAgent:  c.Request.UserAgent(),
		}
		if err := db.Create(&row).Error; err != nil {
			if log != nil {
				log.Error("audit write failed",
					zap.String("resource", row.Resource),
					zap.String("action", row.Action),
					zap.Error(err),
				)
			}
			buffer.Header().Set("Content-Type", "application/json; charset=utf-8")
			buffer.ResponseWriter.WriteHeader(http.StatusInternalServerError)
			_, _ = buffer.ResponseWriter.Write([]byte(`{"ok":0,"code":500,"message":"internal server error"}`))
			return
		}
		buffer.flush()
	}
}

func stagedAuditEntry(c *gin.Context) *AuditEntry {
	if v, ok := c.Get(contextKeyAudit); ok {
		if entry, ok := v.(*AuditEntry); ok && entry != nil {
			return entry
		}
	}
	// Handlers normally stage their own entry; derive a minimal one from
	// the route so an unlabeled mutation still leaves a trace.
	return &AuditEntry{
		Action:   actionForMethod(c.Request.Method),
		Resource: resourceFromPath(c.Request.URL.Path),
	}
}

func isMutatingMethod(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

func actionForMethod(method string) string {
	switch method {
	case http.MethodPost:
		return models.ActionCreate
	case http.MethodDelete:
		return models.ActionDelete
	default:
		return models.ActionUpdate
	}
}

func resourceFromPath(path string) string {
	const marker = "/admin/"
	idx := strings.Index(path, marker)
	if idx < 0 {
		return "unknown"
	}
	rest := strings.Trim(path[idx+len(marker):], "/")
	if seg, _, ok := strings.Cut(rest, "/"); ok {
		return seg
	}
	return rest
}
