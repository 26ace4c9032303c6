package activity

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nexhost/core/internal/models"
	"github.com/nexhost/core/internal/pkg/response"
	"gorm.io/gorm"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

type logResponse struct {
	ID         uint                   `json:"id"`
	UserID     string                 `json:"userId"`
	Action     string                 `json:"action"`
	Resource   string                 `json:"resource"`
	ResourceID string                 `json:"resourceId"`
	Details    map[string]interface{} `json:"details"`
	IPAddress  string                 `json:"ipAddress"`
	UserAgent  string                 `json:"userAgent"`
	CreatedAt  time.Time              `json:"createdAt"`
}

func toResponse(l *models.ActivityLogModel) logResponse {
	return logResponse{
		ID: l.ID, UserID: l.UserID, Action: l.Action,
		Resource: l.Resource, ResourceID: l.ResourceID, Details: l.Details,
		IPAddress: l.IPAddress, UserAgent: l.UserAgent, CreatedAt: l.CreatedAt,
	}
}

type Query struct {
	Limit    int
	Resource string
	Action   string
	UserID   string
}

type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

func (s *Service) List(q Query) ([]models.ActivityLogModel, error) {
	if q.Limit <= 0 || q.Limit > maxLimit {
		q.Limit = defaultLimit
	}
	tx := s.db.Order("created_at DESC, id DESC").Limit(q.Limit)
	if q.Resource != "" {
		tx = tx.Where("resource = ?", q.Resource)
	}
	if q.Action != "" {
		tx = tx.Where("action = ?", q.Action)
	}
	if q.UserID != "" {
		tx = tx.Where("user_id = ?", q.UserID)
	}
	var items []models.ActivityLogModel
	err := tx.Find(&items).Error
	return items, err
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("/activity-logs", h.list)
}

func (h *Handler) list(c *gin.Context) {
	q := Query{
		Resource: c.Query("resource"),
		Action:   c.Query("action"),
		UserID:   c.Query("userId"),
	}
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			q.Limit = v
		}
	}
	items, err := h.svc.List(q)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	out := make([]logResponse, len(items))
	for i, l := range items {
		out[i] = toResponse(&l)
	}
	response.OK(c, out)
}
