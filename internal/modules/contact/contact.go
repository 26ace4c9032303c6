package contact

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nexhost/core/internal/middleware"
	"github.com/nexhost/core/internal/models"
	"github.com/nexhost/core/internal/pkg/pagination"
	"github.com/nexhost/core/internal/pkg/response"
	"gorm.io/gorm"
)

type CreateSubmissionDTO struct {
	Name            string `json:"name"    binding:"required"`
	Email           string `json:"email"   binding:"required,email"`
	Phone           string `json:"phone"`
	Subject         string `json:"subject"`
	Message         string `json:"message" binding:"required"`
	ServiceInterest string `json:"serviceInterest"`
}

type UpdateSubmissionDTO struct {
	Status   *string `json:"status"   binding:"omitempty,oneof=new in_progress resolved closed"`
	Priority *string `json:"priority" binding:"omitempty,oneof=low normal high urgent"`
}

type submissionResponse struct {
	ID              uint      `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	Subject         string    `json:"subject"`
	Message         string    `json:"message"`
	ServiceInterest string    `json:"serviceInterest"`
	Priority        string    `json:"priority"`
	Status          string    `json:"status"`
	IPAddress       string    `json:"ipAddress"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func toResponse(s *models.ContactSubmissionModel) submissionResponse {
	return submissionResponse{
		ID: s.ID, Name: s.Name, Email: s.Email, Phone: s.Phone,
		Subject: s.Subject, Message: s.Message, ServiceInterest: s.ServiceInterest,
		Priority: s.Priority, Status: s.Status, IPAddress: s.IPAddress,
		CreatedAt: s.CreatedAt, UpdatedAt: s.UpdatedAt,
	}
}

type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

func (s *Service) Create(dto *CreateSubmissionDTO, ip string) (*models.ContactSubmissionModel, error) {
	sub := models.ContactSubmissionModel{
		Name: dto.Name, Email: dto.Email, Phone: dto.Phone,
		Subject: dto.Subject, Message: dto.Message,
		ServiceInterest: dto.ServiceInterest,
		Priority:        models.PriorityNormal,
		Status:          models.ContactStatusNew,
		IPAddress:       ip,
	}
	return &sub, s.db.Create(&sub).Error
}

func (s *Service) List(status string, q pagination.Query) ([]models.ContactSubmissionModel, response.Pagination, error) {
	tx := s.db.Model(&models.ContactSubmissionModel{}).Order("created_at DESC")
	if status != "" {
		tx = tx.Where("status = ?", status)
	}
	var items []models.ContactSubmissionModel
	pag, err := pagination.Paginate(tx, q, &items)
	return items, pag, err
}

func (s *Service) GetByID(id uint) (*models.ContactSubmissionModel, error) {
	var sub models.ContactSubmissionModel
	if err := s.db.First(&sub, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

func (s *Service) Update(id uint, dto *UpdateSubmissionDTO) (*models.ContactSubmissionModel, error) {
	sub, err := s.GetByID(id)
	if err != nil || sub == nil {
		return sub, err
	}
	updates := map[string]interface{}{}
	if dto.Status != nil {
		updates["status"] = *dto.Status
	}
	if dto.Priority != nil {
		updates["priority"] = *dto.Priority
	}
	if len(updates) == 0 {
		return sub, nil
	}
	if err := s.db.Model(sub).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.GetByID(id)
}

func (s *Service) Delete(id uint) (bool, error) {
	res := s.db.Delete(&models.ContactSubmissionModel{}, id)
	return res.RowsAffected > 0, res.Error
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.POST("/contact", h.create)
}

func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/contacts")
	g.GET("", h.list)
	g.GET("/:id", h.get)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.delete)
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateSubmissionDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	sub, err := h.svc.Create(&dto, c.ClientIP())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, toResponse(sub))
}

func (h *Handler) list(c *gin.Context) {
	items, pag, err := h.svc.List(c.Query("status"), pagination.FromContext(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	out := make([]submissionResponse, len(items))
	for i, sub := range items {
		out[i] = toResponse(&sub)
	}
	response.Paged(c, out, pag)
}

func (h *Handler) get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	sub, err := h.svc.GetByID(id)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if sub == nil {
		response.NotFoundMsg(c, "submission not found")
		return
	}
	response.OK(c, toResponse(sub))
}

func (h *Handler) update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var dto UpdateSubmissionDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	sub, err := h.svc.Update(id, &dto)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if sub == nil {
		response.NotFoundMsg(c, "submission not found")
		return
	}
	middleware.StageAudit(c, models.ActionUpdate, "contact_submission", fmt.Sprint(sub.ID),
		map[string]interface{}{"status": sub.Status, "priority": sub.Priority})
	response.OK(c, toResponse(sub))
}

func (h *Handler) delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	deleted, err := h.svc.Delete(id)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if !deleted {
		response.NotFoundMsg(c, "submission not found")
		return
	}
	middleware.StageAudit(c, models.ActionDelete, "contact_submission", fmt.Sprint(id), nil)
	response.NoContent(c)
}

func parseID(c *gin.Context) (uint, bool) {
	v, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid id")
		return 0, false
	}
	return uint(v), true
}
