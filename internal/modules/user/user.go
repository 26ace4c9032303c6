package user

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nexhost/core/internal/middleware"
	"github.com/nexhost/core/internal/models"
	"github.com/nexhost/core/internal/pkg/response"
	"gorm.io/gorm"
)

type UpdateRoleDTO struct {
	Role string `json:"role" binding:"required,oneof=super_admin editor viewer"`
}

type userResponse struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	FirstName       string    `json:"firstName"`
	LastName        string    `json:"lastName"`
	ProfileImageURL string    `json:"profileImageUrl"`
	Role            string    `json:"role"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func toResponse(u *models.UserModel) userResponse {
	return userResponse{
		ID: u.ID, Email: u.Email, FirstName: u.FirstName, LastName: u.LastName,
		ProfileImageURL: u.ProfileImageURL, Role: u.Role,
		CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt,
	}
}

type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

func (s *Service) ListAll() ([]models.UserModel, error) {
	var items []models.UserModel
	err := s.db.Order("created_at ASC").Find(&items).Error
	return items, err
}

func (s *Service) UpdateRole(id, role string) (*models.UserModel, error) {
	var u models.UserModel
	if err := s.db.First(&u, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if err := s.db.Model(&u).Update("role", role).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/users")
	g.GET("", h.list)
	g.PUT("/:id/role", h.updateRole)
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.svc.ListAll()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	out := make([]userResponse, len(items))
	for i, u := range items {
		out[i] = toResponse(&u)
	}
	response.OK(c, out)
}

// Role grants are reserved for super admins; editors see 403.
func (h *Handler) updateRole(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	if actor == nil || actor.Role != models.RoleSuperAdmin {
		response.Forbidden(c)
		return
	}
	var dto UpdateRoleDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	u, err := h.svc.UpdateRole(c.Param("id"), dto.Role)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if u == nil {
		response.NotFoundMsg(c, "user not found")
		return
	}
	middleware.StageAudit(c, models.ActionUpdate, "user", u.ID,
		map[string]interface{}{"role": u.Role})
	response.OK(c, toResponse(u))
}
