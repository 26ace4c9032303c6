package navigation

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nexhost/core/internal/middleware"
	"github.com/nexhost/core/internal/models"
	"github.com/nexhost/core/internal/pkg/response"
	"gorm.io/gorm"
)

var (
	ErrUnknownParent = errors.New("parent item not found")
	ErrTooDeep       = errors.New("navigation supports two levels only")
	ErrOwnParent     = errors.New("item cannot be its own parent")
)

type CreateItemDTO struct {
	Label       string `json:"label" binding:"required"`
	Path        string `json:"path"`
	ExternalURL string `json:"externalUrl" binding:"omitempty,url"`
	ParentID    *uint  `json:"parentId"`
	SortOrder   int    `json:"sortOrder"`
	IsVisible   *bool  `json:"isVisible"`
	Icon        string `json:"icon"`
}

type UpdateItemDTO struct {
	Label       *string `json:"label"`
	Path        *string `json:"path"`
	ExternalURL *string `json:"externalUrl" binding:"omitempty,url"`
	ParentID    *uint   `json:"parentId"`
	ClearParent bool    `json:"clearParent"`
	SortOrder   *int    `json:"sortOrder"`
	IsVisible   *bool   `json:"isVisible"`
	Icon        *string `json:"icon"`
}

type itemResponse struct {
	ID          uint           `json:"id"`
	Label       string         `json:"label"`
	Path        string         `json:"path"`
	ExternalURL string         `json:"externalUrl"`
	ParentID    *uint          `json:"parentId"`
	SortOrder   int            `json:"sortOrder"`
	IsVisible   bool           `json:"isVisible"`
	Icon        string         `json:"icon"`
	Children    []itemResponse `json:"children,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

func toResponse(n *models.NavigationItemModel) itemResponse {
	return itemResponse{
		ID: n.ID, Label: n.Label, Path: n.Path, ExternalURL: n.ExternalURL,
		ParentID: n.ParentID, SortOrder: n.SortOrder, IsVisible: n.IsVisible,
		Icon: n.Icon, CreatedAt: n.CreatedAt, UpdatedAt: n.UpdatedAt,
	}
}

// buildTree nests children under their parents. Items are assumed to be
// pre-sorted by sort order.
func buildTree(items []models.NavigationItemModel) []itemResponse {
	children := map[uint][]itemResponse{}
	for _, n := range items {
		if n.ParentID != nil {
			children[*n.ParentID] = append(children[*n.ParentID], toResponse(&n))
		}
	}
	roots := []itemResponse{}
	for _, n := range items {
		if n.ParentID != nil {
			continue
		}
		root := toResponse(&n)
		root.Children = children[n.ID]
		roots = append(roots, root)
	}
	return roots
}

type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

func (s *Service) ListVisible() ([]models.NavigationItemModel, error) {
	var items []models.NavigationItemModel
	err := s.db.Where("is_visible = ?", true).
		Order("sort_order ASC, id ASC").Find(&items).Error
	return items, err
}

func (s *Service) ListAll() ([]models.NavigationItemModel, error) {
	var items []models.NavigationItemModel
	err := s.db.Order("sort_order ASC, id ASC").Find(&items).Error
	return items, err
}

func (s *Service) GetByID(id uint) (*models.NavigationItemModel, error) {
	var n models.NavigationItemModel
	if err := s.db.First(&n, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &n, nil
}

// checkParent enforces the two-level limit: a parent must exist and must
// itself be a root item.
func (s *Service) checkParent(parentID uint) error {
	parent, err := s.GetByID(parentID)
	if err != nil {
		return err
	}
	if parent == nil {
		return ErrUnknownParent
	}
	if parent.ParentID != nil {
		return ErrTooDeep
	}
	return nil
}

func (s *Service) Create(dto *CreateItemDTO) (*models.NavigationItemModel, error) {
	if dto.ParentID != nil {
		if err := s.checkParent(*dto.ParentID); err != nil {
			return nil, err
		}
	}
	n := models.NavigationItemModel{
		Label: dto.Label, Path: dto.Path, ExternalURL: dto.ExternalURL,
		ParentID: dto.ParentID, SortOrder: dto.SortOrder,
		IsVisible: true, Icon: dto.Icon,
	}
	if dto.IsVisible != nil {
		n.IsVisible = *dto.IsVisible
	}
	return &n, s.db.Create(&n).Error
}

func (s *Service) Update(id uint, dto *UpdateItemDTO) (*models.NavigationItemModel, error) {
	n, err := s.GetByID(id)
	if err != nil || n == nil {
		return n, err
	}
	updates := map[string]interface{}{}
	if dto.ParentID != nil {
		if *dto.ParentID == id {
			return nil, ErrOwnParent
		}
		if err := s.checkParent(*dto.ParentID); err != nil {
			return nil, err
		}
		// An item that gains a parent must not have children of its own.
		var count int64
		s.db.Model(&models.NavigationItemModel{}).
			Where("parent_id = ?", id).Count(&count)
		if count > 0 {
			return nil, ErrTooDeep
		}
		updates["parent_id"] = *dto.ParentID
	} else if dto.ClearParent {
		updates["parent_id"] = nil
	}
	if dto.Label != nil {
		updates["label"] = *dto.Label
	}
	if dto.Path != nil {
		updates["path"] = *dto.Path
	}
	if dto.ExternalURL != nil {
		updates["external_url"] = *dto.ExternalURL
	}
	if dto.SortOrder != nil {
		updates["sort_order"] = *dto.SortOrder
	}
	if dto.IsVisible != nil {
		updates["is_visible"] = *dto.IsVisible
	}
	if dto.Icon != nil {
		updates["icon"] = *dto.Icon
	}
	if len(updates) == 0 {
		return n, nil
	}
	if err := s.db.Model(n).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.GetByID(id)
}

// Delete removes an item and promotes its children to root level so the
// menu never loses entries silently.
func (s *Service) Delete(id uint) (bool, error) {
	var deleted bool
	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.NavigationItemModel{}, id)
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected > 0
		if !deleted {
			return nil
		}
		return tx.Model(&models.NavigationItemModel{}).
			Where("parent_id = ?", id).
			Update("parent_id", nil).Error
	})
	return deleted, err
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/navigation", h.listVisible)
}

func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/navigation")
	g.GET("", h.listAll)
	g.POST("", h.create)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.delete)
}

func (h *Handler) listVisible(c *gin.Context) {
	items, err := h.svc.ListVisible()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, buildTree(items))
}

func (h *Handler) listAll(c *gin.Context) {
	items, err := h.svc.ListAll()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	out := make([]itemResponse, len(items))
	for i, n := range items {
		out[i] = toResponse(&n)
	}
	response.OK(c, out)
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateItemDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	n, err := h.svc.Create(&dto)
	if err != nil {
		if errors.Is(err, ErrUnknownParent) || errors.Is(err, ErrTooDeep) {
			response.UnprocessableEntity(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	middleware.StageAudit(c, models.ActionCreate, "navigation_item", fmt.Sprint(n.ID),
		map[string]interface{}{"label": n.Label})
	response.Created(c, toResponse(n))
}

func (h *Handler) update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var dto UpdateItemDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	n, err := h.svc.Update(id, &dto)
	if err != nil {
		if errors.Is(err, ErrUnknownParent) || errors.Is(err, ErrTooDeep) || errors.Is(err, ErrOwnParent) {
			response.UnprocessableEntity(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	if n == nil {
		response.NotFoundMsg(c, "navigation item not found")
		return
	}
	middleware.StageAudit(c, models.ActionUpdate, "navigation_item", fmt.Sprint(n.ID),
		map[string]interface{}{"label": n.Label})
	response.OK(c, toResponse(n))
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
		response.NotFoundMsg(c, "navigation item not found")
		return
	}
	middleware.StageAudit(c, models.ActionDelete, "navigation_item", fmt.Sprint(id), nil)
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
