package service

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nexhost/core/internal/database"
	"github.com/nexhost/core/internal/middleware"
	"github.com/nexhost/core/internal/models"
	"github.com/nexhost/core/internal/pkg/response"
	"gorm.io/gorm"
)

var (
	ErrSlugTaken      = errors.New("slug already exists")
	ErrHasPlans       = errors.New("service still has plans")
	ErrUnknownService = errors.New("service not found")
)

type CreateServiceDTO struct {
	Name        string `json:"name" binding:"required"`
	Slug        string `json:"slug" binding:"required"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
	IsActive    *bool  `json:"isActive"`
	SortOrder   int    `json:"sortOrder"`
}

type UpdateServiceDTO struct {
	Name        *string `json:"name"`
	Slug        *string `json:"slug"`
	Description *string `json:"description"`
	Icon        *string `json:"icon"`
	Color       *string `json:"color"`
	IsActive    *bool   `json:"isActive"`
	SortOrder   *int    `json:"sortOrder"`
}

type CreatePlanDTO struct {
	ServiceID      uint                   `json:"serviceId" binding:"required"`
	Name           string                 `json:"name"      binding:"required"`
	Description    string                 `json:"description"`
	Price          *string                `json:"price"`
	OriginalPrice  *string                `json:"originalPrice"`
	Currency       string                 `json:"currency"`
	BillingCycle   string                 `json:"billingCycle" binding:"omitempty,oneof=monthly yearly one-time"`
	Features       []string               `json:"features"`
	Specifications map[string]interface{} `json:"specifications"`
	IsPopular      *bool                  `json:"isPopular"`
	IsActive       *bool                  `json:"isActive"`
	SortOrder      int                    `json:"sortOrder"`
	Ribbon         string                 `json:"ribbon"`
}

type UpdatePlanDTO struct {
	ServiceID      *uint                  `json:"serviceId"`
	Name           *string                `json:"name"`
	Description    *string                `json:"description"`
	Price          *string                `json:"price"`
	OriginalPrice  *string                `json:"originalPrice"`
	Currency       *string                `json:"currency"`
	BillingCycle   *string                `json:"billingCycle" binding:"omitempty,oneof=monthly yearly one-time"`
	Features       []string               `json:"features"`
	Specifications map[string]interface{} `json:"specifications"`
	IsPopular      *bool                  `json:"isPopular"`
	IsActive       *bool                  `json:"isActive"`
	SortOrder      *int                   `json:"sortOrder"`
	Ribbon         *string                `json:"ribbon"`
}

type planResponse struct {
	ID             uint                   `json:"id"`
	ServiceID      uint                   `json:"serviceId"`
	Name           string                 `json:"name"`
	Description    string                 `json:"description"`
	Price          *string                `json:"price"`
	OriginalPrice  *string                `json:"originalPrice"`
	Currency       string                 `json:"currency"`
	BillingCycle   string                 `json:"billingCycle"`
	Features       []string               `json:"features"`
	Specifications map[string]interface{} `json:"specifications"`
	IsPopular      bool                   `json:"isPopular"`
	IsActive       bool                   `json:"isActive"`
	SortOrder      int                    `json:"sortOrder"`
	Ribbon         string                 `json:"ribbon"`
	CreatedAt      time.Time              `json:"createdAt"`
	UpdatedAt      time.Time              `json:"updatedAt"`
}

type serviceResponse struct {
	ID          uint           `json:"id"`
	Name        string         `json:"name"`
	Slug        string         `json:"slug"`
	Description string         `json:"description"`
	Icon        string         `json:"icon"`
	Color       string         `json:"color"`
	IsActive    bool           `json:"isActive"`
	SortOrder   int            `json:"sortOrder"`
	Plans       []planResponse `json:"plans,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

func toPlanResponse(p *models.ServicePlanModel) planResponse {
	features := []string(p.Features)
	if features == nil {
		features = []string{}
	}
	return planResponse{
		ID: p.ID, ServiceID: p.ServiceID, Name: p.Name, Description: p.Description,
		Price: p.Price, OriginalPrice: p.OriginalPrice,
		Currency: p.Currency, BillingCycle: p.BillingCycle,
		Features: features, Specifications: p.Specifications,
		IsPopular: p.IsPopular, IsActive: p.IsActive,
		SortOrder: p.SortOrder, Ribbon: p.Ribbon,
		CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt,
	}
}

func toResponse(s *models.ServiceModel, plans []models.ServicePlanModel) serviceResponse {
	out := serviceResponse{
		ID: s.ID, Name: s.Name, Slug: s.Slug, Description: s.Description,
		Icon: s.Icon, Color: s.Color, IsActive: s.IsActive, SortOrder: s.SortOrder,
		CreatedAt: s.CreatedAt, UpdatedAt: s.UpdatedAt,
	}
	if plans != nil {
		out.Plans = make([]planResponse, len(plans))
		for i, p := range plans {
			out.Plans[i] = toPlanResponse(&p)
		}
	}
	return out
}

type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

func (s *Service) ListActive() ([]models.ServiceModel, error) {
	var items []models.ServiceModel
	err := s.db.Where("is_active = ?", true).
		Order("sort_order ASC, created_at ASC").Find(&items).Error
	return items, err
}

func (s *Service) GetActiveBySlug(slug string) (*models.ServiceModel, error) {
	var svc models.ServiceModel
	err := s.db.Where("slug = ? AND is_active = ?", slug, true).First(&svc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &svc, nil
}

func (s *Service) ListAll() ([]models.ServiceModel, error) {
	var items []models.ServiceModel
	err := s.db.Order("sort_order ASC, created_at ASC").Find(&items).Error
	return items, err
}

func (s *Service) GetByID(id uint) (*models.ServiceModel, error) {
	var svc models.ServiceModel
	if err := s.db.First(&svc, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &svc, nil
}

func (s *Service) Create(dto *CreateServiceDTO) (*models.ServiceModel, error) {
	var count int64
	s.db.Model(&models.ServiceModel{}).Where("slug = ?", dto.Slug).Count(&count)
	if count > 0 {
		return nil, ErrSlugTaken
	}
	svc := models.ServiceModel{
		Name: dto.Name, Slug: dto.Slug, Description: dto.Description,
		Icon: dto.Icon, Color: dto.Color, IsActive: true, SortOrder: dto.SortOrder,
	}
	if dto.IsActive != nil {
		svc.IsActive = *dto.IsActive
	}
	if err := s.db.Create(&svc).Error; err != nil {
		if database.IsDuplicateEntry(err) {
			return nil, ErrSlugTaken
		}
		return nil, err
	}
	return &svc, nil
}

func (s *Service) Update(id uint, dto *UpdateServiceDTO) (*models.ServiceModel, error) {
	svc, err := s.GetByID(id)
	if err != nil || svc == nil {
		return svc, err
	}
	if dto.Slug != nil && *dto.Slug != svc.Slug {
		var count int64
		s.db.Model(&models.ServiceModel{}).
			Where("slug = ? AND id <> ?", *dto.Slug, id).Count(&count)
		if count > 0 {
			return nil, ErrSlugTaken
		}
	}
	updates := map[string]interface{}{}
	if dto.Name != nil {
		updates["name"] = *dto.Name
	}
	if dto.Slug != nil {
		updates["slug"] = *dto.Slug
	}
	if dto.Description != nil {
		updates["description"] = *dto.Description
	}
	if dto.Icon != nil {
		updates["icon"] = *dto.Icon
	}
	if dto.Color != nil {
		updates["color"] = *dto.Color
	}
	if dto.IsActive != nil {
		updates["is_active"] = *dto.IsActive
	}
	if dto.SortOrder != nil {
		updates["sort_order"] = *dto.SortOrder
	}
	if len(updates) == 0 {
		return svc, nil
	}
	if err := s.db.Model(svc).Updates(updates).Error; err != nil {
		if database.IsDuplicateEntry(err) {
			return nil, ErrSlugTaken
		}
		return nil, err
	}
	return s.GetByID(id)
}

// Delete refuses to remove a service that still has plans. Callers must
// delete or move the plans first.
func (s *Service) Delete(id uint) error {
	svc, err := s.GetByID(id)
	if err != nil {
		return err
	}
	if svc == nil {
		return ErrUnknownService
	}
	var count int64
	if err := s.db.Model(&models.ServicePlanModel{}).
		Where("service_id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrHasPlans
	}
	return s.db.Delete(&models.ServiceModel{}, id).Error
}

func (s *Service) ListPlans(serviceID uint, activeOnly bool) ([]models.ServicePlanModel, error) {
	tx := s.db.Where("service_id = ?", serviceID)
	if activeOnly {
		tx = tx.Where("is_active = ?", true)
	}
	var items []models.ServicePlanModel
	err := tx.Order("sort_order ASC, created_at ASC").Find(&items).Error
	return items, err
}

func (s *Service) ListAllPlans() ([]models.ServicePlanModel, error) {
	var items []models.ServicePlanModel
	err := s.db.Order("service_id ASC, sort_order ASC").Find(&items).Error
	return items, err
}

func (s *Service) GetPlanByID(id uint) (*models.ServicePlanModel, error) {
	var p models.ServicePlanModel
	if err := s.db.First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (s *Service) CreatePlan(dto *CreatePlanDTO) (*models.ServicePlanModel, error) {
	parent, err := s.GetByID(dto.ServiceID)
	if err != nil {
		return nil, err
	}
	if parent == nil {
		return nil, ErrUnknownService
	}
	p := models.ServicePlanModel{
		ServiceID: dto.ServiceID, Name: dto.Name, Description: dto.Description,
		Price: dto.Price, OriginalPrice: dto.OriginalPrice,
		Currency: "INR", BillingCycle: models.BillingMonthly,
		Features: dto.Features, Specifications: dto.Specifications,
		IsActive: true, SortOrder: dto.SortOrder, Ribbon: dto.Ribbon,
	}
	if dto.Currency != "" {
		p.Currency = dto.Currency
	}
	if dto.BillingCycle != "" {
		p.BillingCycle = dto.BillingCycle
	}
	if dto.IsPopular != nil {
		p.IsPopular = *dto.IsPopular
	}
	if dto.IsActive != nil {
		p.IsActive = *dto.IsActive
	}
	if p.Features == nil {
		p.Features = []string{}
	}
	return &p, s.db.Create(&p).Error
}

func (s *Service) UpdatePlan(id uint, dto *UpdatePlanDTO) (*models.ServicePlanModel, error) {
	p, err := s.GetPlanByID(id)
	if err != nil || p == nil {
		return p, err
	}
	if dto.ServiceID != nil && *dto.ServiceID != p.ServiceID {
		parent, err := s.GetByID(*dto.ServiceID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, ErrUnknownService
		}
	}
	updates := map[string]interface{}{}
	if dto.ServiceID != nil {
		updates["service_id"] = *dto.ServiceID
	}
	if dto.Name != nil {
		updates["name"] = *dto.Name
	}
	if dto.Description != nil {
		updates["description"] = *dto.Description
	}
	if dto.Price != nil {
		updates["price"] = *dto.Price
	}
	if dto.OriginalPrice != nil {
		updates["original_price"] = *dto.OriginalPrice
	}
	if dto.Currency != nil {
		updates["currency"] = *dto.Currency
	}
	if dto.BillingCycle != nil {
		updates["billing_cycle"] = *dto.BillingCycle
	}
	if dto.Features != nil {
		updates["features"] = models.StringArray(dto.Features)
	}
	if dto.Specifications != nil {
		updates["specifications"] = dto.Specifications
	}
	if dto.IsPopular != nil {
		updates["is_popular"] = *dto.IsPopular
	}
	if dto.IsActive != nil {
		updates["is_active"] = *dto.IsActive
	}
	if dto.SortOrder != nil {
		updates["sort_order"] = *dto.SortOrder
	}
	if dto.Ribbon != nil {
		updates["ribbon"] = *dto.Ribbon
	}
	if len(updates) == 0 {
		return p, nil
	}
	if err := s.db.Model(p).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.GetPlanByID(id)
}

func (s *Service) DeletePlan(id uint) (bool, error) {
	res := s.db.Delete(&models.ServicePlanModel{}, id)
	return res.RowsAffected > 0, res.Error
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/services")
	g.GET("", h.listActive)
	g.GET("/:slug", h.getBySlug)
	g.GET("/:slug/plans", h.listPlansBySlug)
}

func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/services")
	g.GET("", h.listAll)
	g.GET("/:id", h.get)
	g.GET("/:id/plans", h.listPlansByID)
	g.POST("", h.create)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.delete)

	p := rg.Group("/service-plans")
	p.GET("", h.listAllPlans)
	p.GET("/:id", h.getPlan)
	p.POST("", h.createPlan)
	p.PUT("/:id", h.updatePlan)
	p.DELETE("/:id", h.deletePlan)
}

func (h *Handler) listActive(c *gin.Context) {
	items, err := h.svc.ListActive()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	out := make([]serviceResponse, len(items))
	for i, svc := range items {
		out[i] = toResponse(&svc, nil)
	}
	response.OK(c, out)
}

func (h *Handler) getBySlug(c *gin.Context) {
	svc, err := h.svc.GetActiveBySlug(c.Param("slug"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if svc == nil {
		response.NotFoundMsg(c, "service not found")
		return
	}
	plans, err := h.svc.ListPlans(svc.ID, true)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, toResponse(svc, plans))
}

func (h *Handler) listPlansBySlug(c *gin.Context) {
	svc, err := h.svc.GetActiveBySlug(c.Param("slug"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if svc == nil {
		response.NotFoundMsg(c, "service not found")
		return
	}
	plans, err := h.svc.ListPlans(svc.ID, true)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	out := make([]planResponse, len(plans))
	for i, p := range plans {
		out[i] = toPlanResponse(&p)
	}
	response.OK(c, out)
}

func (h *Handler) listAll(c *gin.Context) {
	items, err := h.svc.ListAll()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	out := make([]serviceResponse, len(items))
	for i, svc := range items {
		out[i] = toResponse(&svc, nil)
	}
	response.OK(c, out)
}

func (h *Handler) get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	svc, err := h.svc.GetByID(id)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if svc == nil {
		response.NotFoundMsg(c, "service not found")
		return
	}
	plans, err := h.svc.ListPlans(svc.ID, false)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, toResponse(svc, plans))
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateServiceDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	svc, err := h.svc.Create(&dto)
	if err != nil {
		if errors.Is(err, ErrSlugTaken) {
			response.Conflict(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	middleware.StageAudit(c, models.ActionCreate, "service", fmt.Sprint(svc.ID),
		map[string]interface{}{"name": svc.Name, "slug": svc.Slug})
	response.Created(c, toResponse(svc, nil))
}

func (h *Handler) update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var dto UpdateServiceDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	svc, err := h.svc.Update(id, &dto)
	if err != nil {
		if errors.Is(err, ErrSlugTaken) {
			response.Conflict(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	if svc == nil {
		response.NotFoundMsg(c, "service not found")
		return
	}
	middleware.StageAudit(c, models.ActionUpdate, "service", fmt.Sprint(svc.ID),
		map[string]interface{}{"name": svc.Name, "slug": svc.Slug})
	response.OK(c, toResponse(svc, nil))
}

func (h *Handler) delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(id); err != nil {
		switch {
		case errors.Is(err, ErrUnknownService):
			response.NotFoundMsg(c, "service not found")
		case errors.Is(err, ErrHasPlans):
			response.Conflict(c, "service has plans; delete them first")
		default:
			response.InternalError(c, err)
		}
		return
	}
	middleware.StageAudit(c, models.ActionDelete, "service", fmt.Sprint(id), nil)
	response.NoContent(c)
}

func (h *Handler) listPlansByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	svc, err := h.svc.GetByID(id)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if svc == nil {
		response.NotFoundMsg(c, "service not found")
		return
	}
	plans, err := h.svc.ListPlans(id, false)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	out := make([]planResponse, len(plans))
	for i, p := range plans {
		out[i] = toPlanResponse(&p)
	}
	response.OK(c, out)
}

func (h *Handler) listAllPlans(c *gin.Context) {
	items, err := h.svc.ListAllPlans()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	out := make([]planResponse, len(items))
	for i, p := range items {
		out[i] = toPlanResponse(&p)
	}
	response.OK(c, out)
}

func (h *Handler) getPlan(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	p, err := h.svc.GetPlanByID(id)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if p == nil {
		response.NotFoundMsg(c, "plan not found")
		return
	}
	response.OK(c, toPlanResponse(p))
}

func (h *Handler) createPlan(c *gin.Context) {
	var dto CreatePlanDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	p, err := h.svc.CreatePlan(&dto)
	if err != nil {
		if errors.Is(err, ErrUnknownService) {
			response.UnprocessableEntity(c, "unknown serviceId")
			return
		}
		response.InternalError(c, err)
		return
	}
	middleware.StageAudit(c, models.ActionCreate, "service_plan", fmt.Sprint(p.ID),
		map[string]interface{}{"name": p.Name, "serviceId": p.ServiceID})
	response.Created(c, toPlanResponse(p))
}

func (h *Handler) updatePlan(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var dto UpdatePlanDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	p, err := h.svc.UpdatePlan(id, &dto)
	if err != nil {
		if errors.Is(err, ErrUnknownService) {
			response.UnprocessableEntity(c, "unknown serviceId")
			return
		}
		response.InternalError(c, err)
		return
	}
	if p == nil {
		response.NotFoundMsg(c, "plan not found")
		return
	}
	middleware.StageAudit(c, models.ActionUpdate, "service_plan", fmt.Sprint(p.ID),
		map[string]interface{}{"name": p.Name, "serviceId": p.ServiceID})
	response.OK(c, toPlanResponse(p))
}

func (h *Handler) deletePlan(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	deleted, err := h.svc.DeletePlan(id)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if !deleted {
		response.NotFoundMsg(c, "plan not found")
		return
	}
	middleware.StageAudit(c, models.ActionDelete, "service_plan", fmt.Sprint(id), nil)
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
