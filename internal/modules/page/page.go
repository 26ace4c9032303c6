package page

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nexhost/core/internal/database"
	"github.com/nexhost/core/internal/middleware"
	"github.com/nexhost/core/internal/models"
	"github.com/nexhost/core/internal/pkg/markdown"
	"github.com/nexhost/core/internal/pkg/response"
	"gorm.io/gorm"
)

var ErrSlugTaken = errors.New("slug already exists")

type CreatePageDTO struct {
	Title           string                  `json:"title" binding:"required"`
	Slug            string                  `json:"slug"  binding:"required"`
	Content         []models.ContentSection `json:"content"`
	MetaTitle       string                  `json:"metaTitle"`
	MetaDescription string                  `json:"metaDescription"`
	MetaKeywords    string                  `json:"metaKeywords"`
	OGImage         string                  `json:"ogImage"`
	IsPublished     *bool                   `json:"isPublished"`
	LayoutType      string                  `json:"layoutType" binding:"omitempty,oneof=default cards pricing grid"`
	SortOrder       int                     `json:"sortOrder"`
}

type UpdatePageDTO struct {
	Title           *string                 `json:"title"`
	Slug            *string                 `json:"slug"`
	Content         []models.ContentSection `json:"content"`
	MetaTitle       *string                 `json:"metaTitle"`
	MetaDescription *string                 `json:"metaDescription"`
	MetaKeywords    *string                 `json:"metaKeywords"`
	OGImage         *string                 `json:"ogImage"`
	IsPublished     *bool                   `json:"isPublished"`
	LayoutType      *string                 `json:"layoutType" binding:"omitempty,oneof=default cards pricing grid"`
	SortOrder       *int                    `json:"sortOrder"`
}

type pageResponse struct {
	ID              uint                    `json:"id"`
	Title           string                  `json:"title"`
	Slug            string                  `json:"slug"`
	Content         []models.ContentSection `json:"content"`
	MetaTitle       string                  `json:"metaTitle"`
	MetaDescription string                  `json:"metaDescription"`
	MetaKeywords    string                  `json:"metaKeywords"`
	OGImage         string                  `json:"ogImage"`
	IsPublished     bool                    `json:"isPublished"`
	LayoutType      string                  `json:"layoutType"`
	SortOrder       int                     `json:"sortOrder"`
	CreatedBy       string                  `json:"createdBy"`
	CreatedAt       time.Time               `json:"createdAt"`
	UpdatedAt       time.Time               `json:"updatedAt"`
}

func toResponse(p *models.PageModel, rendered bool) pageResponse {
	content := p.Content
	if content == nil {
		content = []models.ContentSection{}
	}
	if rendered {
		content = renderSections(content)
	}
	return pageResponse{
		ID: p.ID, Title: p.Title, Slug: p.Slug, Content: content,
		MetaTitle: p.MetaTitle, MetaDescription: p.MetaDescription,
		MetaKeywords: p.MetaKeywords, OGImage: p.OGImage,
		IsPublished: p.IsPublished, LayoutType: p.LayoutType,
		SortOrder: p.SortOrder, CreatedBy: p.CreatedBy,
		CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt,
	}
}

// renderSections converts markdown sections to HTML for public reads.
// Admin reads keep the raw source for editing.
func renderSections(sections []models.ContentSection) []models.ContentSection {
	out := make([]models.ContentSection, len(sections))
	for i, sec := range sections {
		out[i] = sec
		if sec.Type != "markdown" {
			continue
		}
		src, _ := sec.Content["markdown"].(string)
		if src == "" {
			continue
		}
		content := make(map[string]interface{}, len(sec.Content)+1)
		for k, v := range sec.Content {
			content[k] = v
		}
		content["html"] = markdown.Render(src)
		out[i].Content = content
	}
	return out
}

type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

func (s *Service) ListPublished() ([]models.PageModel, error) {
	var items []models.PageModel
	err := s.db.Where("is_published = ?", true).
		Order("sort_order ASC, updated_at DESC").Find(&items).Error
	return items, err
}

func (s *Service) GetPublishedBySlug(slug string) (*models.PageModel, error) {
	var p models.PageModel
	err := s.db.Where("slug = ? AND is_published = ?", slug, true).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (s *Service) ListAll() ([]models.PageModel, error) {
	var items []models.PageModel
	err := s.db.Order("sort_order ASC, updated_at DESC").Find(&items).Error
	return items, err
}

func (s *Service) GetByID(id uint) (*models.PageModel, error) {
	var p models.PageModel
	if err := s.db.First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (s *Service) Create(dto *CreatePageDTO, createdBy string) (*models.PageModel, error) {
	var count int64
	s.db.Model(&models.PageModel{}).Where("slug = ?", dto.Slug).Count(&count)
	if count > 0 {
		return nil, ErrSlugTaken
	}
	p := models.PageModel{
		Title: dto.Title, Slug: dto.Slug, Content: dto.Content,
		MetaTitle: dto.MetaTitle, MetaDescription: dto.MetaDescription,
		MetaKeywords: dto.MetaKeywords, OGImage: dto.OGImage,
		SortOrder: dto.SortOrder, CreatedBy: createdBy,
	}
	if dto.IsPublished != nil {
		p.IsPublished = *dto.IsPublished
	}
	if dto.LayoutType != "" {
		p.LayoutType = dto.LayoutType
	} else {
		p.LayoutType = "default"
	}
	if err := s.db.Create(&p).Error; err != nil {
		if database.IsDuplicateEntry(err) {
			return nil, ErrSlugTaken
		}
		return nil, err
	}
	return &p, nil
}

func (s *Service) Update(id uint, dto *UpdatePageDTO) (*models.PageModel, error) {
	p, err := s.GetByID(id)
	if err != nil || p == nil {
		return p, err
	}
	if dto.Slug != nil && *dto.Slug != p.Slug {
		var count int64
		s.db.Model(&models.PageModel{}).
			Where("slug = ? AND id <> ?", *dto.Slug, id).Count(&count)
		if count > 0 {
			return nil, ErrSlugTaken
		}
	}
	updates := map[string]interface{}{}
	if dto.Title != nil {
		updates["title"] = *dto.Title
	}
	if dto.Slug != nil {
		updates["slug"] = *dto.Slug
	}
	if dto.Content != nil {
		updates["content"] = dto.Content
	}
	if dto.MetaTitle != nil {
		updates["meta_title"] = *dto.MetaTitle
	}
	if dto.MetaDescription != nil {
		updates["meta_description"] = *dto.MetaDescription
	}
	if dto.MetaKeywords != nil {
		updates["meta_keywords"] = *dto.MetaKeywords
	}
	if dto.OGImage != nil {
		updates["og_image"] = *dto.OGImage
	}
	if dto.IsPublished != nil {
		updates["is_published"] = *dto.IsPublished
	}
	if dto.LayoutType != nil {
		updates["layout_type"] = *dto.LayoutType
	}
	if dto.SortOrder != nil {
		updates["sort_order"] = *dto.SortOrder
	}
	if len(updates) == 0 {
		return p, nil
	}
	if err := s.db.Model(p).Updates(updates).Error; err != nil {
		if database.IsDuplicateEntry(err) {
			return nil, ErrSlugTaken
		}
		return nil, err
	}
	return s.GetByID(id)
}

func (s *Service) Delete(id uint) (bool, error) {
	res := s.db.Delete(&models.PageModel{}, id)
	return res.RowsAffected > 0, res.Error
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/pages")
	g.GET("", h.listPublished)
	g.GET("/:slug", h.getBySlug)
}

func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/pages")
	g.GET("", h.listAll)
	g.GET("/:id", h.get)
	g.POST("", h.create)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.delete)
}

func (h *Handler) listPublished(c *gin.Context) {
	items, err := h.svc.ListPublished()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	out := make([]pageResponse, len(items))
	for i, p := range items {
		out[i] = toResponse(&p, true)
	}
	response.OK(c, out)
}

func (h *Handler) getBySlug(c *gin.Context) {
	p, err := h.svc.GetPublishedBySlug(c.Param("slug"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if p == nil {
		response.NotFoundMsg(c, "page not found")
		return
	}
	response.OK(c, toResponse(p, true))
}

func (h *Handler) listAll(c *gin.Context) {
	items, err := h.svc.ListAll()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	out := make([]pageResponse, len(items))
	for i, p := range items {
		out[i] = toResponse(&p, false)
	}
	response.OK(c, out)
}

func (h *Handler) get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	p, err := h.svc.GetByID(id)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if p == nil {
		response.NotFoundMsg(c, "page not found")
		return
	}
	response.OK(c, toResponse(p, false))
}

func (h *Handler) create(c *gin.Context) {
	var dto CreatePageDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	p, err := h.svc.Create(&dto, middleware.CurrentUserID(c))
	if err != nil {
		if errors.Is(err, ErrSlugTaken) {
			response.Conflict(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	middleware.StageAudit(c, models.ActionCreate, "page", fmt.Sprint(p.ID),
		map[string]interface{}{"title": p.Title, "slug": p.Slug})
	response.Created(c, toResponse(p, false))
}

func (h *Handler) update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var dto UpdatePageDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	p, err := h.svc.Update(id, &dto)
	if err != nil {
		if errors.Is(err, ErrSlugTaken) {
			response.Conflict(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	if p == nil {
		response.NotFoundMsg(c, "page not found")
		return
	}
	middleware.StageAudit(c, models.ActionUpdate, "page", fmt.Sprint(p.ID),
		map[string]interface{}{"title": p.Title, "slug": p.Slug})
	response.OK(c, toResponse(p, false))
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
		response.NotFoundMsg(c, "page not found")
		return
	}
	middleware.StageAudit(c, models.ActionDelete, "page", fmt.Sprint(id), nil)
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
