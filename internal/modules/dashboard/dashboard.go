package dashboard

import (
	"github.com/gin-gonic/gin"
	"github.com/nexhost/core/internal/models"
	"github.com/nexhost/core/internal/pkg/response"
	"gorm.io/gorm"
)

type Stats struct {
	Pages          StatPair `json:"pages"`
	Services       StatPair `json:"services"`
	Plans          StatPair `json:"plans"`
	MediaFiles     int64    `json:"mediaFiles"`
	Contacts       Contacts `json:"contacts"`
	NavigationSize int64    `json:"navigationItems"`
	Users          int64    `json:"users"`
}

type StatPair struct {
	Total int64 `json:"total"`
	Live  int64 `json:"live"`
}

type Contacts struct {
	Total int64 `json:"total"`
	New   int64 `json:"new"`
}

type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

func (s *Service) Collect() (*Stats, error) {
	var out Stats
	counts := []struct {
		dst   *int64
		model interface{}
		where []interface{}
	}{
		{&out.Pages.Total, &models.PageModel{}, nil},
		{&out.Pages.Live, &models.PageModel{}, []interface{}{"is_published = ?", true}},
		{&out.Services.Total, &models.ServiceModel{}, nil},
		{&out.Services.Live, &models.ServiceModel{}, []interface{}{"is_active = ?", true}},
		{&out.Plans.Total, &models.ServicePlanModel{}, nil},
		{&out.Plans.Live, &models.ServicePlanModel{}, []interface{}{"is_active = ?", true}},
		{&out.MediaFiles, &models.MediaFileModel{}, nil},
		{&out.Contacts.Total, &models.ContactSubmissionModel{}, nil},
		{&out.Contacts.New, &models.ContactSubmissionModel{}, []interface{}{"status = ?", models.ContactStatusNew}},
		{&out.NavigationSize, &models.NavigationItemModel{}, nil},
		{&out.Users, &models.UserModel{}, nil},
	}
	for _, cnt := range counts {
		tx := s.db.Model(cnt.model)
		if cnt.where != nil {
			tx = tx.Where(cnt.where[0], cnt.where[1:]...)
		}
		if err := tx.Count(cnt.dst).Error; err != nil {
			return nil, err
		}
	}
	return &out, nil
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("/dashboard/stats", h.stats)
}

func (h *Handler) stats(c *gin.Context) {
	stats, err := h.svc.Collect()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, stats)
}
