package setting

import (
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nexhost/core/internal/database"
	"github.com/nexhost/core/internal/middleware"
	"github.com/nexhost/core/internal/models"
	"github.com/nexhost/core/internal/pkg/response"
	"gorm.io/gorm"
)

var ErrKeyTaken = errors.New("key already exists")

type UpsertSettingDTO struct {
	Value       json.RawMessage `json:"value" binding:"required"`
	Type        string          `json:"type"  binding:"omitempty,oneof=string number boolean object array"`
	Description string          `json:"description"`
	IsPublic    *bool           `json:"isPublic"`
}

type settingResponse struct {
	ID          uint        `json:"id"`
	Key         string      `json:"key"`
	Value       interface{} `json:"value"`
	Type        string      `json:"type"`
	Description string      `json:"description"`
	IsPublic    bool        `json:"isPublic"`
	UpdatedAt   time.Time   `json:"updatedAt"`
	UpdatedBy   string      `json:"updatedBy"`
}

func toResponse(s *models.SiteSettingModel) settingResponse {
	return settingResponse{
		ID: s.ID, Key: s.Key, Value: CoerceValue(s.Value, s.Type),
		Type: s.Type, Description: s.Description, IsPublic: s.IsPublic,
		UpdatedAt: s.UpdatedAt, UpdatedBy: s.UpdatedBy,
	}
}

// CoerceValue decodes a stored JSON value and bends it toward the
// setting's declared type. Values that cannot be coerced come back as
// decoded, so a mistyped row degrades instead of erroring.
func CoerceValue(raw models.JSONValue, typ string) interface{} {
	var v interface{}
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	switch typ {
	case models.SettingTypeString:
		switch t := v.(type) {
		case string:
			return t
		case float64:
			return strconv.FormatFloat(t, 'f', -1, 64)
		case bool:
			return strconv.FormatBool(t)
		default:
			return string(raw)
		}
	case models.SettingTypeNumber:
		switch t := v.(type) {
		case float64:
			return t
		case string:
			if f, err := strconv.ParseFloat(t, 64); err == nil {
				return f
			}
		}
		return v
	case models.SettingTypeBoolean:
		switch t := v.(type) {
		case bool:
			return t
		case string:
			if b, err := strconv.ParseBool(t); err == nil {
				return b
			}
		}
		return v
	default: // object, array, unknown
		return v
	}
}

type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

// PublicMap returns the public settings as a key/value map. Private
// settings never leave the admin surface.
func (s *Service) PublicMap() (map[string]interface{}, error) {
	var items []models.SiteSettingModel
	if err := s.db.Where("is_public = ?", true).Order("`key` ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	out := make(map[string]interface{}, len(items))
	for _, item := range items {
		out[item.Key] = CoerceValue(item.Value, item.Type)
	}
	return out, nil
}

func (s *Service) ListAll() ([]models.SiteSettingModel, error) {
	var items []models.SiteSettingModel
	err := s.db.Order("`key` ASC").Find(&items).Error
	return items, err
}

func (s *Service) GetByKey(key string) (*models.SiteSettingModel, error) {
	var item models.SiteSettingModel
	if err := s.db.Where("`key` = ?", key).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// Upsert creates the setting or overwrites an existing row with the same
// key.
func (s *Service) Upsert(key string, dto *UpsertSettingDTO, updatedBy string) (*models.SiteSettingModel, error) {
	existing, err := s.GetByKey(key)
	if err != nil {
		return nil, err
	}
	typ := dto.Type
	if typ == "" {
		typ = models.SettingTypeString
	}
	if existing == nil {
		item := models.SiteSettingModel{
			Key: key, Value: models.JSONValue(dto.Value), Type: typ,
			Description: dto.Description, UpdatedBy: updatedBy,
		}
		if dto.IsPublic != nil {
			item.IsPublic = *dto.IsPublic
		}
		if err := s.db.Create(&item).Error; err != nil {
			if database.IsDuplicateEntry(err) {
				return nil, ErrKeyTaken
			}
			return nil, err
		}
		return &item, nil
	}
	updates := map[string]interface{}{
		"value":      models.JSONValue(dto.Value),
		"type":       typ,
		"updated_by": updatedBy,
	}
	if dto.Description != "" {
		updates["description"] = dto.Description
	}
	if dto.IsPublic != nil {
		updates["is_public"] = *dto.IsPublic
	}
	if err := s.db.Model(existing).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.GetByKey(key)
}

func (s *Service) Delete(key string) (bool, error) {
	res := s.db.Where("`key` = ?", key).Delete(&models.SiteSettingModel{})
	return res.RowsAffected > 0, res.Error
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/settings/public", h.publicMap)
}

func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/settings")
	g.GET("", h.listAll)
	g.GET("/:key", h.get)
	g.PUT("/:key", h.upsert)
	g.DELETE("/:key", h.delete)
}

func (h *Handler) publicMap(c *gin.Context) {
	out, err := h.svc.PublicMap()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, out)
}

func (h *Handler) listAll(c *gin.Context) {
	items, err := h.svc.ListAll()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	out := make([]settingResponse, len(items))
	for i, item := range items {
		out[i] = toResponse(&item)
	}
	response.OK(c, out)
}

func (h *Handler) get(c *gin.Context) {
	item, err := h.svc.GetByKey(c.Param("key"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if item == nil {
		response.NotFoundMsg(c, "setting not found")
		return
	}
	response.OK(c, toResponse(item))
}

func (h *Handler) upsert(c *gin.Context) {
	var dto UpsertSettingDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	item, err := h.svc.Upsert(c.Param("key"), &dto, middleware.CurrentUserID(c))
	if err != nil {
		if errors.Is(err, ErrKeyTaken) {
			response.Conflict(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	middleware.StageAudit(c, models.ActionUpdate, "site_setting", item.Key,
		map[string]interface{}{"key": item.Key, "type": item.Type})
	response.OK(c, toResponse(item))
}

func (h *Handler) delete(c *gin.Context) {
	key := c.Param("key")
	deleted, err := h.svc.Delete(key)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if !deleted {
		response.NotFoundMsg(c, "setting not found")
		return
	}
	middleware.StageAudit(c, models.ActionDelete, "site_setting", key, nil)
	response.NoContent(c)
}
