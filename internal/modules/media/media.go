package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nexhost/core/internal/middleware"
	"github.com/nexhost/core/internal/models"
	"github.com/nexhost/core/internal/pkg/response"
	"github.com/nexhost/core/internal/pkg/storage"
	"gorm.io/gorm"
)

var (
	ErrTooLarge        = errors.New("file exceeds the upload size limit")
	ErrUnsupportedType = errors.New("unsupported file type")
)

var allowedMimeTypes = map[string]string{
	"image/jpeg":    ".jpg",
	"image/png":     ".png",
	"image/gif":     ".gif",
	"image/webp":    ".webp",
	"image/svg+xml": ".svg",
	"video/mp4":     ".mp4",
}

type UpdateMediaDTO struct {
	Alt     *string  `json:"alt"`
	Caption *string  `json:"caption"`
	Tags    []string `json:"tags"`
}

type mediaResponse struct {
	ID           uint      `json:"id"`
	Filename     string    `json:"filename"`
	OriginalName string    `json:"originalName"`
	MimeType     string    `json:"mimeType"`
	Size         int64     `json:"size"`
	URL          string    `json:"url"`
	Alt          string    `json:"alt"`
	Caption      string    `json:"caption"`
	Tags         []string  `json:"tags"`
	UploadedBy   string    `json:"uploadedBy"`
	CreatedAt    time.Time `json:"createdAt"`
}

func toResponse(m *models.MediaFileModel) mediaResponse {
	tags := []string(m.Tags)
	if tags == nil {
		tags = []string{}
	}
	return mediaResponse{
		ID: m.ID, Filename: m.Filename, OriginalName: m.OriginalName,
		MimeType: m.MimeType, Size: m.Size, URL: m.URL,
		Alt: m.Alt, Caption: m.Caption, Tags: tags,
		UploadedBy: m.UploadedBy, CreatedAt: m.CreatedAt,
	}
}

type Service struct {
	db       *gorm.DB
	provider storage.Provider
	maxBytes int64
}

func NewService(db *gorm.DB, provider storage.Provider, maxBytes int64) *Service {
	return &Service{db: db, provider: provider, maxBytes: maxBytes}
}

func (s *Service) List(mimePrefix string) ([]models.MediaFileModel, error) {
	tx := s.db.Order("created_at DESC")
	if mimePrefix != "" {
		tx = tx.Where("mime_type LIKE ?", mimePrefix+"%")
	}
	var items []models.MediaFileModel
	err := tx.Find(&items).Error
	return items, err
}

func (s *Service) GetByID(id uint) (*models.MediaFileModel, error) {
	var m models.MediaFileModel
	if err := s.db.First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

// Upload stores the payload through the configured provider and records
// the file. The stored name is random, keeping the original only as
// display metadata.
func (s *Service) Upload(ctx context.Context, originalName, contentType string, payload []byte, alt, caption string, tags []string, uploadedBy string) (*models.MediaFileModel, error) {
	if s.maxBytes > 0 && int64(len(payload)) > s.maxBytes {
		return nil, ErrTooLarge
	}
	ext, ok := allowedMimeTypes[normalizeContentType(contentType)]
	if !ok {
		return nil, ErrUnsupportedType
	}
	filename := buildFileName(ext)
	url, err := s.provider.Put(ctx, filename, payload, contentType)
	if err != nil {
		return nil, err
	}
	m := models.MediaFileModel{
		Filename: filename, OriginalName: originalName,
		MimeType: normalizeContentType(contentType), Size: int64(len(payload)),
		Path: filename, URL: url,
		Alt: alt, Caption: caption, Tags: tags, UploadedBy: uploadedBy,
	}
	if err := s.db.Create(&m).Error; err != nil {
		// Keep storage consistent with the table.
		_ = s.provider.Remove(ctx, filename)
		return nil, err
	}
	return &m, nil
}

func (s *Service) Update(id uint, dto *UpdateMediaDTO) (*models.MediaFileModel, error) {
	m, err := s.GetByID(id)
	if err != nil || m == nil {
		return m, err
	}
	updates := map[string]interface{}{}
	if dto.Alt != nil {
		updates["alt"] = *dto.Alt
	}
	if dto.Caption != nil {
		updates["caption"] = *dto.Caption
	}
	if dto.Tags != nil {
		updates["tags"] = models.StringArray(dto.Tags)
	}
	if len(updates) == 0 {
		return m, nil
	}
	if err := s.db.Model(m).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.GetByID(id)
}

func (s *Service) Delete(ctx context.Context, id uint) (bool, error) {
	m, err := s.GetByID(id)
	if err != nil {
		return false, err
	}
	if m == nil {
		return false, nil
	}
	if err := s.db.Delete(&models.MediaFileModel{}, id).Error; err != nil {
		return false, err
	}
	// Losing the blob is recoverable, losing the row is not, so the row
	// goes first and removal failures are ignored.
	_ = s.provider.Remove(ctx, m.Path)
	return true, nil
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/media")
	g.GET("", h.list)
	g.GET("/:id", h.get)
	g.POST("/upload", h.upload)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.delete)
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.svc.List(c.Query("type"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	out := make([]mediaResponse, len(items))
	for i, m := range items {
		out[i] = toResponse(&m)
	}
	response.OK(c, out)
}

func (h *Handler) get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	m, err := h.svc.GetByID(id)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if m == nil {
		response.NotFoundMsg(c, "media file not found")
		return
	}
	response.OK(c, toResponse(m))
}

func (h *Handler) upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file is required")
		return
	}
	if h.svc.maxBytes > 0 && fileHeader.Size > h.svc.maxBytes {
		// Reject before buffering the payload.
		response.UnprocessableEntity(c, ErrTooLarge.Error())
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	defer f.Close()
	payload, err := io.ReadAll(f)
	if err != nil {
		response.InternalError(c, err)
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	var tags []string
	if raw := c.PostForm("tags"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
	}
	m, err := h.svc.Upload(c.Request.Context(), fileHeader.Filename, contentType, payload,
		c.PostForm("alt"), c.PostForm("caption"), tags, middleware.CurrentUserID(c))
	if err != nil {
		switch {
		case errors.Is(err, ErrTooLarge):
			response.UnprocessableEntity(c, err.Error())
		case errors.Is(err, ErrUnsupportedType):
			response.UnprocessableEntity(c, err.Error())
		default:
			response.InternalError(c, err)
		}
		return
	}
	middleware.StageAudit(c, models.ActionCreate, "media_file", fmt.Sprint(m.ID),
		map[string]interface{}{"filename": m.Filename, "size": m.Size})
	response.Created(c, toResponse(m))
}

func (h *Handler) update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var dto UpdateMediaDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	m, err := h.svc.Update(id, &dto)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if m == nil {
		response.NotFoundMsg(c, "media file not found")
		return
	}
	middleware.StageAudit(c, models.ActionUpdate, "media_file", fmt.Sprint(m.ID), nil)
	response.OK(c, toResponse(m))
}

func (h *Handler) delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	deleted, err := h.svc.Delete(c.Request.Context(), id)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if !deleted {
		response.NotFoundMsg(c, "media file not found")
		return
	}
	middleware.StageAudit(c, models.ActionDelete, "media_file", fmt.Sprint(id), nil)
	response.NoContent(c)
}

// buildFileName ignores the client-supplied name entirely. The extension
// comes from the validated MIME type, so a payload declared image/png can
// never be stored under an executable or HTML extension.
func buildFileName(ext string) string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:18] + ext
}

func normalizeContentType(raw string) string {
	if i := strings.Index(raw, ";"); i >= 0 {
		raw = raw[:i]
	}
	return strings.ToLower(strings.TrimSpace(raw))
}

func parseID(c *gin.Context) (uint, bool) {
	v, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid id")
		return 0, false
	}
	return uint(v), true
}
