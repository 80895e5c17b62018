package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lumiskin/skincare-backend/internal/middleware"
	"github.com/lumiskin/skincare-backend/internal/storage"
)

type UploadController struct {
	storage storage.ImageStorage
}

func NewUploadController(storage storage.ImageStorage) *UploadController {
	return &UploadController{
		storage: storage,
	}
}

type GeneratePresignedURLRequest struct {
	Filename    string `json:"Filename" binding:"required"`
	ContentType string `json:"ContentType" binding:"required"`
	Folder      string `json:"Folder"` // products, ratings, avatars or brands
}

// GeneratePresignedURL returns a URL the client can PUT an image to directly
// POST /api/Upload/presigned-url
func (ctrl *UploadController) GeneratePresignedURL(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req GeneratePresignedURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}

	folder := req.Folder
	if folder == "" {
		folder = "products"
	}

	response, err := ctrl.storage.PresignUpload(c.Request.Context(), req.Filename, req.ContentType, folder)
	if err != nil {
		respondError(c, err, "generate presigned URL", map[string]interface{}{
			"filename":     req.Filename,
			"content_type": req.ContentType,
			"folder":       folder,
		})
		return
	}

	log.Info("Presigned URL generated", map[string]interface{}{
		"folder": folder,
		"key":    response.Key,
	})

	c.JSON(http.StatusOK, response)
}
