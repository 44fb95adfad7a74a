package image

import (
	"encoding/json"
	"fmt"
	"log"
	"mime/multipart"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yerokha312/cooks-corner/internal/models"
	"github.com/yerokha312/cooks-corner/internal/utils"
)

const maxImageSize = 10 * 1024 * 1024

// Process validates and stores an uploaded image, returning its persisted
// record. Upload metadata is captured alongside the URL.
func Process(db *gorm.DB, file *multipart.FileHeader) (*models.Image, error) {
	contentType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("uploaded file is not an image")
	}

	if file.Size > maxImageSize {
		return nil, fmt.Errorf("image exceeds the %d byte limit", maxImageSize)
	}

	url, err := utils.UploadFile(file)
	if err != nil {
		return nil, err
	}

	meta, _ := json.Marshal(map[string]interface{}{
		"file_name":    file.Filename,
		"content_type": contentType,
		"size":         file.Size,
	})

	img := &models.Image{
		URL:  url,
		Meta: datatypes.JSON(meta),
	}
	if err := db.Create(img).Error; err != nil {
		return nil, err
	}

	return img, nil
}

// Cleanup removes a replaced image's stored file and its record. Failures to
// remove the file leave an orphan on disk, not a broken reference, so they
// are logged and swallowed.
func Cleanup(db *gorm.DB, img *models.Image) {
	if img == nil {
		return
	}

	if err := utils.DeleteFile(img.URL); err != nil {
		log.Printf("⚠️  Failed to delete replaced image %s: %v", img.URL, err)
	}
	if err := db.Delete(&models.Image{}, img.ID).Error; err != nil {
		log.Printf("⚠️  Failed to delete image record %d: %v", img.ID, err)
	}
}
