package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"kindler/internal/config"
	"kindler/internal/models"
	"kindler/internal/repository"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"

	_ "image/jpeg"              // register JPEG decoder
	_ "image/png"               // register PNG decoder
	_ "golang.org/x/image/webp" // register WebP decoder
)

const (
	// AvatarMaxEdge is the longest edge of a stored profile picture.
	AvatarMaxEdge = 512
	// AvatarWebPQuality is the lossy quality used when re-encoding.
	AvatarWebPQuality = 80
	// AvatarMimeType is the MIME type every stored picture carries.
	AvatarMimeType = "image/webp"

	defaultPictureDir = "/tmp/kindler/pictures"
)

// AvatarService stores profile pictures. Every upload is decoded, downscaled
// and re-encoded as WebP so stored files have a single known format.
type AvatarService struct {
	userRepo           repository.UserRepository
	pictureDir         string
	maxUploadSizeBytes int64
}

// NewAvatarService returns a new AvatarService.
func NewAvatarService(userRepo repository.UserRepository, cfg *config.Config) *AvatarService {
	dir := defaultPictureDir
	maxMB := 10
	if cfg != nil {
		if cfg.PictureDir != "" {
			dir = cfg.PictureDir
		}
		if cfg.PictureMaxUploadMB > 0 {
			maxMB = cfg.PictureMaxUploadMB
		}
	}
	return &AvatarService{
		userRepo:           userRepo,
		pictureDir:         dir,
		maxUploadSizeBytes: int64(maxMB) * 1024 * 1024,
	}
}

// Store validates, re-encodes and saves the picture for userID, and records
// the path on the user row.
func (s *AvatarService) Store(ctx context.Context, userID uint, content []byte) error {
	if len(content) == 0 {
		return models.NewValidationError("No file uploaded")
	}
	if int64(len(content)) > s.maxUploadSizeBytes {
		return models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", s.maxUploadSizeBytes/(1024*1024)))
	}

	detectedType := http.DetectContentType(content)
	if !isAllowedAvatarMIME(detectedType) {
		return models.NewValidationError("Invalid image type")
	}

	decoded, _, err := image.Decode(bytes.NewReader(content))
	if err != nil {
		return models.NewValidationError("Invalid image file")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	resized := downscaleToEdge(decoded, AvatarMaxEdge)

	var buf bytes.Buffer
	if err := webp.Encode(&buf, resized, &webp.Options{Quality: AvatarWebPQuality}); err != nil {
		return models.NewStorageError(err)
	}

	path := s.pathFor(userID)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return models.NewStorageError(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return models.NewStorageError(err)
	}

	user.PicturePath = path
	return s.userRepo.Update(ctx, user)
}

// LoadEncoded returns the stored picture bytes and MIME type for userID.
// Satisfies PictureLoader.
func (s *AvatarService) LoadEncoded(ctx context.Context, userID uint) ([]byte, string, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	if user.PicturePath == "" {
		return nil, "", models.NewNotFoundError("Picture", userID)
	}

	data, err := os.ReadFile(user.PicturePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", models.NewNotFoundError("Picture", userID)
		}
		return nil, "", models.NewStorageError(err)
	}
	return data, AvatarMimeType, nil
}

func (s *AvatarService) pathFor(userID uint) string {
	return filepath.Join(s.pictureDir, fmt.Sprintf("%d.webp", userID))
}

func isAllowedAvatarMIME(contentType string) bool {
	switch strings.ToLower(strings.TrimSpace(contentType)) {
	case "image/jpeg", "image/jpg", "image/png", "image/webp":
		return true
	default:
		return false
	}
}

func downscaleToEdge(src image.Image, maxEdge int) image.Image {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxEdge && h <= maxEdge {
		return src
	}

	scale := float64(maxEdge) / float64(w)
	if h > w {
		scale = float64(maxEdge) / float64(h)
	}
	newW := int(float64(w) * scale)
	newH := int(float64(h) * scale)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}
