package services

import (
	"fmt"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
)

const generalImageDir = "general"

var (
	allowedImageExt = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true}
	unsafeNameRe    = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)
)

// ImageStore persists uploaded product images and returns their public path.
type ImageStore interface {
	Save(file *multipart.FileHeader, folder string) (string, error)
}

// DiskImageStore writes images below Dir and serves them under PublicPath.
type DiskImageStore struct {
	Dir        string
	PublicPath string
	Now        func() time.Time
}

func NewDiskImageStore(dir, publicPath string) *DiskImageStore {
	return &DiskImageStore{Dir: dir, PublicPath: publicPath, Now: time.Now}
}

// Save stores file as <name>_<unix>.<ext> in folder, or in "general" when
// folder is empty.
func (s *DiskImageStore) Save(file *multipart.FileHeader, folder string) (string, error) {
	name, err := imageFileName(file.Filename, s.Now())
	if err != nil {
		return "", err
	}
	if folder == "" {
		folder = generalImageDir
	}

	dir := filepath.Join(s.Dir, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create image folder: %w", err)
	}
	if err := fasthttp.SaveMultipartFile(file, filepath.Join(dir, name)); err != nil {
		return "", fmt.Errorf("failed to save image: %w", err)
	}
	return path.Join(s.PublicPath, folder, name), nil
}

// imageFileName sanitizes an uploaded file name and stamps it with the
// upload time so repeated uploads do not collide.
func imageFileName(original string, now time.Time) (string, error) {
	base := filepath.Base(strings.ReplaceAll(original, `\`, "/"))
	ext := strings.ToLower(filepath.Ext(base))
	if !allowedImageExt[ext] {
		return "", validationError("Formato de imagen no permitido. Usa png, jpg, jpeg, gif o webp.")
	}

	stem := strings.TrimSuffix(base, filepath.Ext(base))
	stem = unsafeNameRe.ReplaceAllString(strings.ReplaceAll(stem, " ", "_"), "")
	stem = strings.Trim(stem, "._")
	if stem == "" {
		stem = "imagen"
	}
	return fmt.Sprintf("%s_%d%s", stem, now.Unix(), ext), nil
}
