package main

import (
	"errors"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	maxUploadBytes = 5 * 1024 * 1024
	thumbMaxSize   = 256
)

var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
}

// saveImageWithThumb stores an uploaded image under UPLOAD_BASE/subdir with a
// random name and writes a bounded JPEG thumbnail next to it. Returns both
// paths relative to the upload base.
func saveImageWithThumb(c *gin.Context, file *multipart.FileHeader, subdir string) (string, string, error) {
	if file.Size > maxUploadBytes {
		return "", "", errors.New("Datei zu groß (max. 5 MB)")
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !imageExts[ext] {
		return "", "", errors.New("Dateityp nicht unterstützt")
	}
	dir := filepath.Join(cfg.UploadBase, subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", err
	}
	name := uuid.NewString() + ext
	fullPath := filepath.Join(dir, name)
	if err := c.SaveUploadedFile(file, fullPath); err != nil {
		return "", "", err
	}

	img, err := imaging.Open(fullPath)
	if err != nil {
		_ = os.Remove(fullPath)
		return "", "", errors.New("Bild konnte nicht gelesen werden")
	}
	thumb := imaging.Fit(img, thumbMaxSize, thumbMaxSize, imaging.Lanczos)
	thumbName := strings.TrimSuffix(name, ext) + "_thumb.jpg"
	thumbFull := filepath.Join(dir, thumbName)
	if err := imaging.Save(thumb, thumbFull, imaging.JPEGQuality(85)); err != nil {
		_ = os.Remove(fullPath)
		return "", "", err
	}
	return filepath.Join(subdir, name), filepath.Join(subdir, thumbName), nil
}
