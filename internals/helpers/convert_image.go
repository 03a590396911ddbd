package helper

import (
	"bytes"
	"fmt"
	_ "image/jpeg"
	_ "image/png"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

const (
	maxImageSize  = 2 << 20 // 2MB upload cap
	maxImageWidth = 1024
	webpQuality   = 80
)

// ConvertToWebP decodes an uploaded jpeg/png, bounds its width, and
// re-encodes as webp. Returned bytes are what gets stored.
func ConvertToWebP(fileHeader *multipart.FileHeader) ([]byte, error) {
	if fileHeader.Size > maxImageSize {
		return nil, fmt.Errorf("image exceeds %dKB", maxImageSize/1024)
	}

	src, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded image: %w", err)
	}
	defer src.Close()

	img, err := imaging.Decode(src, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	if img.Bounds().Dx() > maxImageWidth {
		img = imaging.Resize(img, maxImageWidth, 0, imaging.Lanczos)
	}

	buf := new(bytes.Buffer)
	if err := webp.Encode(buf, img, &webp.Options{Quality: webpQuality}); err != nil {
		return nil, fmt.Errorf("webp encode failed: %w", err)
	}
	return buf.Bytes(), nil
}

// SaveWebPUpload converts and writes the image under UPLOAD_DIR/<folder>,
// returning the public path for the user/course record.
func SaveWebPUpload(folder string, fileHeader *multipart.FileHeader) (string, error) {
	data, err := ConvertToWebP(fileHeader)
	if err != nil {
		return "", err
	}

	dir := os.Getenv("UPLOAD_DIR")
	if dir == "" {
		dir = "uploads"
	}
	dir = filepath.Join(dir, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload dir: %w", err)
	}

	filename := GenerateUniqueFilename(fileHeader.Filename)
	fullPath := filepath.Join(dir, filename)
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}

	return "/" + filepath.ToSlash(fullPath), nil
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9.\-_]+`)

func GenerateUniqueFilename(original string) string {
	base := strings.TrimSuffix(filepath.Base(original), filepath.Ext(original))
	base = unsafeFilenameChars.ReplaceAllString(base, "-")
	if base == "" {
		base = "image"
	}
	return fmt.Sprintf("%s-%d-%s.webp", base, time.Now().Unix(), uuid.NewString()[:8])
}
