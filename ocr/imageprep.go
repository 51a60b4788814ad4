package ocr

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif" // register GIF decoder
	"image/jpeg"
	_ "image/png" // register PNG decoder
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/heic"
)

// maxUploadBytes is the service's effective payload ceiling; larger images
// are recompressed before upload.
const maxUploadBytes = 2_000_000

const recompressQuality = 70

// prepareImage loads an image file and returns upload-ready bytes plus the
// filename to present to the service. HEIC input is always transcoded to
// JPEG since the service does not accept it; anything over the size ceiling
// is recompressed.
func prepareImage(path string) ([]byte, string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read image %s: %w", path, err)
	}

	name := filepath.Base(path)

	if isHEIC(raw) {
		img, err := heic.Decode(bytes.NewReader(raw))
		if err != nil {
			return nil, "", fmt.Errorf("decode heic image %s: %w", path, err)
		}
		recompressed, err := encodeJPEG(img)
		if err != nil {
			return nil, "", fmt.Errorf("transcode heic image %s: %w", path, err)
		}
		return recompressed, jpegName(name), nil
	}

	if len(raw) <= maxUploadBytes {
		return raw, name, nil
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, "", fmt.Errorf("decode oversized image %s: %w", path, err)
	}
	recompressed, err := encodeJPEG(img)
	if err != nil {
		return nil, "", fmt.Errorf("recompress image %s: %w", path, err)
	}
	return recompressed, jpegName(name), nil
}

func encodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: recompressQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func jpegName(name string) string {
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + ".jpg"
}

// isHEIC detects the ftyp box brands HEIC containers start with.
func isHEIC(data []byte) bool {
	if len(data) < 12 || string(data[4:8]) != "ftyp" {
		return false
	}
	switch string(data[8:12]) {
	case "heic", "heif", "mif1", "msf1":
		return true
	}
	return false
}
