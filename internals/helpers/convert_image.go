package helper

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

const thumbnailMaxWidth = 480

// DecodeImageDataURI menerima data-URI ("data:image/png;base64,....")
// dan mengembalikan image hasil decode.
func DecodeImageDataURI(dataURI string) (image.Image, error) {
	idx := strings.Index(dataURI, ",")
	if idx < 0 {
		return nil, fmt.Errorf("data URI tidak valid")
	}
	raw, err := base64.StdEncoding.DecodeString(dataURI[idx+1:])
	if err != nil {
		return nil, fmt.Errorf("gagal decode base64: %w", err)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("gagal decode gambar: %w", err)
	}
	return img, nil
}

// EncodeWebpThumbnail mengecilkan gambar (lebar max 480, rasio dijaga)
// lalu encode ke webp lossy.
func EncodeWebpThumbnail(img image.Image) ([]byte, error) {
	if img.Bounds().Dx() > thumbnailMaxWidth {
		img = imaging.Resize(img, thumbnailMaxWidth, 0, imaging.Lanczos)
	}
	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Quality: 80}); err != nil {
		return nil, fmt.Errorf("gagal encode webp: %w", err)
	}
	return buf.Bytes(), nil
}

// SaveImageDataURI menyimpan snapshot gambar submission sebagai webp thumbnail.
// dataURI kosong = hapus file lama (kalau ada). Mengembalikan path file, atau
// "" kalau dihapus.
func SaveImageDataURI(baseDir, directory string, id uint, dataURI string) (string, error) {
	dir := filepath.Join(baseDir, directory)
	path := filepath.Join(dir, fmt.Sprintf("%d.webp", id))

	if strings.TrimSpace(dataURI) == "" {
		if _, err := os.Stat(path); err == nil {
			if err := os.Remove(path); err != nil {
				return "", fmt.Errorf("gagal hapus gambar lama: %w", err)
			}
		}
		return "", nil
	}

	img, err := DecodeImageDataURI(dataURI)
	if err != nil {
		return "", err
	}
	out, err := EncodeWebpThumbnail(img)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("gagal membuat direktori upload: %w", err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return "", fmt.Errorf("gagal menyimpan gambar: %w", err)
	}
	return path, nil
}
