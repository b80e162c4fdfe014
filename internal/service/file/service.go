package file

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"path"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/storage"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

// PhotoSize bounds both sides of a stored employee photo.
const PhotoSize = 512

var ErrInvalidImage = errors.New("file is not a decodable jpg or png image")

type FileService interface {
	// UploadPhoto decodes, orients and fits an image into PhotoSize x
	// PhotoSize, re-encodes it as JPEG and returns its storage key.
	UploadPhoto(ctx context.Context, employeeID string, file io.Reader) (string, error)

	// Generic operations
	DeleteFile(ctx context.Context, key string) error
	GetFileURL(ctx context.Context, key string) (string, error)
}

type fileServiceImpl struct {
	storage storage.FileStorage
}

func NewFileService(storage storage.FileStorage) FileService {
	return &fileServiceImpl{
		storage: storage,
	}
}

// UploadPhoto implements FileService.
func (s *fileServiceImpl) UploadPhoto(ctx context.Context, employeeID string, file io.Reader) (string, error) {
	img, err := imaging.Decode(file, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	encoded, err := encodePhoto(img)
	if err != nil {
		return "", err
	}

	key := path.Join("photos", employeeID, uuid.NewString()+".jpg")
	uploaded, err := s.storage.Upload(ctx, bytes.NewReader(encoded), key, "image/jpeg")
	if err != nil {
		return "", fmt.Errorf("failed to upload photo: %w", err)
	}

	return uploaded, nil
}

// DeleteFile deletes a file
func (s *fileServiceImpl) DeleteFile(ctx context.Context, key string) error {
	return s.storage.Delete(ctx, key)
}

// GetFileURL generates URL to access file
func (s *fileServiceImpl) GetFileURL(ctx context.Context, key string) (string, error) {
	return s.storage.GetURL(ctx, key, time.Hour)
}

// encodePhoto only ever shrinks; small images keep their size.
func encodePhoto(img image.Image) ([]byte, error) {
	b := img.Bounds()
	if b.Dx() > PhotoSize || b.Dy() > PhotoSize {
		img = imaging.Fit(img, PhotoSize, PhotoSize, imaging.Lanczos)
	}

	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, fmt.Errorf("failed to encode photo: %w", err)
	}
	return buf.Bytes(), nil
}
