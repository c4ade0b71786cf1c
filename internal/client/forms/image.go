package forms

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/client/models"
	"github.com/gabriel-vasile/mimetype"
)

// MaxImageSize caps the size of a selected picture.
const MaxImageSize = 5 << 20

var (
	ErrNotImage      = errors.New("not an image")
	ErrImageTooLarge = errors.New("image too large")
)

// LoadImage reads the picture at path, detects its type from content and
// builds a data URL preview.
func LoadImage(path string) (*models.SelectedImage, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if st.IsDir() {
		return nil, fmt.Errorf("%s: %w", path, ErrNotImage)
	}
	if st.Size() > MaxImageSize {
		return nil, fmt.Errorf("%s is %d bytes: %w", path, st.Size(), ErrImageTooLarge)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, fmt.Errorf("%s is %s: %w", path, mt.String(), ErrNotImage)
	}

	return &models.SelectedImage{
		Path:    path,
		MIME:    mt.String(),
		Data:    data,
		Preview: DataURL(mt.String(), data),
	}, nil
}

func DataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}
