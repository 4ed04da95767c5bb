package validators

import (
	"errors"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var ErrNotAnImage = errors.New("uploaded file is not a supported image")

// Formats the avatar pipeline can decode
var supportedImageTypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/bmp",
	"image/tiff",
}

// ImageValidator sniffs the content of r and returns the detected image
// extension (without the dot). Headers and file names are never trusted.
func ImageValidator(r io.Reader) (ext string, err error) {
	mime, err := mimetype.DetectReader(r)
	if err != nil {
		return "", err
	}

	if !mimetype.EqualsAny(mime.String(), supportedImageTypes...) {
		return "", ErrNotAnImage
	}

	return strings.TrimPrefix(mime.Extension(), "."), nil
}
