// Package imaging normalises listing photos before they are stored.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"net/http"
	"path"
	"strings"

	// Registered decoders for accepted uploads.
	_ "image/gif"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// MaxDimension is the longest edge a stored listing photo may have.
const MaxDimension = 2400

// JPEGQuality is the compression quality for JPEG output.
const JPEGQuality = 85

// OutputMIME is the content type of every normalised photo.
const OutputMIME = "image/jpeg"

// ErrUnsupported is returned for files that are not an accepted image format.
var ErrUnsupported = errors.New("unsupported image format")

// AllowedMIME lists the accepted input MIME types, sniffed from content.
var AllowedMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Photo is a normalised image ready for upload.
type Photo struct {
	Name   string
	Data   []byte
	MIME   string
	Width  int
	Height int
}

// Normalize sniffs data, rejects anything that is not an accepted image,
// downscales it to fit MaxDimension and re-encodes it as JPEG. The returned
// name keeps the base of name with a .jpg extension.
func Normalize(name string, data []byte) (*Photo, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%s: empty file", name)
	}

	// Client-supplied content types are not trusted.
	detected := http.DetectContentType(data)
	if !AllowedMIME[detected] {
		return nil, fmt.Errorf("%s: %w: %s", name, ErrUnsupported, detected)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: decoding image: %w", name, err)
	}

	img = fit(img, MaxDimension)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("%s: encoding JPEG: %w", name, err)
	}

	b := img.Bounds()
	return &Photo{
		Name:   jpegName(name),
		Data:   buf.Bytes(),
		MIME:   OutputMIME,
		Width:  b.Dx(),
		Height: b.Dy(),
	}, nil
}

func jpegName(name string) string {
	base := strings.TrimSuffix(path.Base(strings.ReplaceAll(name, "\\", "/")), path.Ext(name))
	if base == "" || base == "." || base == "/" {
		base = "photo"
	}
	return base + ".jpg"
}

// fit resizes img with Catmull-Rom so neither edge exceeds maxDim, keeping
// the aspect ratio. Images already within bounds are returned unchanged.
func fit(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxDim && h <= maxDim {
		return img
	}

	newW, newH := maxDim, maxDim
	if w > h {
		newH = max(1, h*maxDim/w)
	} else {
		newW = max(1, w*maxDim/h)
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
