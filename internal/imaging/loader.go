package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"path/filepath"
	"sync"
)

// ErrUnreadableImage is returned when an input file or byte buffer cannot be
// decoded as an image. It is the only failure the analysis pipeline surfaces
// to callers; everything downstream degrades instead of erroring.
var ErrUnreadableImage = errors.New("unreadable image")

// ImageCache holds decoded images keyed by file path so a scan consulted by
// several tools in one session is read and decoded once. Safe for concurrent
// use. Entries stay resident until Evict or Clear.
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]image.Image
}

// NewImageCache creates an empty cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]image.Image),
	}
}

// Load returns the cached image for path, reading and decoding it on a miss.
// PNG, JPEG and GIF are supported. Open and decode failures both wrap
// ErrUnreadableImage, so errors.Is separates bad input from anything else.
// The exact path string is the cache key; relative and absolute spellings of
// the same file cache separately.
func (c *ImageCache) Load(path string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open %s: %v", ErrUnreadableImage, path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode %s: %v", ErrUnreadableImage, path, err)
	}

	c.mu.Lock()
	c.images[path] = img
	c.mu.Unlock()

	return img, nil
}

// Decode decodes an in-memory image buffer.
//
// Like ImageCache.Load, a decode failure wraps ErrUnreadableImage. Decoded
// buffers are not cached; callers that analyze the same bytes repeatedly
// should decode once and reuse the result.
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode buffer: %v", ErrUnreadableImage, err)
	}
	return img, nil
}

// Clear drops every cached image. Subsequent loads re-read from disk.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]image.Image)
	c.mu.Unlock()
}

// Evict drops one cached image. A path that is not cached is a no-op.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// ImageInfo is the metadata block attached to every analysis result and
// returned by the image_load tool.
type ImageInfo struct {
	Width  int `json:"width"`
	Height int `json:"height"`

	// Format is guessed from the file extension, not the contents:
	// "png", "jpeg", "gif" or "unknown".
	Format string `json:"format"`

	// ColorDepth is the bit depth per channel, "8-bit" or "16-bit".
	ColorDepth string `json:"color_depth"`

	HasAlpha      bool  `json:"has_alpha"`
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadImageInfo loads an image through the cache and describes it: dimensions,
// format, color depth, alpha presence and file size.
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	ext := filepath.Ext(path)
	format := "unknown"
	switch ext {
	case ".png":
		format = "png"
	case ".jpg", ".jpeg":
		format = "jpeg"
	case ".gif":
		format = "gif"
	}

	hasAlpha := false
	colorDepth := "8-bit"
	switch img.(type) {
	case *image.RGBA, *image.NRGBA:
		hasAlpha = true
	case *image.RGBA64, *image.NRGBA64:
		hasAlpha = true
		colorDepth = "16-bit"
	case *image.Gray16:
		colorDepth = "16-bit"
	}

	return &ImageInfo{
		Width:         bounds.Dx(),
		Height:        bounds.Dy(),
		Format:        format,
		ColorDepth:    colorDepth,
		HasAlpha:      hasAlpha,
		FileSizeBytes: stat.Size(),
	}, nil
}

// DimensionsResult carries just the pixel dimensions of an image.
type DimensionsResult struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// GetDimensions reports an image's dimensions without the rest of the
// metadata, loading through the cache like everything else.
func GetDimensions(cache *ImageCache, path string) (*DimensionsResult, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	return &DimensionsResult{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, nil
}
