package liquidglass

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"
)

// AssetLoader resolves image URLs supplied in the configuration. The core
// performs no network I/O; hosts decide how URLs map to pixels.
type AssetLoader interface {
	Load(ctx context.Context, url string) (image.Image, error)
}

// AssetLoaderFunc adapts a function to the AssetLoader interface.
type AssetLoaderFunc func(ctx context.Context, url string) (image.Image, error)

// Load calls f(ctx, url).
func (f AssetLoaderFunc) Load(ctx context.Context, url string) (image.Image, error) {
	return f(ctx, url)
}

// FileLoader decodes PNG and JPEG files from the local file system. URLs are
// resolved relative to Root; a leading "/" or "file://" is stripped.
type FileLoader struct {
	Root string
}

// Load implements AssetLoader.
func (l FileLoader) Load(ctx context.Context, url string) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p := strings.TrimPrefix(url, "file://")
	if l.Root != "" {
		p = filepath.Join(l.Root, filepath.FromSlash(strings.TrimPrefix(p, "/")))
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", url, err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", url, err)
	}
	return img, nil
}
