// Package artifact writes fetched payloads to disk under stable,
// filesystem-safe names.
package artifact

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"

	_ "image/jpeg"
	_ "image/png"
)

// Saved reports where an artifact landed and what it contained.
type Saved struct {
	Path   string
	Bytes  int64
	Digest string
}

// Save writes data to dir/name through a temp file renamed into place,
// so a crash mid-write never leaves a partial artifact under the final
// name. The digest is the xxhash64 of the content.
func Save(dir, name string, data []byte) (Saved, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Saved{}, fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(dir, name)

	tmp, err := os.CreateTemp(dir, name+".tmp-")
	if err != nil {
		return Saved{}, fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return Saved{}, fmt.Errorf("write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return Saved{}, fmt.Errorf("close artifact: %w", err)
	}
	// CreateTemp opens 0600; artifacts are meant to be readable
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return Saved{}, fmt.Errorf("chmod artifact: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return Saved{}, fmt.Errorf("rename artifact: %w", err)
	}

	return Saved{
		Path:   path,
		Bytes:  int64(len(data)),
		Digest: fmt.Sprintf("%016x", xxhash.Sum64(data)),
	}, nil
}

// Name builds "<layer>_<stamp><ext>" with both parts sanitized. Colons
// in ISO timestamps are not portable file name characters, so they and
// any other oddity collapse to dashes.
func Name(layer, stamp, contentType string) string {
	name := sanitize(layer)
	if name == "" {
		name = "artifact"
	}
	if s := sanitize(stamp); s != "" {
		name += "_" + s
	}
	return name + ExtFromContentType(contentType)
}

// ExtFromContentType maps the content types GeoMet serves to file
// extensions, ".bin" when unrecognized.
func ExtFromContentType(ct string) string {
	ct = strings.ToLower(strings.TrimSpace(ct))
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	switch ct {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/tiff", "image/geotiff":
		return ".tif"
	case "image/netcdf", "application/x-netcdf", "application/netcdf":
		return ".nc"
	case "text/xml", "application/xml":
		return ".xml"
	case "application/json":
		return ".json"
	}
	return ".bin"
}

func sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	var prev rune
	for _, r := range strings.TrimSpace(s) {
		out := rune(0)
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\v' || r == '\f':
			out = '_'
		case isAlphaNum(r) || r == '.' || r == '_' || r == '-':
			out = r
		default:
			out = '-'
		}
		if (out == '_' || out == '-') && out == prev {
			continue
		}
		b.WriteRune(out)
		prev = out
	}
	return strings.Trim(b.String(), "-_")
}

func isAlphaNum(r rune) bool {
	return (r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		unicode.IsDigit(r)
}

// ImageInfo is the decoded header of a map image.
type ImageInfo struct {
	Width  int
	Height int
	Format string
}

// DescribeImage reads just the image header, enough to confirm a GetMap
// answer is a real image of the requested size.
func DescribeImage(data []byte) (ImageInfo, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return ImageInfo{}, fmt.Errorf("decode image header: %w", err)
	}
	return ImageInfo{Width: cfg.Width, Height: cfg.Height, Format: format}, nil
}
