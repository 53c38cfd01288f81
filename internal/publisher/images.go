package publisher

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	"golang.org/x/image/draw"

	"github.com/goliatone/go-blog-intake/internal/remote"
)

const (
	maxImageWidth       = 1600
	jpegQuality         = 85
	defaultFetchTimeout = 30 * time.Second
)

// allowedImageTypes maps accepted sniffed MIME types to their canonical file
// extension. The jpeg alias is normalised to jpg.
var allowedImageTypes = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
}

// imageProcessor fetches remote submission images and re-encodes them into a
// canonical form for the publish commit. One processor lives per publish run
// and tracks assigned filenames so repeated base names get a numeric suffix.
type imageProcessor struct {
	client   *http.Client
	timeout  time.Duration
	maxBytes int64
	used     map[string]bool
}

func newImageProcessor(client *http.Client, timeout time.Duration, maxBytes int64) *imageProcessor {
	if client == nil {
		client = &http.Client{}
	}
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	return &imageProcessor{
		client:   client,
		timeout:  timeout,
		maxBytes: maxBytes,
		used:     map[string]bool{},
	}
}

// resolve fetches, verifies and re-encodes the image at rawURL and returns
// the encoded bytes with a collision-safe local filename.
func (p *imageProcessor) resolve(ctx context.Context, rawURL string) (data []byte, filename string, err error) {
	fetched, err := p.fetch(ctx, rawURL)
	if err != nil {
		return nil, "", err
	}
	encoded, ext, err := p.reencode(fetched)
	if err != nil {
		return nil, "", fmt.Errorf("process image %s: %w", rawURL, err)
	}
	name, err := p.filename(rawURL, ext)
	if err != nil {
		return nil, "", err
	}
	return encoded, name, nil
}

func (p *imageProcessor) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(fetchCtx, http.MethodGet, remote.RawURL(rawURL), nil)
	if err != nil {
		return nil, fmt.Errorf("fetch image %s: %w", rawURL, err)
	}
	res, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch image %s: %w", rawURL, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, fmt.Errorf("fetch image %s: unexpected status %d", rawURL, res.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(res.Body, p.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("fetch image %s: %w", rawURL, err)
	}
	if int64(len(data)) > p.maxBytes {
		return nil, fmt.Errorf("fetch image %s: exceeds %d byte limit", rawURL, p.maxBytes)
	}
	return data, nil
}

// reencode verifies the sniffed MIME type, decodes the image, downscales it
// when it exceeds the width cap and encodes it back in its canonical format.
func (p *imageProcessor) reencode(data []byte) ([]byte, string, error) {
	mime := http.DetectContentType(data)
	ext, ok := allowedImageTypes[mime]
	if !ok {
		return nil, "", fmt.Errorf("invalid MIME type: %s", mime)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	if w, h := bounds.Dx(), bounds.Dy(); w > maxImageWidth {
		dst := image.NewRGBA(image.Rect(0, 0, maxImageWidth, h*maxImageWidth/w))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	switch ext {
	case "png":
		err = png.Encode(&buf, img)
	default:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality})
	}
	if err != nil {
		return nil, "", fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), ext, nil
}

// filename derives the local filename from the upload URL's opaque id and
// appends a numeric suffix when the base name was already assigned this run.
func (p *imageProcessor) filename(rawURL, ext string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse image URL %s: %w", rawURL, err)
	}
	base := path.Base(parsed.Path)

	candidate := fmt.Sprintf("%s.%s", base, ext)
	for counter := 2; p.used[candidate]; counter++ {
		candidate = fmt.Sprintf("%s-%d.%s", base, counter, ext)
	}
	if hasTraversal(candidate) {
		return "", fmt.Errorf("unsafe image filename: %s", candidate)
	}
	p.used[candidate] = true
	return candidate, nil
}
