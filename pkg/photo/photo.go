// Package photo reads image attachments into data URLs.
//
// Photos are embedded in the diagram snapshot as "data:<type>;base64,..."
// strings so a snapshot stays a single self-contained JSON document.
// [ReadAll] reads several sources concurrently and only returns once all of
// them succeeded, so callers never apply a partial batch.
package photo

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/biotree/pkg/errors"
)

// DefaultMaxBytes caps the size of a single photo.
const DefaultMaxBytes = 10 << 20

// DefaultConcurrency is the number of sources read at once by ReadAll.
const DefaultConcurrency = 4

// Source is a named stream of image bytes.
type Source interface {
	Name() string
	Open() (io.ReadCloser, error)
}

// File is a Source backed by a path on disk.
type File string

func (f File) Name() string                 { return filepath.Base(string(f)) }
func (f File) Open() (io.ReadCloser, error) { return os.Open(string(f)) }

// Bytes is an in-memory Source. ContentType is optional.
type Bytes struct {
	Filename    string
	ContentType string
	Data        []byte
}

func (b Bytes) Name() string { return b.Filename }

func (b Bytes) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(b.Data)), nil
}

// Opener adapts an open function, such as multipart.FileHeader.Open, to Source.
type Opener struct {
	Filename    string
	ContentType string
	OpenFunc    func() (io.ReadCloser, error)
}

func (o Opener) Name() string                 { return o.Filename }
func (o Opener) Open() (io.ReadCloser, error) { return o.OpenFunc() }

// EncodeDataURL formats data as a base64 data URL.
func EncodeDataURL(contentType string, data []byte) string {
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURL splits a base64 data URL into its content type and bytes.
func DecodeDataURL(url string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(url, "data:")
	if !ok {
		return "", nil, fmt.Errorf("not a data url")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("data url has no payload")
	}
	contentType, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return "", nil, fmt.Errorf("data url is not base64 encoded")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decode payload: %w", err)
	}
	return contentType, data, nil
}

// Read reads src into a data URL. The content type comes from the source
// when it declares one, then from the file extension, then from sniffing.
func Read(src Source) (string, error) {
	rc, err := src.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, DefaultMaxBytes+1))
	if err != nil {
		return "", err
	}
	if len(data) > DefaultMaxBytes {
		return "", fmt.Errorf("larger than %d bytes", DefaultMaxBytes)
	}
	return EncodeDataURL(contentType(src, data), data), nil
}

func contentType(src Source, data []byte) string {
	switch s := src.(type) {
	case Bytes:
		if s.ContentType != "" {
			return s.ContentType
		}
	case Opener:
		if s.ContentType != "" {
			return s.ContentType
		}
	}
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(src.Name()))); ct != "" {
		return ct
	}
	return http.DetectContentType(data)
}

// ReadAll reads every source concurrently and returns the data URLs in
// source order. Any failure cancels the batch and no results are returned.
func ReadAll(ctx context.Context, sources []Source) ([]string, error) {
	urls := make([]string, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(DefaultConcurrency)

	for i, src := range sources {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			url, err := Read(src)
			if err != nil {
				return errors.Wrap(errors.ErrCodePhotoRead, err, "read photo %s", src.Name())
			}
			urls[i] = url
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return urls, nil
}
