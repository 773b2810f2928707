package photo

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/biotree/pkg/errors"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n")

func TestEncodeDecodeDataURL(t *testing.T) {
	url := EncodeDataURL("image/png", []byte("hi"))
	if url != "data:image/png;base64,aGk=" {
		t.Fatalf("EncodeDataURL = %q", url)
	}
	ct, data, err := DecodeDataURL(url)
	if err != nil {
		t.Fatalf("DecodeDataURL: %v", err)
	}
	if ct != "image/png" || string(data) != "hi" {
		t.Errorf("DecodeDataURL = (%q, %q)", ct, data)
	}

	for _, bad := range []string{"http://x", "data:image/png;base64", "data:image/png,hi", "data:a;base64,!!"} {
		if _, _, err := DecodeDataURL(bad); err == nil {
			t.Errorf("DecodeDataURL(%q) succeeded, want error", bad)
		}
	}
}

func TestReadContentType(t *testing.T) {
	tests := []struct {
		name string
		src  Source
		want string
	}{
		{"declared", Bytes{Filename: "a.bin", ContentType: "image/webp", Data: pngHeader}, "data:image/webp;"},
		{"extension", Bytes{Filename: "a.PNG", Data: []byte("x")}, "data:image/png;"},
		{"sniffed", Bytes{Filename: "noext", Data: pngHeader}, "data:image/png;"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(tt.src)
			if err != nil {
				t.Fatalf("Read: %v", err)
			}
			if !strings.HasPrefix(got, tt.want) {
				t.Errorf("Read = %q, want prefix %q", got, tt.want)
			}
		})
	}
}

func TestReadAllKeepsOrder(t *testing.T) {
	dir := t.TempDir()
	var sources []Source
	var want []string
	for _, name := range []string{"a", "b", "c", "d", "e", "f"} {
		path := filepath.Join(dir, name+".png")
		if err := os.WriteFile(path, []byte(name), 0o644); err != nil {
			t.Fatal(err)
		}
		sources = append(sources, File(path))
		want = append(want, EncodeDataURL("image/png", []byte(name)))
	}

	got, err := ReadAll(context.Background(), sources)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("urls mismatch (-want +got):\n%s", diff)
	}
}

func TestReadAllFailsWholeBatch(t *testing.T) {
	sources := []Source{
		Bytes{Filename: "ok.png", Data: []byte("ok")},
		File(filepath.Join(t.TempDir(), "missing.png")),
	}
	got, err := ReadAll(context.Background(), sources)
	if err == nil {
		t.Fatal("ReadAll succeeded with a missing file")
	}
	if !errors.Is(err, errors.ErrCodePhotoRead) {
		t.Errorf("err = %v, want PHOTO_READ_FAILED", err)
	}
	if got != nil {
		t.Errorf("partial results returned: %v", got)
	}
}

func TestReadRejectsOversized(t *testing.T) {
	src := Opener{
		Filename: "big.jpg",
		OpenFunc: func() (io.ReadCloser, error) {
			return io.NopCloser(io.LimitReader(zeros{}, DefaultMaxBytes+10)), nil
		},
	}
	if _, err := Read(src); err == nil {
		t.Error("Read accepted an oversized photo")
	}
}

type zeros struct{}

func (zeros) Read(p []byte) (int, error) {
	clear(p)
	return len(p), nil
}
