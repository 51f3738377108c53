package gateway

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/rs/zerolog"

	"github.com/studioshot/backdrop-system/internal/core/domain"
)

// memStore keeps artifacts in a map, keyed by name hint plus a counter.
type memStore struct {
	objects map[string][]byte
	n       int
}

func newMemStore() *memStore {
	return &memStore{objects: make(map[string][]byte)}
}

func (s *memStore) Store(_ context.Context, nameHint string, data []byte, _ string) (domain.ArtifactRef, error) {
	s.n++
	key := fmt.Sprintf("%s-%d.png", nameHint, s.n)
	s.objects[key] = data
	return domain.ArtifactRef{Key: key, URL: "mem://" + key}, nil
}

func (s *memStore) Read(_ context.Context, ref domain.ArtifactRef) ([]byte, error) {
	data, ok := s.objects[ref.Key]
	if !ok {
		return nil, errors.New("object not found")
	}
	return data, nil
}

func (s *memStore) Delete(_ context.Context, ref domain.ArtifactRef) error {
	delete(s.objects, ref.Key)
	return nil
}

func (s *memStore) put(t *testing.T, key string, img image.Image) domain.ArtifactRef {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode %s: %v", key, err)
	}
	s.objects[key] = buf.Bytes()
	return domain.ArtifactRef{Key: key, URL: "mem://" + key}
}

// solid returns a w×h image filled with one color.
func solid(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// cutout returns a w×h transparent image with an opaque red square in the
// middle, mimicking a background-removed product shot.
func cutout(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := h / 4; y < 3*h/4; y++ {
		for x := w / 4; x < 3*w/4; x++ {
			img.Set(x, y, color.RGBA{R: 255, A: 255})
		}
	}
	return img
}

func newTestGateway(store *memStore) *Gateway {
	return New(Config{}, store, zerolog.Nop())
}

func decodeResult(t *testing.T, store *memStore, ref domain.ArtifactRef) image.Image {
	t.Helper()
	data, err := store.Read(context.Background(), ref)
	if err != nil {
		t.Fatalf("read result: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode result: %v", err)
	}
	return img
}

func TestComposite_OutputMatchesForegroundSize(t *testing.T) {
	store := newMemStore()
	fg := store.put(t, "fg.png", cutout(64, 32))
	bg := store.put(t, "bg.png", solid(128, 128, color.RGBA{B: 255, A: 255}))

	ref, err := newTestGateway(store).Composite(context.Background(), fg, bg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := decodeResult(t, store, ref)
	if out.Bounds().Dx() != 64 || out.Bounds().Dy() != 32 {
		t.Errorf("expected 64x32 output, got %dx%d", out.Bounds().Dx(), out.Bounds().Dy())
	}
}

func TestComposite_ForegroundOverBackground(t *testing.T) {
	store := newMemStore()
	fg := store.put(t, "fg.png", cutout(40, 40))
	bg := store.put(t, "bg.png", solid(40, 40, color.RGBA{B: 255, A: 255}))

	ref, err := newTestGateway(store).Composite(context.Background(), fg, bg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := decodeResult(t, store, ref)

	// Center pixel sits inside the opaque cutout square.
	r, _, b, _ := out.At(20, 20).RGBA()
	if r == 0 || b != 0 {
		t.Errorf("center must show the foreground (red), got r=%d b=%d", r, b)
	}

	// Corner pixel is transparent in the cutout, so the background shows.
	r, _, b, _ = out.At(1, 1).RGBA()
	if b == 0 || r != 0 {
		t.Errorf("corner must show the background (blue), got r=%d b=%d", r, b)
	}
}

func TestComposite_MissingArtifact(t *testing.T) {
	store := newMemStore()
	bg := store.put(t, "bg.png", solid(10, 10, color.White))

	_, err := newTestGateway(store).Composite(context.Background(),
		domain.ArtifactRef{Key: "gone.png"}, bg)
	if err == nil {
		t.Fatal("expected error for missing foreground")
	}
	var gwErr *domain.GatewayError
	if !errors.As(err, &gwErr) || gwErr.Stage != domain.StageComposite {
		t.Fatalf("expected composite stage gateway error, got %v", err)
	}
}

func TestComposite_UndecodableInput(t *testing.T) {
	store := newMemStore()
	store.objects["junk.png"] = []byte("not an image")
	bg := store.put(t, "bg.png", solid(10, 10, color.White))

	_, err := newTestGateway(store).Composite(context.Background(),
		domain.ArtifactRef{Key: "junk.png"}, bg)
	var gwErr *domain.GatewayError
	if !errors.As(err, &gwErr) || gwErr.Stage != domain.StageComposite {
		t.Fatalf("expected composite stage gateway error, got %v", err)
	}
}

func TestCoverFit_Dimensions(t *testing.T) {
	cases := []struct {
		srcW, srcH, dstW, dstH int
	}{
		{100, 100, 64, 32},  // square source, wide target
		{200, 50, 64, 64},   // wide source, square target
		{50, 200, 64, 64},   // tall source, square target
		{64, 32, 64, 32},    // exact match
		{10, 10, 512, 256},  // upscale
	}

	for _, tc := range cases {
		src := solid(tc.srcW, tc.srcH, color.RGBA{G: 255, A: 255})
		got := coverFit(src, tc.dstW, tc.dstH)
		if got.Bounds().Dx() != tc.dstW || got.Bounds().Dy() != tc.dstH {
			t.Errorf("coverFit(%dx%d -> %dx%d): got %dx%d",
				tc.srcW, tc.srcH, tc.dstW, tc.dstH, got.Bounds().Dx(), got.Bounds().Dy())
		}
	}
}

func TestCoverFit_FillsWholeCanvas(t *testing.T) {
	// A solid source must produce a fully opaque canvas: cover-fit crops,
	// it never letterboxes.
	src := solid(30, 90, color.RGBA{G: 255, A: 255})
	got := coverFit(src, 60, 60)

	for _, pt := range []image.Point{{0, 0}, {59, 0}, {0, 59}, {59, 59}, {30, 30}} {
		_, g, _, a := got.At(pt.X, pt.Y).RGBA()
		if a == 0 || g == 0 {
			t.Errorf("pixel %v must be filled with the source color, got g=%d a=%d", pt, g, a)
		}
	}
}
