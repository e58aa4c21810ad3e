package paint

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/gogpu/paint/shader"
	"github.com/gogpu/paint/surface"
)

func newTestContext(t *testing.T, w, h int, opts ...ContextOption) *Context {
	t.Helper()
	c, err := NewContext(w, h, opts...)
	if err != nil {
		t.Fatalf("NewContext(%d, %d) = %v", w, h, err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

// assertInSync fails unless both backends hold the same pixels.
func assertInSync(t *testing.T, c *Context) {
	t.Helper()
	img, err := c.dev.ReadPixels()
	if err != nil {
		t.Fatalf("ReadPixels() = %v", err)
	}
	if !bytes.Equal(img.Pix, c.Surface().Pix) {
		t.Error("raster and accelerated surfaces differ")
	}
}

func TestNewContextInvalidSize(t *testing.T) {
	for _, size := range [][2]int{{0, 10}, {10, 0}, {-5, 5}} {
		if _, err := NewContext(size[0], size[1]); !errors.Is(err, ErrInvalidSize) {
			t.Errorf("NewContext(%d, %d) = %v, want ErrInvalidSize", size[0], size[1], err)
		}
	}
}

func TestNewContextStartsTransparent(t *testing.T) {
	c := newTestContext(t, 8, 4)
	if c.Width() != 8 || c.Height() != 4 {
		t.Errorf("size = %dx%d, want 8x4", c.Width(), c.Height())
	}
	if got := c.Surface().Bounds(); got != image.Rect(0, 0, 8, 4) {
		t.Errorf("Surface().Bounds() = %v", got)
	}
	if c.Pixel(3, 3) != Transparent {
		t.Errorf("Pixel(3, 3) = %v, want transparent", c.Pixel(3, 3))
	}
	if c.Stats().Total() != 0 {
		t.Errorf("Stats() = %+v, want no flushes", c.Stats())
	}
	if c.Authority() != BackendRaster {
		t.Errorf("Authority() = %v, want raster", c.Authority())
	}
}

func TestContextClear(t *testing.T) {
	c := newTestContext(t, 10, 10)
	c.FillCircle(5, 5, 3, Blue)
	c.Clear(Red)

	for _, p := range []image.Point{{0, 0}, {5, 5}, {9, 9}} {
		if got := c.Pixel(p.X, p.Y); got != Red {
			t.Errorf("Pixel(%v) = %v, want red", p, got)
		}
	}
	assertInSync(t, c)

	// Clear replaces, so a translucent clear does not blend.
	c.Clear(Color{0, 0, 255, 128})
	if got := c.Pixel(5, 5); got != (Color{0, 0, 255, 128}) {
		t.Errorf("Pixel after translucent clear = %v", got)
	}
}

func TestContextClearIdempotent(t *testing.T) {
	c := newTestContext(t, 16, 16)
	c.Clear(Green)
	once := c.Surface()
	first := append([]uint8(nil), once.Pix...)
	c.Clear(Green)
	if !bytes.Equal(first, c.Surface().Pix) {
		t.Error("second Clear changed the surface")
	}
}

func TestContextOneFlushPerOperation(t *testing.T) {
	c := newTestContext(t, 20, 20)
	src := newTestContext(t, 20, 20)

	ops := []struct {
		name    string
		backend Backend
		run     func() error
	}{
		{"clear", BackendRaster, func() error { c.Clear(White); return nil }},
		{"line", BackendRaster, func() error { c.Line(0, 0, 19, 19, 2, Red); return nil }},
		{"fill circle", BackendRaster, func() error { c.FillCircle(10, 10, 4, Blue); return nil }},
		{"draw circle", BackendRaster, func() error { c.DrawCircle(10, 10, 6, 1); return nil }},
		{"checkerboard", BackendAccelerated, func() error { return c.Checkerboard(5, CheckerGray, White) }},
		{"hsv circle", BackendAccelerated, func() error { return c.HSVCircle(10, 10, 8) }},
		{"draw image", BackendRaster, func() error { c.DrawImage(src); return nil }},
		{"draw image bounded", BackendRaster, func() error { c.DrawImageBounded(src, NewRect(2, 2, 5, 5)); return nil }},
	}
	for _, op := range ops {
		before := c.Stats()
		if err := op.run(); err != nil {
			t.Fatalf("%s: %v", op.name, err)
		}
		after := c.Stats()
		if after.Total()-before.Total() != 1 {
			t.Errorf("%s: ran %d flushes, want 1", op.name, after.Total()-before.Total())
		}
		wantUploads := before.Uploads
		if op.backend == BackendRaster {
			wantUploads++
		}
		if after.Uploads != wantUploads {
			t.Errorf("%s: flushed in the wrong direction: %+v → %+v", op.name, before, after)
		}
		if c.Authority() != op.backend {
			t.Errorf("%s: Authority() = %v, want %v", op.name, c.Authority(), op.backend)
		}
		assertInSync(t, c)
	}
}

func TestContextCheckerboardReplaces(t *testing.T) {
	c := newTestContext(t, 23, 17)
	c.FillCircle(10, 10, 8, Red)

	if err := c.Checkerboard(4, CheckerGray, White); err != nil {
		t.Fatalf("Checkerboard() = %v", err)
	}
	for y := 0; y < 17; y++ {
		for x := 0; x < 23; x++ {
			want := CheckerGray
			if (x/4+y/4)%2 == 1 {
				want = White
			}
			if got := c.Pixel(x, y); got != want {
				t.Fatalf("Pixel(%d, %d) = %v, want %v", x, y, got, want)
			}
		}
	}
	assertInSync(t, c)
}

func TestContextCheckerboardInvalidCell(t *testing.T) {
	c := newTestContext(t, 4, 4)
	c.Clear(Red)
	if err := c.Checkerboard(0, Black, White); err == nil {
		t.Error("Checkerboard(0) succeeded")
	}
	if c.Pixel(1, 1) != Red {
		t.Error("failed Checkerboard changed the surface")
	}
}

func TestContextFillCircle(t *testing.T) {
	c := newTestContext(t, 100, 100)
	c.FillCircle(50, 50, 10, Red)

	if got := c.Pixel(50, 50); got != Red {
		t.Errorf("center = %v, want red", got)
	}
	if got := c.Pixel(5, 5); got != Transparent {
		t.Errorf("corner = %v, want transparent", got)
	}
	if got := c.Pixel(62, 50); got != Transparent {
		t.Errorf("outside radius = %v, want transparent", got)
	}
}

func TestContextLine(t *testing.T) {
	c := newTestContext(t, 100, 40)
	c.Line(10, 20, 90, 20, 4, Green)

	tests := []struct {
		x, y int
		want Color
	}{
		{50, 20, Green},
		{50, 18, Green},
		{50, 21, Green},
		{50, 25, Transparent},
		{5, 20, Transparent}, // butt cap
		{95, 20, Transparent},
	}
	for _, tt := range tests {
		if got := c.Pixel(tt.x, tt.y); got != tt.want {
			t.Errorf("Pixel(%d, %d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestContextDrawCircle(t *testing.T) {
	c := newTestContext(t, 100, 100)
	c.DrawCircle(50, 50, 20, 2)

	if got := c.Pixel(50, 50); got != Transparent {
		t.Errorf("inside = %v, want transparent", got)
	}
	ring := c.Pixel(69, 50)
	if ring.A < 200 || ring.R != 0 || ring.G != 0 || ring.B != 0 {
		t.Errorf("outline = %v, want black", ring)
	}
}

func TestContextHSVCircle(t *testing.T) {
	c := newTestContext(t, 100, 100)
	c.Clear(White)
	if err := c.HSVCircle(50, 50, 40); err != nil {
		t.Fatalf("HSVCircle() = %v", err)
	}

	if got := c.Pixel(85, 50); got.R != 255 || got.G > 60 || got.B > 60 || got.A != 255 {
		t.Errorf("right of center = %v, want red", got)
	}
	if got := c.Pixel(2, 2); got != White {
		t.Errorf("outside the wheel = %v, want the white background", got)
	}

	// A later raster draw keeps the wheel.
	c.FillCircle(5, 5, 3, Blue)
	if got := c.Pixel(85, 50); got.R != 255 || got.G > 60 {
		t.Errorf("after FillCircle = %v, want the wheel kept", got)
	}
	assertInSync(t, c)
}

func TestContextDrawImage(t *testing.T) {
	src := newTestContext(t, 100, 100)
	src.FillCircle(50, 50, 10, Red)

	c := newTestContext(t, 100, 100)
	c.Clear(White)
	c.DrawImage(src)
	if got := c.Pixel(50, 50); got != Red {
		t.Errorf("copied center = %v, want red", got)
	}
	if got := c.Pixel(0, 0); got != White {
		t.Errorf("transparent source pixel = %v, want the white background", got)
	}

	c.DrawImage(nil)
	c.DrawImageBounded(src, NewRect(0, 0, 0, 10))
	if c.Stats().Uploads != 2 {
		t.Errorf("Uploads = %d, want no-op draws to skip the flush", c.Stats().Uploads)
	}
}

func TestContextDrawImageBounded(t *testing.T) {
	src := newTestContext(t, 100, 100)
	src.FillCircle(50, 50, 10, Red)

	c := newTestContext(t, 100, 100)
	c.DrawImageBounded(src, NewRect(0, 0, 50, 50))

	if got := c.Pixel(25, 25); got != Red {
		t.Errorf("scaled center = %v, want red", got)
	}
	if got := c.Pixel(50, 50); got != Transparent {
		t.Errorf("outside bounds = %v, want transparent", got)
	}
}

func TestContextDrawImageSelf(t *testing.T) {
	c := newTestContext(t, 40, 40)
	c.FillCircle(20, 20, 15, Blue)
	c.DrawImageBounded(c, NewRect(0, 0, 20, 20))

	if got := c.Pixel(10, 10); got != Blue {
		t.Errorf("self copy = %v, want blue", got)
	}
	assertInSync(t, c)
}

func TestContextResize(t *testing.T) {
	c := newTestContext(t, 20, 20)
	c.Clear(Red)

	if err := c.Resize(30, 12); err != nil {
		t.Fatalf("Resize() = %v", err)
	}
	if c.Width() != 30 || c.Height() != 12 {
		t.Errorf("size = %dx%d, want 30x12", c.Width(), c.Height())
	}
	if got := c.Surface().Bounds(); got != image.Rect(0, 0, 30, 12) {
		t.Errorf("Surface().Bounds() = %v", got)
	}
	if c.dev.Width() != 30 || c.dev.Height() != 12 {
		t.Errorf("device size = %dx%d, want 30x12", c.dev.Width(), c.dev.Height())
	}
	if got := c.Pixel(5, 5); got != Transparent {
		t.Errorf("Pixel after resize = %v, want transparent", got)
	}

	// Every program draws at the new size.
	if err := c.Checkerboard(5, CheckerGray, White); err != nil {
		t.Fatal(err)
	}
	if got := c.Pixel(29, 11); got != White {
		t.Errorf("Pixel(29, 11) = %v, want white", got)
	}
	if err := c.HSVCircle(15, 6, 5); err != nil {
		t.Fatal(err)
	}
	c.FillCircle(25, 6, 2, Blue)
	assertInSync(t, c)
}

func TestContextResizeInvalid(t *testing.T) {
	c := newTestContext(t, 20, 20)
	c.Clear(Red)
	if err := c.Resize(0, 10); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("Resize(0, 10) = %v, want ErrInvalidSize", err)
	}
	if c.Width() != 20 || c.Height() != 20 || c.Pixel(1, 1) != Red {
		t.Error("failed Resize changed the Context")
	}
}

func TestContextClose(t *testing.T) {
	c, err := NewContext(10, 10)
	if err != nil {
		t.Fatal(err)
	}
	dev := c.dev
	if err := c.Close(); err != nil {
		t.Fatalf("Close() = %v", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("second Close() = %v", err)
	}
	if dev.Stats().Total() != 0 {
		t.Errorf("live device resources after Close = %+v", dev.Stats())
	}

	c.Clear(Red)
	c.FillCircle(1, 1, 1, Red)
	if c.Surface() != nil {
		t.Error("Surface() after Close is not nil")
	}
	if c.Pixel(1, 1) != Transparent {
		t.Error("Pixel() after Close is not transparent")
	}
	if err := c.Checkerboard(2, Black, White); !errors.Is(err, ErrClosed) {
		t.Errorf("Checkerboard after Close = %v, want ErrClosed", err)
	}
	if err := c.Resize(5, 5); !errors.Is(err, ErrClosed) {
		t.Errorf("Resize after Close = %v, want ErrClosed", err)
	}
}

func TestContextWithSurface(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 12, 8))
	for i := 0; i < len(img.Pix); i += 4 {
		copy(img.Pix[i:], []uint8{255, 0, 0, 255})
	}
	screen := surface.NewImageSurfaceFromImage(img)

	c := newTestContext(t, 12, 8, WithSurface(screen))
	if got := c.Pixel(4, 4); got != Red {
		t.Errorf("handed-in content = %v, want red", got)
	}
	assertInSync(t, c)

	// Draws land in the handed-in buffer.
	c.Clear(Blue)
	if got := img.RGBAAt(4, 4); got != (color.RGBA{0, 0, 255, 255}) {
		t.Errorf("window buffer = %v, want blue", got)
	}
}

func TestContextWithSurfaceResized(t *testing.T) {
	screen := surface.NewImageSurface(3, 3)
	c := newTestContext(t, 10, 6, WithSurface(screen))
	if screen.Width() != 10 || screen.Height() != 6 {
		t.Errorf("handed-in surface = %dx%d, want 10x6", screen.Width(), screen.Height())
	}
	if c.Surface() != screen.Image() {
		t.Error("Context does not draw into the handed-in surface")
	}
}

func TestContextWithDevice(t *testing.T) {
	dev, err := shader.NewDevice(4, 4)
	if err != nil {
		t.Fatal(err)
	}
	c := newTestContext(t, 8, 8, WithDevice(dev))
	if dev.Width() != 8 {
		t.Errorf("handed-in device width = %d, want 8", dev.Width())
	}
	if err := c.Checkerboard(2, Black, White); err != nil {
		t.Fatal(err)
	}
	img, err := dev.ReadPixels()
	if err != nil {
		t.Fatal(err)
	}
	if got := img.RGBAAt(0, 0); got != (color.RGBA{0, 0, 0, 255}) {
		t.Errorf("device pixel = %v, want black", got)
	}
}

func TestContextCheckerboardFractionalCell(t *testing.T) {
	c := newTestContext(t, 20, 4)
	if err := c.Checkerboard(2.5, Red, Blue); err != nil {
		t.Fatal(err)
	}
	for y := 0; y < 4; y++ {
		for x := 0; x < 20; x++ {
			want := Red
			if (int(float64(x)/2.5)+int(float64(y)/2.5))%2 == 1 {
				want = Blue
			}
			if got := c.Pixel(x, y); got != want {
				t.Errorf("Pixel(%d, %d) = %v, want %v", x, y, got, want)
			}
		}
	}
	assertInSync(t, c)
}

func TestContextRetriesFailedUpload(t *testing.T) {
	c := newTestContext(t, 6, 6)
	swap := c.swap
	c.dev.DestroyTexture(swap)

	c.Clear(Red)
	if !c.Stale() {
		t.Fatal("Stale() = false after a failed upload")
	}
	if c.Stats().Uploads != 0 {
		t.Errorf("Uploads = %d, want 0", c.Stats().Uploads)
	}
	if err := c.HSVCircle(3, 3, 2); err == nil {
		t.Error("HSVCircle over a stale framebuffer succeeded")
	}
	if c.Pixel(3, 3) != Red {
		t.Errorf("Pixel(3, 3) = %v, want red", c.Pixel(3, 3))
	}

	var err error
	if c.swap, err = c.dev.CreateTexture(shader.DefaultTextureDescriptor("swap")); err != nil {
		t.Fatal(err)
	}
	if err := c.Flush(); err != nil {
		t.Fatalf("Flush() = %v", err)
	}
	if c.Stale() {
		t.Error("Stale() = true after a successful Flush")
	}
	if c.Stats().Uploads != 1 {
		t.Errorf("Uploads = %d, want 1", c.Stats().Uploads)
	}
	assertInSync(t, c)
	if err := c.Flush(); err != nil || c.Stats().Uploads != 1 {
		t.Errorf("Flush() with nothing pending = %v, Uploads = %d", err, c.Stats().Uploads)
	}
}

func TestContextPixelOutOfBounds(t *testing.T) {
	c := newTestContext(t, 4, 4)
	c.Clear(Red)
	for _, p := range []image.Point{{-1, 0}, {0, -1}, {4, 0}, {0, 4}} {
		if got := c.Pixel(p.X, p.Y); got != Transparent {
			t.Errorf("Pixel(%v) = %v, want transparent", p, got)
		}
	}
}

func TestBackendString(t *testing.T) {
	tests := []struct {
		b    Backend
		want string
	}{
		{BackendRaster, "raster"},
		{BackendAccelerated, "accelerated"},
		{Backend(9), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.b.String(); got != tt.want {
			t.Errorf("Backend(%d).String() = %q, want %q", tt.b, got, tt.want)
		}
	}
}

func BenchmarkContextFillCircle(b *testing.B) {
	c, err := NewContext(256, 256)
	if err != nil {
		b.Fatal(err)
	}
	defer c.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.FillCircle(128, 128, 40, Red)
	}
}

func BenchmarkContextCheckerboard(b *testing.B) {
	c, err := NewContext(256, 256)
	if err != nil {
		b.Fatal(err)
	}
	defer c.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = c.Checkerboard(10, CheckerGray, White)
	}
}
