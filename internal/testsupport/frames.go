package testsupport

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"
)

// PatternBucketMS is the content granularity of PatternFrame sequences: a
// FakeVideo shows a new picture every 500 ms.
const PatternBucketMS = 500

const (
	patternCols  = 8
	patternRows  = 8
	patternCellW = 8
	patternCellH = 6
)

// PatternFrame returns a deterministic 64x48 image made of an 8x8 grid of
// colored blocks. Different (seed, index) pairs produce unrelated pictures.
func PatternFrame(seed, index int64) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, patternCols*patternCellW, patternRows*patternCellH))
	state := uint64(seed)*0x9E3779B97F4A7C15 ^ uint64(index)*0xBF58476D1CE4E5B9
	for row := 0; row < patternRows; row++ {
		for col := 0; col < patternCols; col++ {
			v := splitmix(&state)
			c := color.RGBA{R: uint8(v), G: uint8(v >> 8), B: uint8(v >> 16), A: 0xff}
			for y := row * patternCellH; y < (row+1)*patternCellH; y++ {
				for x := col * patternCellW; x < (col+1)*patternCellW; x++ {
					img.SetRGBA(x, y, c)
				}
			}
		}
	}
	return img
}

// SolidFrame returns a 64x48 image filled with c.
func SolidFrame(c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, patternCols*patternCellW, patternRows*patternCellH))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
	}
	return img
}

func splitmix(state *uint64) uint64 {
	*state += 0x9E3779B97F4A7C15
	z := *state
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

// FakeVideo describes the synthetic content of one registered path.
type FakeVideo struct {
	DurationMS int64
	// Seed selects the picture sequence; videos sharing a seed show the same content.
	Seed int64
	// LeadMS delays the content: the picture at content time c is shown at
	// timestamp c+LeadMS, with black frames before it.
	LeadMS int64
	// Missing reports timestamps that fail to decode.
	Missing func(timestampMS int64) bool
}

// ErrNoFrame is returned for timestamps that cannot be decoded.
var ErrNoFrame = errors.New("no frame")

// FakeSource is an in-memory frame source for engine tests.
type FakeSource struct {
	mu         sync.Mutex
	videos     map[string]FakeVideo
	frameCalls map[string]int
}

// NewFakeSource returns an empty FakeSource.
func NewFakeSource() *FakeSource {
	return &FakeSource{videos: map[string]FakeVideo{}, frameCalls: map[string]int{}}
}

// Add registers synthetic content for path.
func (f *FakeSource) Add(path string, video FakeVideo) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.videos[path] = video
}

// Duration returns the registered duration for path.
func (f *FakeSource) Duration(_ context.Context, path string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	video, ok := f.videos[path]
	if !ok {
		return 0, fmt.Errorf("fake source: unknown path %q", path)
	}
	return video.DurationMS, nil
}

// Frame renders the picture shown at timestampMS.
func (f *FakeSource) Frame(_ context.Context, path string, timestampMS int64) (image.Image, error) {
	f.mu.Lock()
	video, ok := f.videos[path]
	f.frameCalls[path]++
	f.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("fake source: unknown path %q", path)
	}
	if timestampMS < 0 || timestampMS >= video.DurationMS {
		return nil, ErrNoFrame
	}
	if video.Missing != nil && video.Missing(timestampMS) {
		return nil, ErrNoFrame
	}
	content := timestampMS - video.LeadMS
	if content < 0 {
		return SolidFrame(color.RGBA{A: 0xff}), nil
	}
	return PatternFrame(video.Seed, content/PatternBucketMS), nil
}

// FrameCalls reports how many frames were requested for path.
func (f *FakeSource) FrameCalls(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.frameCalls[path]
}

// TotalFrameCalls reports how many frames were requested overall.
func (f *FakeSource) TotalFrameCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.frameCalls {
		total += n
	}
	return total
}
