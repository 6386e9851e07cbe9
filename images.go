package main

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/dustin/go-humanize"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/remeh/sizedwaitgroup"
)

// imageStore lazily loads sprite sheets and terrain assets from the data
// directory. A missing or unreadable asset is replaced by a generated flat
// placeholder and never retried, so a broken install renders colored
// rectangles instead of crashing or hammering the disk.
type imageStore struct {
	mu     sync.Mutex
	sheets map[sheetID]*ebiten.Image
	assets map[string]*ebiten.Image

	loadedBytes atomic.Int64
	loadedCount atomic.Int64
	missing     atomic.Int64

	precached bool
}

func newImageStore() *imageStore {
	return &imageStore{
		sheets: make(map[sheetID]*ebiten.Image),
		assets: make(map[string]*ebiten.Image),
	}
}

func sheetAssetName(id sheetID) string {
	return filepath.Join("sprites", id.String()+".png")
}

// sheet returns the sprite sheet for id, loading it on first use.
func (s *imageStore) sheet(id sheetID) *ebiten.Image {
	s.mu.Lock()
	if img, ok := s.sheets[id]; ok {
		s.mu.Unlock()
		return img
	}
	s.mu.Unlock()

	img := s.loadPNG(sheetAssetName(id))
	if img == nil {
		img = fallbackSheet(id)
		s.missing.Add(1)
		logError("missing sprite sheet %q, using placeholder", id.String())
	}
	s.mu.Lock()
	s.sheets[id] = img
	s.mu.Unlock()
	return img
}

// asset returns a named image such as a terrain transition sheet. The name
// is a path relative to the data directory, without extension.
func (s *imageStore) asset(name string) *ebiten.Image {
	s.mu.Lock()
	if img, ok := s.assets[name]; ok {
		s.mu.Unlock()
		return img
	}
	s.mu.Unlock()

	img := s.loadPNG(name + ".png")
	if img == nil {
		img = fallbackTransitionSheet()
		s.missing.Add(1)
		logError("missing asset %q, using placeholder", name)
	}
	s.mu.Lock()
	s.assets[name] = img
	s.mu.Unlock()
	return img
}

func (s *imageStore) loadPNG(rel string) *ebiten.Image {
	path := filepath.Join(dataDir, rel)
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	src, err := png.Decode(f)
	if err != nil {
		logError("decode %s: %v", rel, err)
		return nil
	}
	if fi, err := f.Stat(); err == nil {
		s.loadedBytes.Add(fi.Size())
	}
	s.loadedCount.Add(1)
	return ebiten.NewImageFromImage(src)
}

// fallbackSheet builds a flat sheet matching the largest frame grid so frame
// rect math never indexes outside the image.
func fallbackSheet(id sheetID) *ebiten.Image {
	img := ebiten.NewImage(walkCols*tileSizePx, sheetRows*tileSizePx)
	img.Fill(color.RGBA{0xb0, 0x40, 0xa0, 0xff})
	return img
}

func fallbackTransitionSheet() *ebiten.Image {
	rows := (47 + transitionSheetCols - 1) / transitionSheetCols
	img := ebiten.NewImage(transitionSheetCols*tileSizePx, rows*tileSizePx)
	img.Fill(color.RGBA{0, 0, 0, 0})
	return img
}

// subImage is the common crop helper for frame rects.
func subImage(img *ebiten.Image, r image.Rectangle) *ebiten.Image {
	return img.SubImage(r).(*ebiten.Image)
}

// precache walks every known sheet and terrain asset with a bounded worker
// pool so first-frame stutter happens at startup instead of mid-game.
func (s *imageStore) precache(ctx context.Context, rules []autotileRule) {
	swg := sizedwaitgroup.New(runtime.NumCPU())
	for id := sheetNone + 1; id < sheetCount; id++ {
		if ctx.Err() != nil {
			break
		}
		swg.Add()
		go func(id sheetID) {
			defer swg.Done()
			s.sheet(id)
		}(id)
	}
	seen := map[string]bool{}
	for _, r := range rules {
		if seen[r.Asset] || ctx.Err() != nil {
			continue
		}
		seen[r.Asset] = true
		swg.Add()
		go func(name string) {
			defer swg.Done()
			s.asset(name)
		}(r.Asset)
	}
	swg.Wait()
	s.mu.Lock()
	s.precached = true
	s.mu.Unlock()
	logDebug("precache done: %s", s.stats())
}

// stats summarizes the cache for the HUD and debug log.
func (s *imageStore) stats() string {
	return humanize.Comma(s.loadedCount.Load()) + " assets, " +
		humanize.Bytes(uint64(s.loadedBytes.Load())) + " decoded, " +
		humanize.Comma(s.missing.Load()) + " missing"
}
