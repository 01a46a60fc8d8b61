package system

import (
	"image"
	"sync"
	"sync/atomic"
)

// ImagePool recycles *image.RGBA buffers per bounds. The headless renderer
// takes its frame and one scratch image per plane from it on every Draw.
type ImagePool struct {
	mu    sync.RWMutex
	pools map[image.Rectangle]*sync.Pool

	allocs atomic.Uint64
	reuses atomic.Uint64
}

func NewImagePool() *ImagePool {
	return &ImagePool{pools: make(map[image.Rectangle]*sync.Pool)}
}

var globalPool = NewImagePool()

// SharedPool is the process-wide pool.
func SharedPool() *ImagePool {
	return globalPool
}

// SharedPoolStats reports allocations and reuses of the shared pool.
func SharedPoolStats() (allocs, reuses uint64) {
	return globalPool.Stats()
}

func (p *ImagePool) pool(rect image.Rectangle) *sync.Pool {
	p.mu.RLock()
	pool, ok := p.pools[rect]
	p.mu.RUnlock()
	if ok {
		return pool
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if pool, ok = p.pools[rect]; !ok {
		pool = &sync.Pool{}
		p.pools[rect] = pool
	}
	return pool
}

// Get returns a buffer of exactly rect. Its pixels are whatever the previous
// user left.
func (p *ImagePool) Get(rect image.Rectangle) *image.RGBA {
	if img, ok := p.pool(rect).Get().(*image.RGBA); ok {
		p.reuses.Add(1)
		return img
	}
	p.allocs.Add(1)
	return image.NewRGBA(rect)
}

// Put ignores nil and empty images.
func (p *ImagePool) Put(img *image.RGBA) {
	if img == nil || img.Rect.Empty() {
		return
	}
	p.pool(img.Rect).Put(img)
}

func (p *ImagePool) Stats() (allocs, reuses uint64) {
	return p.allocs.Load(), p.reuses.Load()
}
