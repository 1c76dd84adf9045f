package sim

import "sync"

// BufferPool recycles float64 scratch vectors between batch runs. A buffer
// handed out by Get belongs to the caller until it is returned with Put.
type BufferPool struct {
	pool sync.Pool
}

func NewBufferPool() *BufferPool {
	return &BufferPool{
		pool: sync.Pool{
			New: func() interface{} {
				buf := make([]float64, 0)
				return &buf
			},
		},
	}
}

// Get returns a buffer of length n. Its contents are unspecified.
func (p *BufferPool) Get(n int) []float64 {
	bp := p.pool.Get().(*[]float64)
	if cap(*bp) < n {
		return make([]float64, n)
	}
	return (*bp)[:n]
}

func (p *BufferPool) Put(buf []float64) {
	if cap(buf) == 0 {
		return
	}
	p.pool.Put(&buf)
}

// GetFilled returns a buffer of length n holding src, or src[0] repeated
// when src has a single element.
func (p *BufferPool) GetFilled(src []float64, n int) []float64 {
	dst := p.Get(n)
	if len(src) == 1 {
		for i := range dst {
			dst[i] = src[0]
		}
		return dst
	}
	copy(dst, src)
	return dst
}

var defaultPool = NewBufferPool()
