// Package mempool keeps size-classed buffer pools for the per-frame image passes.
package mempool

import (
	"sync"
)

const classStep = 1024

// sizeClass rounds n up to the next multiple of 1024, with 1024 as the minimum.
func sizeClass(n int) int {
	if n <= classStep {
		return classStep
	}
	return (n + classStep - 1) / classStep * classStep
}

// Pool hands out slices of T grouped by size class.
type Pool[T any] struct {
	pools sync.Map // size class -> *sync.Pool
	zero  bool
}

// NewPool creates a pool. With zero set, Get clears the returned slice.
func NewPool[T any](zero bool) *Pool[T] {
	return &Pool[T]{zero: zero}
}

func (p *Pool[T]) class(cls int) *sync.Pool {
	sp, _ := p.pools.LoadOrStore(cls, &sync.Pool{New: func() any {
		buf := make([]T, cls)
		return &buf
	}})
	return sp.(*sync.Pool) //nolint:forcetypeassert // only *sync.Pool is stored
}

// Get returns a slice of length n. The caller returns it with Put when done.
func (p *Pool[T]) Get(n int) []T {
	if n < 0 {
		n = 0
	}
	cls := sizeClass(n)
	bp, _ := p.class(cls).Get().(*[]T)
	var buf []T
	if bp == nil || cap(*bp) < cls {
		buf = make([]T, cls)
	} else {
		buf = (*bp)[:cap(*bp)]
	}
	buf = buf[:n]
	if p.zero {
		clear(buf)
	}
	return buf
}

// Put returns a slice to the pool. Nil slices are ignored; slices smaller than the
// minimum class are dropped.
func (p *Pool[T]) Put(buf []T) {
	if cap(buf) < classStep {
		return
	}
	// Round down so every pooled slice satisfies its class.
	cls := cap(buf) / classStep * classStep
	buf = buf[:cap(buf)]
	p.class(cls).Put(&buf)
}

// Bools backs binary masks; slices are cleared on Get.
var Bools = NewPool[bool](true)

// Ints backs index queues; contents are not cleared.
var Ints = NewPool[int](false)
