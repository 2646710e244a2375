// Package engine hosts the processors that apply typed events to the domain
// state: one engine per operation family, each following the same
// validate -> mutate -> persist -> report shape. Engines never propagate
// errors past their boundary; every call returns a Result carrying a
// best-effort entity snapshot alongside any error.
package engine

import (
	"time"

	"exchcore/cache"
)

// Result is the outcome of one processor pass. Entity is the best-effort
// snapshot of the acted-on entity, populated even when Err is set.
type Result struct {
	Entity any
	Err    error
}

func success(entity any) Result {
	return Result{Entity: entity}
}

func failure(entity any, err error) Result {
	return Result{Entity: entity, Err: err}
}

// nowFunc is the time source engines stamp entities with. Overridable per
// engine for deterministic tests.
type nowFunc func() int64

func defaultNow() int64 { return time.Now().Unix() }

// base carries the pieces every engine shares.
type base struct {
	reg   *cache.Registry
	nowFn nowFunc
}

func newBase(reg *cache.Registry) base {
	return base{reg: reg, nowFn: defaultNow}
}

func (b *base) now() int64 {
	if b.nowFn == nil {
		return time.Now().Unix()
	}
	return b.nowFn()
}

// setNowFunc overrides the time source, primarily used in tests.
func (b *base) setNowFunc(now nowFunc) {
	if now == nil {
		b.nowFn = defaultNow
		return
	}
	b.nowFn = now
}
