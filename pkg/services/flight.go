package services

import (
	"context"
	"errors"
)

var (
	// ErrSuperseded is returned by a load whose result was dropped because a
	// newer load for the same view started first.
	ErrSuperseded = errors.New("superseded by a newer request")
	// ErrNoPage is returned when paging past either end.
	ErrNoPage = errors.New("no such page")
)

// flight tracks the one in-flight request a view cares about. Each begin
// cancels the previous request and bumps the generation, so a late response
// can be recognised and discarded. Callers hold the owning mutex.
type flight struct {
	gen    uint64
	cancel context.CancelFunc
}

func (f *flight) begin(parent context.Context) (context.Context, uint64) {
	if f.cancel != nil {
		f.cancel()
	}
	f.gen++
	ctx, cancel := context.WithCancel(parent)
	f.cancel = cancel
	return ctx, f.gen
}

func (f *flight) current(gen uint64) bool {
	return f.gen == gen
}

func (f *flight) finish(gen uint64) {
	if f.gen == gen && f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
}

func (f *flight) stop() {
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	f.gen++
}
