// Package resource models remotely fetched values and the request identity
// checks that keep late completions from overwriting fresher state.
package resource

type Status int

const (
	StatusIdle Status = iota
	StatusFetching
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusFetching:
		return "fetching"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Resource is an immutable snapshot of a fetched value. Construct it with
// Idle, Fetching, Ready or Failed; the zero value is Idle.
type Resource[T any] struct {
	status Status
	value  T
	err    string
}

func Idle[T any]() Resource[T] {
	return Resource[T]{status: StatusIdle}
}

func Fetching[T any]() Resource[T] {
	return Resource[T]{status: StatusFetching}
}

func Ready[T any](value T) Resource[T] {
	return Resource[T]{status: StatusReady, value: value}
}

func Failed[T any](message string) Resource[T] {
	return Resource[T]{status: StatusFailed, err: message}
}

func (r Resource[T]) Status() Status {
	return r.status
}

// Value returns the ready value. ok is false in every other state.
func (r Resource[T]) Value() (T, bool) {
	if r.status != StatusReady {
		var zero T
		return zero, false
	}
	return r.value, true
}

func (r Resource[T]) Err() string {
	return r.err
}

func (r Resource[T]) IsIdle() bool     { return r.status == StatusIdle }
func (r Resource[T]) IsFetching() bool { return r.status == StatusFetching }
func (r Resource[T]) IsReady() bool    { return r.status == StatusReady }
func (r Resource[T]) IsFailed() bool   { return r.status == StatusFailed }
