package drx

import "fmt"

// Kind identifies which Observer method a [Notification] represents.
type Kind uint8

const (
	KindNext Kind = iota
	KindError
	KindCompleted
)

func (k Kind) String() string {
	switch k {
	case KindNext:
		return "next"
	case KindError:
		return "error"
	case KindCompleted:
		return "completed"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Notification is a single Observer call captured as a value.
// Value is only meaningful for KindNext, and Err only for KindError.
type Notification[T any] struct {
	Kind  Kind
	Value T
	Err   error
}

// Next returns a KindNext notification carrying v.
func Next[T any](v T) Notification[T] {
	return Notification[T]{Kind: KindNext, Value: v}
}

// Error returns a KindError notification carrying err.
func Error[T any](err error) Notification[T] {
	return Notification[T]{Kind: KindError, Err: err}
}

// Completed returns a KindCompleted notification.
func Completed[T any]() Notification[T] {
	return Notification[T]{Kind: KindCompleted}
}

// IsTerminal reports whether n is an error or completion.
func (n Notification[T]) IsTerminal() bool {
	return n.Kind == KindError || n.Kind == KindCompleted
}

// Accept calls the method of o that n represents.
func (n Notification[T]) Accept(o Observer[T]) {
	switch n.Kind {
	case KindNext:
		o.OnNext(n.Value)
	case KindError:
		o.OnError(n.Err)
	case KindCompleted:
		o.OnCompleted()
	default:
		panic(fmt.Errorf("BUG: unknown notification kind %v", n.Kind))
	}
}

func (n Notification[T]) String() string {
	switch n.Kind {
	case KindNext:
		return fmt.Sprintf("next(%v)", n.Value)
	case KindError:
		return fmt.Sprintf("error(%v)", n.Err)
	default:
		return n.Kind.String()
	}
}
