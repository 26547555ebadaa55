package eventbus

import (
	"reflect"

	"github.com/sirupsen/logrus"
)

// EventBus dispatches published events to every subscribed handler whose
// function signature accepts the event arguments. Dispatch is synchronous
// and in registration order; a panicking handler is recovered and logged so
// one subscriber can never break the publishing service.
type EventBus interface {
	Publish(args ...any)
	Subscribe(handler any)
	Unsubscribe(handler any)
	Clear()
	SubscribersCount() int
}

type bus struct {
	log      *logrus.Logger
	handlers []any
}

func NewEventPublisher(log *logrus.Logger) EventBus {
	return &bus{log: log}
}

// matchSignature reports whether handler is a func whose parameters accept
// args positionally. Interface parameters accept any implementation; nil
// arguments match pointer and interface parameters.
func matchSignature(handler any, args []any) bool {
	t := reflect.TypeOf(handler)
	if t.Kind() != reflect.Func {
		return false
	}
	if t.NumIn() != len(args) {
		return false
	}

	for i, arg := range args {
		paramType := t.In(i)
		if arg == nil {
			if paramType.Kind() != reflect.Interface && paramType.Kind() != reflect.Ptr {
				return false
			}
			continue
		}

		argType := reflect.TypeOf(arg)
		if paramType.Kind() == reflect.Interface {
			if !argType.Implements(paramType) {
				return false
			}
			continue
		}
		if !argType.AssignableTo(paramType) {
			return false
		}
	}

	return true
}

func (b *bus) Publish(args ...any) {
	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		in[i] = reflect.ValueOf(arg)
	}

	handled := false
	for _, handler := range b.handlers {
		if !matchSignature(handler, args) {
			continue
		}
		v := reflect.ValueOf(handler)
		func() {
			defer func() {
				if r := recover(); r != nil {
					if b.log != nil {
						b.log.Errorf("eventbus: handler %s panicked with args %v: %v", v.Type().String(), args, r)
					}
				}
			}()
			v.Call(in)
			handled = true
		}()
	}

	if !handled && b.log != nil {
		b.log.Warnf("eventbus: no matching subscribers for event with args: %v", in)
	}
}

func (b *bus) Subscribe(handler any) {
	if reflect.TypeOf(handler).Kind() != reflect.Func {
		panic("handler must be a function")
	}
	b.handlers = append(b.handlers, handler)
}

func (b *bus) Unsubscribe(handler any) {
	target := reflect.ValueOf(handler).Pointer()
	for i, h := range b.handlers {
		if reflect.ValueOf(h).Pointer() == target {
			b.handlers = append(b.handlers[:i], b.handlers[i+1:]...)
			return
		}
	}
}

func (b *bus) Clear() {
	b.handlers = nil
}

func (b *bus) SubscribersCount() int {
	return len(b.handlers)
}
