package di

import (
	"context"
	"reflect"

	"github.com/google/uuid"

	"github.com/kbukum/sdi/errors"
)

// session is the state of one top-level call. It is owned by the calling
// goroutine and never shared.
type session struct {
	id     string
	ctx    context.Context
	scoped map[reflect.Type]reflect.Value
	stack  []reflect.Type
}

func newSession(ctx context.Context) *session {
	if ctx == nil {
		ctx = context.Background()
	}
	return &session{
		id:  uuid.NewString(),
		ctx: ctx,
	}
}

// enter pushes t onto the chain of types being built. It fails when t is
// already on the chain.
func (s *session) enter(t reflect.Type) error {
	for i, building := range s.stack {
		if building != t {
			continue
		}
		chain := make([]string, 0, len(s.stack)-i+1)
		for _, c := range s.stack[i:] {
			chain = append(chain, c.String())
		}
		chain = append(chain, t.String())
		return errors.CyclicDependency(chain)
	}
	s.stack = append(s.stack, t)
	return nil
}

func (s *session) leave() {
	s.stack = s.stack[:len(s.stack)-1]
}

func (s *session) scopedInstance(t reflect.Type) (reflect.Value, bool) {
	v, ok := s.scoped[t]
	return v, ok
}

func (s *session) storeScoped(t reflect.Type, v reflect.Value) {
	if s.scoped == nil {
		s.scoped = make(map[reflect.Type]reflect.Value)
	}
	s.scoped[t] = v
}
