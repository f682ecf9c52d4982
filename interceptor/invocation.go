package interceptor

import (
	"fmt"
	"sync"

	"github.com/luxas/deklarative/instrument/internal/permit"
	"github.com/luxas/deklarative/instrument/match"
)

// Arguments is a read-only view of call arguments.
type Arguments struct {
	values []interface{}
}

// NewArguments returns Arguments holding a copy of values.
func NewArguments(values ...interface{}) Arguments {
	return Arguments{values: append([]interface{}(nil), values...)}
}

// Len returns the number of arguments.
func (a Arguments) Len() int { return len(a.values) }

// At returns the i-th argument, or nil if i is out of range.
func (a Arguments) At(i int) interface{} {
	if i < 0 || i >= len(a.values) {
		return nil
	}
	return a.values[i]
}

// Values returns a copy of all arguments.
func (a Arguments) Values() []interface{} { return append([]interface{}(nil), a.values...) }

// Invocation is one call of an enhanced method, as seen by its
// interceptors. All interceptors of a call share the same arguments and
// return value, but each one sees the argument-mutation permission of the
// point it was bound through.
type Invocation struct {
	state        *invocationState
	overrideArgs bool
}

type invocationState struct {
	inst   Instance
	method *match.MemberDescription

	mu         sync.Mutex
	args       []interface{}
	ret        interface{}
	retErr     error
	retDefined bool
}

// NewInvocation describes a call of method on inst with the given
// arguments. The returned Invocation does not allow replacing arguments.
func NewInvocation(inst Instance, method *match.MemberDescription, args ...interface{}) *Invocation {
	return &Invocation{state: &invocationState{
		inst:   inst,
		method: method,
		args:   append([]interface{}(nil), args...),
	}}
}

// View returns a view of the same call that allows replacing its
// arguments if allow is true and t is granted. Only the weaving engine
// holds a granted token; any other view is read-only.
func (inv *Invocation) View(t permit.Token, allow bool) *Invocation {
	return &Invocation{state: inv.state, overrideArgs: allow && t.Granted()}
}

// OverrideArgs tells whether SetArgument and SetArguments are allowed.
func (inv *Invocation) OverrideArgs() bool { return inv.overrideArgs }

// Instance returns the object the method was called on.
func (inv *Invocation) Instance() Instance { return inv.state.inst }

// Method describes the called method.
func (inv *Invocation) Method() *match.MemberDescription { return inv.state.method }

// Arguments returns the current arguments.
func (inv *Invocation) Arguments() Arguments {
	inv.state.mu.Lock()
	defer inv.state.mu.Unlock()
	return NewArguments(inv.state.args...)
}

// SetArgument replaces the i-th argument. It fails with an
// *ArgumentsReadOnlyError unless the point was declared with override
// arguments.
func (inv *Invocation) SetArgument(i int, v interface{}) error {
	if !inv.overrideArgs {
		return inv.readOnly()
	}
	inv.state.mu.Lock()
	defer inv.state.mu.Unlock()
	if i < 0 || i >= len(inv.state.args) {
		return fmt.Errorf("%s: argument index %d out of range [0,%d)", inv.signature(), i, len(inv.state.args))
	}
	inv.state.args[i] = v
	return nil
}

// SetArguments replaces all arguments. The number of arguments can't
// change.
func (inv *Invocation) SetArguments(values ...interface{}) error {
	if !inv.overrideArgs {
		return inv.readOnly()
	}
	inv.state.mu.Lock()
	defer inv.state.mu.Unlock()
	if len(values) != len(inv.state.args) {
		return fmt.Errorf("%s: got %d arguments, want %d", inv.signature(), len(values), len(inv.state.args))
	}
	inv.state.args = append([]interface{}(nil), values...)
	return nil
}

// DefineReturnValue makes the call return ret and err without calling the
// original method. After hooks still run.
func (inv *Invocation) DefineReturnValue(ret interface{}, err error) {
	inv.state.mu.Lock()
	defer inv.state.mu.Unlock()
	inv.state.ret, inv.state.retErr, inv.state.retDefined = ret, err, true
}

// ReturnValueDefined tells whether an interceptor called DefineReturnValue.
func (inv *Invocation) ReturnValueDefined() bool {
	inv.state.mu.Lock()
	defer inv.state.mu.Unlock()
	return inv.state.retDefined
}

// ReturnValue returns what was given to DefineReturnValue.
func (inv *Invocation) ReturnValue() (interface{}, error) {
	inv.state.mu.Lock()
	defer inv.state.mu.Unlock()
	return inv.state.ret, inv.state.retErr
}

func (inv *Invocation) readOnly() error {
	return &ArgumentsReadOnlyError{Method: inv.signature()}
}

func (inv *Invocation) signature() string {
	if inv.state.method == nil {
		return "<unknown>"
	}
	return inv.state.method.Signature()
}
