package dispatch

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/dolthub/swiss"

	"github.com/wippyai/mswasm-runtime/errors"
	"github.com/wippyai/mswasm-runtime/value"
)

// Signature is a function type.
type Signature struct {
	Params  []value.Type
	Results []value.Type
}

// Sig builds a signature with the given parameter types and no results.
func Sig(params ...value.Type) Signature {
	return Signature{Params: params}
}

// Returning returns a copy of s with the given result types.
func (s Signature) Returning(results ...value.Type) Signature {
	s.Results = results
	return s
}

// Equal reports whether two signatures are identical.
func (s Signature) Equal(o Signature) bool {
	return slices.Equal(s.Params, o.Params) && slices.Equal(s.Results, o.Results)
}

func (s Signature) String() string {
	return "(" + joinTypes(s.Params) + ") -> (" + joinTypes(s.Results) + ")"
}

func joinTypes(ts []value.Type) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = t.String()
	}
	return strings.Join(parts, ", ")
}

// Func is the implementation of a callable function.
type Func func(ctx context.Context, args []value.Value) ([]value.Value, error)

// Target is a function that can be bound to a table slot.
type Target struct {
	Fn   Func
	Name string
	Sig  Signature
}

// Table is the indirect call table.
type Table struct {
	slots *swiss.Map[uint32, *Target]
	size  uint32
}

// initialSlots is the map capacity hint. Slots are sparse, so the table
// size only bounds indices and never sizes the map.
const initialSlots = 8

// New creates a table with size empty slots.
func New(size uint32) *Table {
	return &Table{
		slots: swiss.NewMap[uint32, *Target](initialSlots),
		size:  size,
	}
}

// Len returns the number of slots.
func (t *Table) Len() int {
	return int(t.size)
}

// Bound returns the number of occupied slots.
func (t *Table) Bound() int {
	return t.slots.Count()
}

// Bind installs target at idx, replacing any previous binding.
func (t *Table) Bind(idx uint32, target *Target) error {
	if err := t.checkIndex(idx); err != nil {
		return err
	}
	if target == nil || target.Fn == nil {
		return errors.InvalidInput(errors.PhaseDispatch, fmt.Sprintf("slot %d: target has no function", idx))
	}
	t.slots.Put(idx, target)
	return nil
}

// Unbind empties slot idx.
func (t *Table) Unbind(idx uint32) error {
	if err := t.checkIndex(idx); err != nil {
		return err
	}
	t.slots.Delete(idx)
	return nil
}

// Grow appends n empty slots and returns the previous size.
func (t *Table) Grow(n uint32) (uint32, error) {
	old := t.size
	if uint64(old)+uint64(n) > uint64(^uint32(0)) {
		return old, errors.Overflow(errors.PhaseDispatch, n, "table size exceeds 32-bit index space")
	}
	t.size += n
	return old, nil
}

// Lookup returns the target bound at idx.
func (t *Table) Lookup(idx uint32) (*Target, error) {
	if err := t.checkIndex(idx); err != nil {
		return nil, err
	}
	target, ok := t.slots.Get(idx)
	if !ok {
		return nil, errors.New(errors.PhaseDispatch, errors.KindNotFound).
			Value(idx).Detail("slot %d is empty", idx).Build()
	}
	return target, nil
}

// Each calls fn for every bound slot in index order.
func (t *Table) Each(fn func(idx uint32, target *Target)) {
	idxs := make([]uint32, 0, t.slots.Count())
	t.slots.Iter(func(idx uint32, _ *Target) bool {
		idxs = append(idxs, idx)
		return false
	})
	slices.Sort(idxs)
	for _, idx := range idxs {
		target, _ := t.slots.Get(idx)
		fn(idx, target)
	}
}

// Call invokes the target at idx with args.
func (t *Table) Call(ctx context.Context, idx uint32, args []value.Value) ([]value.Value, error) {
	target, err := t.Lookup(idx)
	if err != nil {
		return nil, err
	}
	return target.Call(ctx, args)
}

// CallAs invokes the target at idx after checking that its signature is
// exactly want.
func (t *Table) CallAs(ctx context.Context, idx uint32, want Signature, args []value.Value) ([]value.Value, error) {
	target, err := t.Lookup(idx)
	if err != nil {
		return nil, err
	}
	if !target.Sig.Equal(want) {
		return nil, errors.TypeMismatch(errors.PhaseDispatch, []string{target.Name}, want.String(), target.Sig.String())
	}
	return target.Call(ctx, args)
}

func (t *Table) checkIndex(idx uint32) error {
	if idx >= t.size {
		return errors.IndexOutOfBounds(errors.PhaseDispatch, "table", int(idx), int(t.size))
	}
	return nil
}

// Call checks args against the signature, runs the function and checks its
// results.
func (target *Target) Call(ctx context.Context, args []value.Value) ([]value.Value, error) {
	if err := checkValues(target.Name, "param", target.Sig.Params, args); err != nil {
		return nil, err
	}
	results, err := target.Fn(ctx, args)
	if err != nil {
		return nil, err
	}
	if err := checkValues(target.Name, "result", target.Sig.Results, results); err != nil {
		return nil, err
	}
	return results, nil
}

func checkValues(name, kind string, types []value.Type, vals []value.Value) error {
	if len(vals) != len(types) {
		return errors.Arity(errors.PhaseDispatch, []string{name, kind + "s"}, len(types), len(vals))
	}
	for i, want := range types {
		if got := value.TypeOf(vals[i]); got != want {
			return errors.TypeMismatch(errors.PhaseDispatch, []string{name, kind, strconv.Itoa(i)}, want.String(), got.String())
		}
	}
	return nil
}
