package grid

import (
	"errors"
	"fmt"
	"slices"

	"gonum.org/v1/gonum/floats"
)

// ErrShapeMismatch is returned when two fields, or a field and a grid, do not
// share the same shape.
var ErrShapeMismatch = errors.New("field shape mismatch")

// Field is a dense scalar value per grid cell. In level-set terms a negative
// value means "inside".
type Field struct {
	Shape []int
	Data  []float32
}

// NewField allocates a zero field over g.
func NewField(g *Grid) *Field {
	return &Field{Shape: g.Shape(), Data: make([]float32, g.Size())}
}

// Fill evaluates fn at every cell of g.
func Fill(g *Grid, fn func(x []float64) float64) *Field {
	f := NewField(g)
	g.Each(func(flat int, x []float64) {
		f.Data[flat] = float32(fn(x))
	})
	return f
}

func (f *Field) Clone() *Field {
	return &Field{Shape: slices.Clone(f.Shape), Data: slices.Clone(f.Data)}
}

// At reads the value of the cell at idx.
func (f *Field) At(idx ...int) float32 {
	flat, stride := 0, 1
	for k := len(f.Shape) - 1; k >= 0; k-- {
		flat += idx[k] * stride
		stride *= f.Shape[k]
	}
	return f.Data[flat]
}

// Bytes is the memory held by the field's data.
func (f *Field) Bytes() int { return 4 * len(f.Data) }

// Range returns the smallest and largest value of the field.
func (f *Field) Range() (lo, hi float64) {
	if len(f.Data) == 0 {
		return 0, 0
	}
	vs := make([]float64, len(f.Data))
	for i, v := range f.Data {
		vs[i] = float64(v)
	}
	return floats.Min(vs), floats.Max(vs)
}

// Inside counts the cells with a negative value.
func (f *Field) Inside() int {
	n := 0
	for _, v := range f.Data {
		if v < 0 {
			n++
		}
	}
	return n
}

// Matches reports an error wrapping ErrShapeMismatch unless f is laid out on g.
func (f *Field) Matches(g *Grid) error {
	if !slices.Equal(f.Shape, g.points) || len(f.Data) != g.Size() {
		return fmt.Errorf("%w: field %v, grid %v", ErrShapeMismatch, f.Shape, g.points)
	}
	return nil
}

// MinWith folds o into f by elementwise minimum (union of inside regions).
func (f *Field) MinWith(o *Field) error {
	if err := f.sameShape(o); err != nil {
		return err
	}
	for i, v := range o.Data {
		f.Data[i] = min(f.Data[i], v)
	}
	return nil
}

// MaxWith folds o into f by elementwise maximum (intersection of inside regions).
func (f *Field) MaxWith(o *Field) error {
	if err := f.sameShape(o); err != nil {
		return err
	}
	for i, v := range o.Data {
		f.Data[i] = max(f.Data[i], v)
	}
	return nil
}

func (f *Field) sameShape(o *Field) error {
	if !slices.Equal(f.Shape, o.Shape) || len(f.Data) != len(o.Data) {
		return fmt.Errorf("%w: %v vs %v", ErrShapeMismatch, f.Shape, o.Shape)
	}
	return nil
}

// Min returns the union of the given fields as a new field.
func Min(first *Field, rest ...*Field) (*Field, error) {
	out := first.Clone()
	for _, o := range rest {
		if err := out.MinWith(o); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Max returns the intersection of the given fields as a new field.
func Max(first *Field, rest ...*Field) (*Field, error) {
	out := first.Clone()
	for _, o := range rest {
		if err := out.MaxWith(o); err != nil {
			return nil, err
		}
	}
	return out, nil
}
