package solver

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"reach/grid"

	"github.com/sbinet/npyio/npy"
)

// .npy version 1.0: magic, version, little-endian header length, then a
// Python dict literal padded so the data starts on a 64 byte boundary.
var npyMagic = []byte("\x93NUMPY")

const npyAlign = 64

// Upper bound on the data section accepted from a stream of unknown length.
const maxNPYBytes = 1 << 36

// WriteNPY writes f as a little-endian float32 C-order array.
func WriteNPY(w io.Writer, f *grid.Field) error {
	dims := make([]string, len(f.Shape))
	for i, n := range f.Shape {
		dims[i] = strconv.Itoa(n)
	}
	shape := strings.Join(dims, ", ")
	if len(dims) == 1 {
		shape += ","
	}
	header := fmt.Sprintf("{'descr': '<f4', 'fortran_order': False, 'shape': (%s), }", shape)
	pad := npyAlign - (len(npyMagic)+4+len(header)+1)%npyAlign
	if pad == npyAlign {
		pad = 0
	}
	header += strings.Repeat(" ", pad) + "\n"
	if len(header) > math.MaxUint16 {
		return fmt.Errorf("npy header too long: %d bytes", len(header))
	}

	bw := bufio.NewWriter(w)
	bw.Write(npyMagic)
	bw.Write([]byte{1, 0})
	binary.Write(bw, binary.LittleEndian, uint16(len(header)))
	bw.WriteString(header)
	if err := binary.Write(bw, binary.LittleEndian, f.Data); err != nil {
		return fmt.Errorf("failed to write npy data: %w", err)
	}
	return bw.Flush()
}

// ReadNPY reads a C-order float32 or float64 array. float64 data is narrowed
// to float32. Arrays larger than maxNPYBytes are rejected.
func ReadNPY(r io.Reader) (*grid.Field, error) {
	return readNPY(r, maxNPYBytes)
}

func readNPY(r io.Reader, limit int64) (*grid.Field, error) {
	nr, err := npy.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read npy header: %w", err)
	}
	descr := nr.Header.Descr
	if descr.Fortran {
		return nil, errors.New("fortran-order npy arrays are not supported")
	}

	var itemSize int64
	switch descr.Type {
	case "<f4":
		itemSize = 4
	case "<f8":
		itemSize = 8
	default:
		return nil, fmt.Errorf("unsupported npy dtype %q", descr.Type)
	}

	size, err := npySize(descr.Shape, limit/itemSize)
	if err != nil {
		return nil, err
	}

	f := &grid.Field{Shape: append([]int{}, descr.Shape...), Data: make([]float32, size)}
	if itemSize == 4 {
		if err := nr.Read(&f.Data); err != nil {
			return nil, fmt.Errorf("failed to read npy data: %w", err)
		}
	} else {
		wide := make([]float64, size)
		if err := nr.Read(&wide); err != nil {
			return nil, fmt.Errorf("failed to read npy data: %w", err)
		}
		if len(wide) != size {
			return nil, fmt.Errorf("npy data holds %d values, shape %v needs %d", len(wide), f.Shape, size)
		}
		for i, v := range wide {
			f.Data[i] = float32(v)
		}
	}
	if len(f.Data) != size {
		return nil, fmt.Errorf("npy data holds %d values, shape %v needs %d", len(f.Data), f.Shape, size)
	}
	return f, nil
}

// npySize multiplies out shape, failing once it passes maxElems.
func npySize(shape []int, maxElems int64) (int, error) {
	size := int64(1)
	for _, n := range shape {
		if n < 0 {
			return 0, fmt.Errorf("bad npy shape %v", shape)
		}
		if n > 0 && size > maxElems/int64(n) {
			return 0, fmt.Errorf("npy shape %v exceeds %d values", shape, maxElems)
		}
		size *= int64(n)
	}
	if size > maxElems {
		return 0, fmt.Errorf("npy shape %v exceeds %d values", shape, maxElems)
	}
	return int(size), nil
}

func SaveNPY(path string, f *grid.Field) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer out.Close()

	if err := WriteNPY(out, f); err != nil {
		return err
	}
	return out.Close()
}

func LoadNPY(path string) (*grid.Field, error) {
	in, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer in.Close()
	info, err := in.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	return readNPY(in, min(info.Size(), maxNPYBytes))
}
