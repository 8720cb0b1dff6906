package triangle

import (
	"github.com/pkg/errors"
)

const (
	// MaxRows is the largest triangle whose row sums (2^i) still fit a uint64
	MaxRows = 64
)

var (
	ErrInvalidPopulationSize = errors.New("invalid population size")
)

// Triangle holds the binomial rows. Row i has i+1 entries and each entry
// is the number of participant instances occupying that cell.
type Triangle [][]uint64

type Cell struct {
	Row   int
	Col   int
	Value uint64
}

func Generate(rows int) (Triangle, error) {
	if rows < 1 || rows > MaxRows {
		return nil, errors.Wrapf(ErrInvalidPopulationSize, "rows must be within [1, %d], got %d", MaxRows, rows)
	}

	t := make(Triangle, rows)
	for i := 0; i < rows; i++ {
		row := make([]uint64, i+1)
		row[0], row[i] = 1, 1

		for j := 1; j < i; j++ {
			row[j] = t[i-1][j-1] + t[i-1][j]
		}

		t[i] = row
	}

	return t, nil
}

func (t Triangle) Rows() int {
	return len(t)
}

// Value returns the cell value or 0 when (row, col) lies outside the triangle
func (t Triangle) Value(row, col int) uint64 {
	if row < 0 || row >= len(t) || col < 0 || col > row {
		return 0
	}

	return t[row][col]
}

func (t Triangle) RowSum(row int) uint64 {
	if row < 0 || row >= len(t) {
		return 0
	}

	var sum uint64
	for _, v := range t[row] {
		sum += v
	}

	return sum
}

// Total is the participant count of the population, the sum over every cell.
func (t Triangle) Total() uint64 {
	var total uint64
	for i := range t {
		total += t.RowSum(i)
	}

	return total
}

// Cells lists every cell in row-major order
func (t Triangle) Cells() []Cell {
	cells := make([]Cell, 0, len(t)*(len(t)+1)/2)

	for i, row := range t {
		for j, v := range row {
			cells = append(cells, Cell{Row: i, Col: j, Value: v})
		}
	}

	return cells
}
