package sketch

// matrix is a row-major depth x width grid of signed counters.
type matrix struct {
	cells []int64
	width int
	depth int
}

func newMatrix(depth, width int) *matrix {
	return &matrix{
		cells: make([]int64, depth*width),
		width: width,
		depth: depth,
	}
}

func (m *matrix) index(row int, bucket uint64) int {
	if row < 0 || row >= m.depth || bucket >= uint64(m.width) {
		panic("sketch: matrix cell out of range")
	}
	return row*m.width + int(bucket)
}

func (m *matrix) increment(row int, bucket uint64, delta int64) {
	m.cells[m.index(row, bucket)] += delta
}

func (m *matrix) read(row int, bucket uint64) int64 {
	return m.cells[m.index(row, bucket)]
}
