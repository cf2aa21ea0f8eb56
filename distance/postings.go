package distance

import "github.com/ic-timon/sparnn/sparse"

type posting struct {
	row   int32
	value float64
}

// postings is a column-major view of a sparse matrix, so that the products of one
// query against every reference row only touch the columns the query uses.
type postings map[int32][]posting

func newPostings(m *sparse.Matrix) postings {
	p := make(postings)
	for r := range m.Rows() {
		row := m.Row(r)
		for i, col := range row.Indices {
			p[col] = append(p[col], posting{row: int32(r), value: row.Values[i]})
		}
	}
	return p
}

// dot adds q·row into scores[row] for every reference row.
func (p postings) dot(q sparse.Vector, scores []float64) {
	for i, col := range q.Indices {
		qv := q.Values[i]
		for _, e := range p[col] {
			scores[e.row] += qv * e.value
		}
	}
}
