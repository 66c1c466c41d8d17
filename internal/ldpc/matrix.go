package ldpc

// buildMatrix constructs the sparse LDPC parity-check matrix: n-k rows
// (one per parity block), each row listing the systematic column
// indices [0,k) it XORs together. For each systematic column, it
// scatters n1 "1" entries across rows using a shuffled
// pick-without-replacement table (pTbl) drawn from the prng, falling
// back to a plain random row pick once the table is exhausted; it then
// tops up any row left with degree 0 or 1 so every parity equation
// depends on at least two columns.
func buildMatrix(k, n, n1 int, seed uint32) [][]int {
	rows := n - k
	gen := newPRNG(seed)

	pTbl := make([]int64, k*n1)
	for p := range pTbl {
		pTbl[p] = int64(p) % int64(rows)
	}

	matrix := make([][]int, rows)
	for i := range matrix {
		matrix[i] = nil
	}
	hasCol := func(row, col int) bool {
		for _, c := range matrix[row] {
			if c == col {
				return true
			}
		}
		return false
	}

	t := int64(0)
	for col := 0; col < k; col++ {
		for h := 0; h < n1; h++ {
			i := t
			for i < int64(k*n1) && hasCol(int(pTbl[i]), col) {
				i++
			}
			if i >= int64(k*n1) {
				var row int64
				for {
					row = gen.mod(int64(rows))
					if !hasCol(int(row), col) {
						break
					}
				}
				matrix[row] = append(matrix[row], col)
			} else {
				var p int64
				for {
					p = gen.mod(int64(k*n1)-t) + t
					if !hasCol(int(pTbl[p]), col) {
						break
					}
				}
				matrix[pTbl[p]] = append(matrix[pTbl[p]], col)
				pTbl[p] = pTbl[t]
				t++
			}
		}
	}

	for row := 0; row < rows; row++ {
		degree := len(matrix[row])
		if degree == 0 {
			col := int(gen.mod(int64(k)))
			matrix[row] = append(matrix[row], col)
		}
		if degree <= 1 {
			var col int64
			for {
				col = gen.mod(int64(k))
				if !hasCol(row, int(col)) {
					break
				}
			}
			matrix[row] = append(matrix[row], int(col))
		}
	}

	return matrix
}
