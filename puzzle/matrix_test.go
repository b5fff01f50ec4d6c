package puzzle

import (
	"reflect"
	"testing"
)

/*

Tests for the dancing-links matrix.  These work the structure
directly, below the solver: build shape, cover/uncover
reversibility, and clue application.

*/

func ringLength(m *matrix) int {
	count := 0
	for h := m.nodes[matrixRoot].right; h != matrixRoot; h = m.nodes[h].right {
		count++
	}
	return count
}

func TestNewMatrix(t *testing.T) {
	for _, slen := range []int{4, 9} {
		gg, e := squareGridGeometry(slen * slen)
		if e != nil {
			t.Fatalf("side %d: failed to get geometry: %v", slen, e)
		}
		m := newMatrix(gg)
		want := 1 + gg.kcount + groupCount*gg.ccount*gg.sidelen
		if len(m.nodes) != want {
			t.Errorf("side %d: arena has %d nodes, expected %d",
				slen, len(m.nodes), want)
		}
		// the header ring holds every constraint in index order
		h, walked := m.nodes[matrixRoot].right, 0
		for ; h != matrixRoot; h = m.nodes[h].right {
			walked++
			if h != walked {
				t.Fatalf("side %d: ring position %d holds header %d",
					slen, walked, h)
			}
		}
		if walked != gg.kcount {
			t.Errorf("side %d: ring has %d headers, expected %d",
				slen, walked, gg.kcount)
		}
		// every column holds one node per candidate of its
		// constraint, and every node knows its header
		for k := 0; k < gg.kcount; k++ {
			if m.nodes[k+1].count != gg.sidelen {
				t.Fatalf("side %d: header %d count is %d, expected %d",
					slen, k+1, m.nodes[k+1].count, gg.sidelen)
			}
			members := 0
			for n := m.nodes[k+1].down; n != k+1; n = m.nodes[n].down {
				members++
				if m.nodes[n].header != k+1 {
					t.Fatalf("side %d: node %d in column %d has header %d",
						slen, n, k+1, m.nodes[n].header)
				}
			}
			if members != gg.sidelen {
				t.Fatalf("side %d: column %d holds %d nodes, expected %d",
					slen, k+1, members, gg.sidelen)
			}
		}
	}
}

func TestCandidateRowRing(t *testing.T) {
	gg, e := squareGridGeometry(16)
	if e != nil {
		t.Fatalf("Failed to get 4x4 geometry: %v", e)
	}
	m := newMatrix(gg)
	// find the candidate (1, 2, 3) in its cell column and check
	// that its row ring visits its other three constraints in
	// group order
	ks := gg.constraints(1, 2, 3)
	cell := 0
	for n := m.nodes[ks[cellGroup]+1].down; n != ks[cellGroup]+1; n = m.nodes[n].down {
		if m.nodes[n].val == 3 {
			cell = n
			break
		}
	}
	if cell == 0 {
		t.Fatalf("No candidate (1, 2, 3) in its cell column")
	}
	if m.nodes[cell].row != 1 || m.nodes[cell].col != 2 {
		t.Fatalf("Candidate node carries (%d, %d), expected (1, 2)",
			m.nodes[cell].row, m.nodes[cell].col)
	}
	got := []int{}
	for o := m.nodes[cell].right; o != cell; o = m.nodes[o].right {
		got = append(got, m.nodes[o].header)
		if m.nodes[o].row != 1 || m.nodes[o].col != 2 || m.nodes[o].val != 3 {
			t.Errorf("Row ring node %d carries (%d, %d, %d)",
				o, m.nodes[o].row, m.nodes[o].col, m.nodes[o].val)
		}
	}
	want := []int{ks[rowGroup] + 1, ks[colGroup] + 1, ks[boxGroup] + 1}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Row ring visits headers %v, expected %v", got, want)
	}
}

func TestCoverUncover(t *testing.T) {
	gg, e := squareGridGeometry(16)
	if e != nil {
		t.Fatalf("Failed to get 4x4 geometry: %v", e)
	}
	m := newMatrix(gg)
	before := make([]linkNode, len(m.nodes))
	copy(before, m.nodes)

	m.cover(1) // the constraint "cell (0, 0) holds a value"
	if ringLength(m) != gg.kcount-1 {
		t.Errorf("Ring has %d headers after cover, expected %d",
			ringLength(m), gg.kcount-1)
	}
	// each candidate of the covered column loses its other three
	// memberships, one from each of twelve distinct columns
	hit := map[int]bool{}
	for v := 1; v <= 4; v++ {
		ks := gg.constraints(0, 0, v)
		for _, k := range ks[1:] {
			hit[k+1] = true
		}
	}
	if len(hit) != 12 {
		t.Fatalf("Expected 12 distinct pruned columns, computed %d", len(hit))
	}
	for k := 1; k < gg.kcount; k++ {
		want := 4
		if hit[k+1] {
			want = 3
		}
		if m.nodes[k+1].count != want {
			t.Errorf("Header %d count is %d after cover, expected %d",
				k+1, m.nodes[k+1].count, want)
		}
	}
	// the covered column itself stays linked for uncover to walk
	members := 0
	for n := m.nodes[1].down; n != 1; n = m.nodes[n].down {
		members++
	}
	if members != 4 {
		t.Errorf("Covered column holds %d nodes, expected 4", members)
	}

	// covers nest like a stack, and each uncover restores the
	// arena bit for bit
	middle := make([]linkNode, len(m.nodes))
	copy(middle, m.nodes)
	m.cover(2)
	m.uncover(2)
	if !reflect.DeepEqual(m.nodes, middle) {
		t.Errorf("Nested cover/uncover did not restore the arena")
	}
	m.uncover(1)
	if !reflect.DeepEqual(m.nodes, before) {
		t.Errorf("Final uncover did not restore the fresh arena")
	}
}

func TestApplyClues(t *testing.T) {
	gg, e := squareGridGeometry(16)
	if e != nil {
		t.Fatalf("Failed to get 4x4 geometry: %v", e)
	}
	conflicts := [][]int{rowConflict4Values, colConflict4Values, boxConflict4Values}
	for i, values := range conflicts {
		m := newMatrix(gg)
		if m.applyClues(values) {
			t.Errorf("case %d: conflicting clues applied", i+1)
		}
	}
	// unsatisfiable is not conflicting: these clues apply fine
	m := newMatrix(gg)
	if !m.applyClues(unsatisfiable4Values) {
		t.Errorf("Unsatisfiable clues reported a conflict")
	}
	if ringLength(m) != gg.kcount-4*4 {
		t.Errorf("Ring has %d headers after 4 clues, expected %d",
			ringLength(m), gg.kcount-4*4)
	}
	// a complete grid covers every constraint
	m = newMatrix(gg)
	if !m.applyClues(complete4Values) {
		t.Errorf("Complete grid reported a conflict")
	}
	if m.nodes[matrixRoot].right != matrixRoot {
		t.Errorf("Ring is not empty after a complete grid")
	}
}
