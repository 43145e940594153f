package problems

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitrdm/ddo/pkg/ddo"
)

func TestGolombOptimalRulers(t *testing.T) {
	tests := []struct {
		marks  int
		length float64
		heavy  bool
	}{
		{marks: 3, length: 3},
		{marks: 4, length: 6},
		{marks: 5, length: 11},
		{marks: 6, length: 17},
		{marks: 8, length: 34, heavy: true},
	}
	for _, tt := range tests {
		if tt.heavy && testing.Short() && !shouldRunHeavy() {
			t.Logf("skipping %d marks in short mode", tt.marks)
			continue
		}
		g := &Golomb{Marks: tt.marks}
		require.NoError(t, g.Validate())
		st, sol := maximize(t, g.Model(), ddo.WithFixedWidth(10))
		require.Equal(t, ddo.Optimal, st.Status, "%d marks", tt.marks)
		assert.Equal(t, -tt.length, st.Incumbent, "%d marks", tt.marks)

		ruler := g.Ruler(sol)
		assert.True(t, IsGolombRuler(ruler), "%v", ruler)
		assert.Equal(t, int(tt.length), ruler[len(ruler)-1])
	}
}

func TestGolombExactCompilation(t *testing.T) {
	g := &Golomb{Marks: 5}
	d := compile(t, g.Model(), ddo.Exact, 0)
	v, ok := d.BestValue()
	require.True(t, ok)
	assert.Equal(t, -11.0, v)
	sol, _ := d.BestSolution()
	assert.True(t, IsGolombRuler(g.Ruler(sol)))
}

func TestGolombEightMarksExactCompilation(t *testing.T) {
	if testing.Short() && !shouldRunHeavy() {
		t.Skip("the exact diagram of 8 marks holds about a hundred thousand nodes")
	}
	g := &Golomb{Marks: 8, MaxLength: 34}
	require.NoError(t, g.Validate())
	d := compile(t, g.Model(), ddo.Exact, 0)
	v, ok := d.BestValue()
	require.True(t, ok)
	assert.Equal(t, -34.0, v)

	sol, _ := d.BestSolution()
	ruler := g.Ruler(sol)
	assert.True(t, IsGolombRuler(ruler), "%v", ruler)
	assert.Equal(t, 34, ruler[len(ruler)-1])
}

func TestGolombRelaxationIsABound(t *testing.T) {
	g := &Golomb{Marks: 6}
	for w := 1; w <= 8; w++ {
		relaxed := compile(t, g.Model(), ddo.Relaxed, w)
		v, ok := relaxed.BestValue()
		require.True(t, ok)
		assert.GreaterOrEqual(t, v, -17.0, "width %d", w)

		restricted := compile(t, g.Model(), ddo.Restricted, w)
		if v, ok := restricted.BestValue(); ok {
			assert.LessOrEqual(t, v, -17.0, "width %d", w)
			sol, _ := restricted.BestSolution()
			assert.True(t, IsGolombRuler(g.Ruler(sol)))
		}
	}
}

func TestGolombDomain(t *testing.T) {
	g := &Golomb{Marks: 4, MaxLength: 8}
	// marks 0 1 3: distances 1 2 3
	s := g.Transition(g.Transition(g.InitialState(), ddo.Decision{Var: 0, Value: 1}), ddo.Decision{Var: 1, Value: 3})
	assert.Equal(t, GolombState{Marks: 0b1011, Dists: 0b1110, Last: 3}, s)

	var domain []int
	for p := range g.Domain(s, 2) {
		domain = append(domain, p)
	}
	// 4 repeats 1 and 3, 5 repeats 2, 6 repeats 3
	assert.Equal(t, []int{7, 8}, domain)
	assert.Equal(t, -4.0, g.TransitionCost(s, ddo.Decision{Var: 2, Value: 7}))

	// free distances 4 and 5
	assert.Equal(t, -9.0, g.FastUpperBound(s, []int{2, 3}))
}

func TestGolombRelaxEdge(t *testing.T) {
	g := &Golomb{Marks: 4}
	a := GolombState{Marks: 0b0011, Dists: 0b0010, Last: 1}
	b := GolombState{Marks: 0b0101, Dists: 0b0100, Last: 2}
	merged := g.MergeStates(func(yield func(GolombState) bool) {
		_ = yield(a) && yield(b)
	})
	assert.Equal(t, GolombState{Marks: 0b0001, Dists: 0, Last: 1}, merged)
	assert.Equal(t, -1.0, g.RelaxEdge(g.InitialState(), b, merged, ddo.Decision{Var: 0, Value: 2}, -2))
}

func TestIsGolombRuler(t *testing.T) {
	assert.True(t, IsGolombRuler([]int{0, 1, 4, 6}))
	assert.False(t, IsGolombRuler([]int{0, 1, 2}))
	assert.False(t, IsGolombRuler([]int{0, 3, 3}))
	assert.True(t, IsGolombRuler([]int{0}))
}

func TestGolombValidate(t *testing.T) {
	assert.Error(t, (&Golomb{}).Validate())
	assert.Error(t, (&Golomb{Marks: 3, MaxLength: 64}).Validate())
	assert.NoError(t, (&Golomb{Marks: 3, MaxLength: 63}).Validate())
}
