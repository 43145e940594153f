package ddo

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAStarMatchesBruteForce(t *testing.T) {
	for seed := uint64(1); seed <= 8; seed++ {
		k := randomKnap(seed, 12)
		for _, dom := range []bool{false, true} {
			m := k.model()
			if dom {
				m.Dominance = NewSimpleDominanceChecker[int, struct{}](knapDominance{}, k.NbVars())
			}
			s, err := NewAStar(m, WithLogger(quietLogger()))
			require.NoError(t, err)

			calls := 0
			st := s.Maximize(context.Background(), nil, func([]Decision, SearchStatistics) { calls++ })
			require.Equal(t, Optimal, st.Status, "seed %d", seed)
			assert.Equal(t, "astar", st.Driver)
			assert.Equal(t, k.bruteForce(), st.Incumbent, "seed %d dominance %v", seed, dom)
			assert.Equal(t, 1, calls, "the first complete assignment popped is optimal")

			sol, ok := s.BestSolution()
			require.True(t, ok)
			require.Len(t, sol, k.NbVars())
			value, weight := k.evaluate(sol)
			assert.Equal(t, st.Incumbent, value)
			assert.LessOrEqual(t, weight, k.capacity)
		}
	}
}

func TestAStarWeighted(t *testing.T) {
	k := randomKnap(3, 12)
	s, err := NewAStar(k.model(), WithWeight(3), WithLogger(quietLogger()))
	require.NoError(t, err)
	st := s.Maximize(context.Background(), nil, nil)
	assert.Equal(t, Sat, st.Status, "a weighted search proves nothing")
	assert.True(t, st.HasIncumbent)
	assert.LessOrEqual(t, st.Incumbent, k.bruteForce())

	sol, ok := s.BestSolution()
	require.True(t, ok)
	_, weight := k.evaluate(sol)
	assert.LessOrEqual(t, weight, k.capacity)
}

func TestAStarMinimize(t *testing.T) {
	for seed := uint64(1); seed <= 4; seed++ {
		k := randomKnap(seed, 10)
		s, err := NewAStar(costKnap{k}.model(), WithLogger(quietLogger()))
		require.NoError(t, err)
		st := s.Minimize(context.Background(), nil, nil)
		require.Equal(t, Optimal, st.Status)
		assert.Equal(t, -k.bruteForce(), st.Incumbent)
		v, ok := s.BestValue()
		require.True(t, ok)
		assert.Equal(t, -k.bruteForce(), v)
	}
}

func TestAStarMissingBoundDirection(t *testing.T) {
	k := randomKnap(1, 6)
	s, err := NewAStar(k.model(), WithLogger(quietLogger()))
	require.NoError(t, err)
	st := s.Minimize(context.Background(), nil, nil)
	assert.Equal(t, Unknown, st.Status, "only an upper bound was given")
	_, ok := s.BestValue()
	assert.False(t, ok)
}

func TestAStarDirection(t *testing.T) {
	k := randomKnap(4, 8)
	s, err := NewAStar(costKnap{k}.model(), WithDirection(MinimizeOnly), WithLogger(quietLogger()))
	require.NoError(t, err)

	st := s.Maximize(context.Background(), nil, nil)
	assert.Equal(t, Unknown, st.Status, "built for minimization")
	st = s.Minimize(context.Background(), nil, nil)
	require.Equal(t, Optimal, st.Status)
	assert.Equal(t, -k.bruteForce(), st.Incumbent)
}

func TestAStarStops(t *testing.T) {
	k := randomKnap(2, 14)
	s, err := NewAStar(k.model(), WithLogger(quietLogger()))
	require.NoError(t, err)
	st := s.Maximize(context.Background(), IterationLimit(1), nil)
	assert.Equal(t, Unknown, st.Status)
	assert.Equal(t, 1, st.Iterations)
	assert.GreaterOrEqual(t, st.BestBound, k.bruteForce())
}

func TestNewAStarErrors(t *testing.T) {
	k := randomKnap(1, 4)
	tests := []struct {
		name string
		m    Model[int]
		opts []Option
		want error
	}{
		{"no problem", Model[int]{UpperBound: k}, nil, ErrMissingProblem},
		{"no bound", Model[int]{Problem: k}, nil, ErrMissingUpperBound},
		{"weight below one", k.model(), []Option{WithWeight(0.5)}, ErrInvalidWeight},
		{"maximize only without upper bound", costKnap{k}.model(), []Option{WithDirection(MaximizeOnly)}, ErrMissingUpperBound},
		{"minimize only without lower bound", k.model(), []Option{WithDirection(MinimizeOnly)}, ErrMissingLowerBound},
		{"unknown direction", k.model(), []Option{WithDirection(Direction(7))}, ErrInvalidDirection},
		{"extended debug", k.model(), []Option{WithDebugLevel(DebugExtended)}, ErrUnsupportedDebugLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAStar(tt.m, tt.opts...)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestRevisits(t *testing.T) {
	v := newRevisits[int]()
	k := nodeKey[int]{state: 3, depth: 1}

	assert.True(t, v.admit(k, 5))
	assert.False(t, v.admit(k, 5), "equal value is not an improvement")
	assert.True(t, v.admit(k, 7))
	assert.False(t, v.close(k, 5), "stale copy")
	assert.True(t, v.close(k, 7))
	assert.False(t, v.admit(k, 7), "already closed with that value")
	assert.True(t, v.admit(k, 8), "strict improvement reopens")
}
