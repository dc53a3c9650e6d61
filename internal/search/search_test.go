package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ncontiero/dk-tube-sub000/internal/model"
)

func TestScore(t *testing.T) {
	t.Parallel()
	require.Equal(t, 0, Score("xyz", "abc"))
	require.Equal(t, 3, Score("abc", "cab"))
	// whole-query bonus
	require.Equal(t, 6+6, Score("Go Tour", "a go tour of things"))
	require.Equal(t, 1, Score("aa", "a"))
}

func TestRank_OrdersByScoreThenRecency(t *testing.T) {
	t.Parallel()
	now := time.Now()
	videos := []model.Video{
		{Title: "cooking pasta", CreatedAt: now.Add(-3 * time.Hour)},
		{Title: "golang tutorial", CreatedAt: now.Add(-2 * time.Hour)},
		{Title: "learn golang", CreatedAt: now.Add(-time.Hour)},
		{Title: "xyz", CreatedAt: now},
	}
	got := Rank("golang", videos, 10)
	require.Len(t, got, 2)
	require.Equal(t, "learn golang", got[0].Title)
	require.Equal(t, "golang tutorial", got[1].Title)
}

func TestRank_LimitAndEmptyQuery(t *testing.T) {
	t.Parallel()
	videos := []model.Video{{Title: "go"}, {Title: "go go"}, {Title: "go go go"}}
	require.Len(t, Rank("go", videos, 2), 2)
	require.Empty(t, Rank("   ", videos, 10))
}

func TestRank_ThreeQuarterThreshold(t *testing.T) {
	t.Parallel()
	videos := []model.Video{
		{Title: "abcx"}, // 3 of 4
		{Title: "abxx"}, // 2 of 4
		{Title: "a"},    // nonzero, still dropped
		{Title: "zzzz"},
	}
	got := Rank("abcd", videos, 10)
	require.Len(t, got, 1)
	require.Equal(t, "abcx", got[0].Title)
}
