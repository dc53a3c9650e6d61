// Package search ranks videos against a free-text query.
package search

import (
	"sort"
	"strings"
	"unicode"

	"github.com/ncontiero/dk-tube-sub000/internal/model"
)

// Score counts character overlaps between query and title (case-insensitive,
// whitespace ignored, multiset intersection). A title containing the whole
// query gets a bonus of the query length.
func Score(query, title string) int {
	q := histogram(query)
	t := histogram(title)
	score, size := 0, 0
	for r, n := range q {
		score += min(n, t[r])
		size += n
	}
	if nq := normalize(query); nq != "" && strings.Contains(normalize(title), nq) {
		score += size
	}
	return score
}

// Rank returns videos relevant to query, best first, newest first on ties.
// A video is relevant when at least three quarters of the query's characters overlap its title.
func Rank(query string, videos []model.Video, limit int) []model.Video {
	need := 0
	for _, n := range histogram(query) {
		need += n
	}
	if need == 0 {
		return []model.Video{}
	}

	type scored struct {
		v model.Video
		s int
	}
	hits := make([]scored, 0, len(videos))
	for _, v := range videos {
		if s := Score(query, v.Title); s*4 >= need*3 {
			hits = append(hits, scored{v: v, s: s})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].s != hits[j].s {
			return hits[i].s > hits[j].s
		}
		return hits[i].v.CreatedAt.After(hits[j].v.CreatedAt)
	})

	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	out := make([]model.Video, len(hits))
	for i, h := range hits {
		out[i] = h.v
	}
	return out
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func histogram(s string) map[rune]int {
	h := map[rune]int{}
	for _, r := range strings.ToLower(s) {
		if unicode.IsSpace(r) {
			continue
		}
		h[r]++
	}
	return h
}
