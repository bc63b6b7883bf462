package game

import "math/rand"

// Pool is one rule of an ordered heuristic: a name and a candidate generator
type Pool struct {
	Rule       string
	Candidates func() []int
}

// Select evaluates pools top-down and picks uniformly from the first non-empty one
func Select(rng *rand.Rand, pools ...Pool) (id int, rule string, ok bool) {
	for _, p := range pools {
		ids := p.Candidates()
		if len(ids) == 0 {
			continue
		}
		return Pick(rng, ids), p.Rule, true
	}
	return -1, "", false
}

// Pick returns a uniformly random element of ids
func Pick(rng *rand.Rand, ids []int) int {
	return ids[rng.Intn(len(ids))]
}

// Contains reports whether id is in ids
func Contains(ids []int, id int) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// Filter keeps ids accepted by keep
func Filter(ids []int, keep func(int) bool) []int {
	var out []int
	for _, id := range ids {
		if keep(id) {
			out = append(out, id)
		}
	}
	return out
}

// MaxBy returns the ids sharing the highest score, ignoring scores <= floor
func MaxBy(ids []int, score func(int) int, floor int) []int {
	best := floor
	var out []int
	for _, id := range ids {
		switch v := score(id); {
		case v > best:
			best = v
			out = []int{id}
		case v == best && v > floor:
			out = append(out, id)
		}
	}
	return out
}
