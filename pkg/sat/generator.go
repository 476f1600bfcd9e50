package sat

import "math/rand/v2"

// GenerateSATInstance draws a random instance where every variable enters each
// clause with probability one half and a random sign.
func GenerateSATInstance(random *rand.Rand, literals uint64, clauses int) SAT {
	satInstance := SAT{
		Variables: literals,
		Clauses:   make([][]int64, clauses),
	}

	sign := func() int64 {
		if random.Float32() < 0.5 {
			return -1
		}
		return 1
	}

	for i := range clauses {
		satInstance.Clauses[i] = make([]int64, 0, literals)
		for j := range literals {
			if random.Float32() < 0.5 {
				satInstance.Clauses[i] = append(satInstance.Clauses[i], sign()*(1+int64(j)))
			}
		}

		// Never emit an empty clause
		if len(satInstance.Clauses[i]) == 0 {
			satInstance.Clauses[i] = append(satInstance.Clauses[i], sign()*(1+random.Int64N(int64(literals))))
		}
	}

	return satInstance
}
