package words

import "math/rand/v2"

// SelectHome picks the words shown on the home page: the latest submission,
// followed by one other word chosen uniformly at random. The result shares
// records with c.
func SelectHome(c *Collection, rng *rand.Rand) *Collection {
	byDate := c.ByDate()
	home := newCollection(min(len(byDate), 2))
	if len(byDate) == 0 {
		return home
	}

	// insertion cannot fail: slugs in c are unique
	_ = home.add(byDate[0])
	if len(byDate) > 1 {
		if rng == nil {
			rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		}
		_ = home.add(byDate[rng.IntN(len(byDate)-1)+1])
	}
	return home
}
