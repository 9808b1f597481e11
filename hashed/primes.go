package hashed

// primes is the fixed ascending capacity table.  Every collection capacity is
// drawn from here so bucket counts stay prime and modulo distribution stays
// honest across expansions.
var primes = [...]int{
	3, 7, 17, 29, 53, 97, 193, 389, 769, 1543, 3079, 6151, 12289,
	24593, 49157, 98317, 196613, 393241, 786433, 1572869, 3145739,
	6291469, 12582917, 25165843, 50331653, 100663319, 201326611,
	402653189, 805306457, 1610612741,
}

// nextPrime returns the first table entry ≥ n.
func nextPrime(n int) int {
	for _, p := range primes {
		if p >= n {
			return p
		}
	}
	panic("hashed: capacity exceeds prime table")
}
