// Package checksum computes the login hashes exchanged during authentication.
package checksum

// modulus bounds every hash to 16 bits.
const modulus = 65536

// Pair is a (server, client) seed pair from the shared secret table.
type Pair struct {
	Server uint32
	Client uint32
}

var secrets = [...]Pair{
	{Server: 23019, Client: 32037},
	{Server: 32037, Client: 29295},
	{Server: 18789, Client: 13603},
	{Server: 16443, Client: 29533},
	{Server: 18189, Client: 21952},
}

// Secrets returns the number of known secret pairs.
func Secrets() int {
	return len(secrets)
}

// Lookup returns the secret pair at index, or false if index is out of range.
func Lookup(index int) (Pair, bool) {
	if index < 0 || index >= len(secrets) {
		return Pair{}, false
	}
	return secrets[index], true
}

// Sum adds up the byte values of s.
// Usernames are bounded by the frame length, so the sum cannot overflow.
func Sum(s string) uint32 {
	var sum uint32
	for i := 0; i < len(s); i++ {
		sum += uint32(s[i])
	}
	return sum
}

// LoginHash returns the hash the server announces and the hash it expects back
// from a robot that logged in as username with the given secret pair.
func LoginHash(username string, pair Pair) (server, client uint32) {
	core := (Sum(username) * 1000) % modulus
	return (pair.Server + core) % modulus, (pair.Client + core) % modulus
}
