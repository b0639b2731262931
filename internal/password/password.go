package password

import "github.com/alexedwards/argon2id"

// Params tuned per OWASP guidance: 64 MiB memory, time cost 2, one lane.
var params = &argon2id.Params{
	Memory:      64 * 1024,
	Iterations:  2,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

func Hash(plaintext string) (string, error) {
	return argon2id.CreateHash(plaintext, params)
}

// Verify reports whether plaintext matches the stored hash. A malformed
// hash verifies false; callers must treat that the same as a wrong
// password.
func Verify(hash, plaintext string) bool {
	ok, err := argon2id.ComparePasswordAndHash(plaintext, hash)
	if err != nil {
		return false
	}
	return ok
}
