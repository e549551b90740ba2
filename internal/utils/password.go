package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword derives a bcrypt hash of the plain password.  A cost
// outside bcrypt's supported range falls back to the library default so
// a misconfigured BCRYPT_COST cannot weaken or break account creation.
func HashPassword(plain string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword reports whether plain matches the stored bcrypt hash.
// bcrypt's comparison is constant time; any error counts as a mismatch.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
