package auth

import "golang.org/x/crypto/bcrypt"

// bcryptCost balances login latency against brute-force resistance
// for the small operator user base.
const bcryptCost = bcrypt.DefaultCost

// HashPassword returns the bcrypt hash of a plain text password.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// ComparePassword reports whether plain matches the stored bcrypt hash.
// A nil return means the password is correct.
func ComparePassword(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}
