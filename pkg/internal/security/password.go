package security

import "golang.org/x/crypto/bcrypt"

func HashPassword(plain string) (string, error) {
	data, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// VerifyPassword reports whether plain matches the stored hash.
// A mismatch is a false, never an error.
func VerifyPassword(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
