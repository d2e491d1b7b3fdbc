package auth

import "golang.org/x/crypto/bcrypt"

// MinBcryptCost is the lowest work factor accepted for stored password hashes.
const MinBcryptCost = 10

func HashPassword(password string) (string, error) {
	return HashPasswordCost(password, MinBcryptCost)
}

// HashPasswordCost hashes with cost, raised to MinBcryptCost when lower.
func HashPasswordCost(password string, cost int) (string, error) {
	if cost < MinBcryptCost {
		cost = MinBcryptCost
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
