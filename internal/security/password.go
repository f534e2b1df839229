package security

import "golang.org/x/crypto/bcrypt"

// VerifyResult is the three-way outcome of a password check.
type VerifyResult int

const (
	VerifyFailed VerifyResult = iota
	VerifySuccess
	// VerifySuccessRehash means the password matched but the stored hash
	// was produced with a lower cost than currently configured, so it
	// should be re-hashed on next write.
	VerifySuccessRehash
)

type BcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}

	return &BcryptHasher{cost: cost}
}

// Hash hashes a plain text password with bcrypt. Salt and cost are embedded
// in the encoded hash.
func (h *BcryptHasher) Hash(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)

	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// Verify compares a stored bcrypt hash with a plaintext password.
func (h *BcryptHasher) Verify(hash, plain string) VerifyResult {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))

	if err != nil {
		return VerifyFailed
	}

	cost, err := bcrypt.Cost([]byte(hash))

	if err == nil && cost < h.cost {
		return VerifySuccessRehash
	}

	return VerifySuccess
}
