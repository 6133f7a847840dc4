package account

import (
	"fmt"
	"math/rand"
)

// numberPrefix is the fixed branch prefix of every account number.
const numberPrefix = "113"

// GenerateNumber produces a candidate account number: the branch prefix
// followed by eight zero-padded random digits. Uniqueness is enforced by
// storage; callers retry on collision.
func GenerateNumber() string {
	return fmt.Sprintf("%s%08d", numberPrefix, rand.Intn(100_000_000))
}
