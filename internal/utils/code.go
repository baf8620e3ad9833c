package utils

import (
	"crypto/rand"
	"math/big"
)

const codeDigits = "0123456789"

// CodeLength is the width of attendance codes ("000000".."999999").
const CodeLength = 6

// GenerateCode produces a random numeric code of n digits. Generation has no
// side effects; callers re-roll on collision before persisting.
func GenerateCode(n int) (string, error) {
	if n <= 0 {
		n = CodeLength
	}
	b := make([]byte, n)
	for i := 0; i < n; i++ {
		idxBig, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeDigits))))
		if err != nil {
			return "", err
		}
		b[i] = codeDigits[idxBig.Int64()]
	}
	return string(b), nil
}
