package common

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"
	"strconv"
)

// MakeRandHexString returns size random bytes encoded as hex, so the result
// is 2*size characters long.
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// GenerateOTP returns a uniformly random 6-digit code in [OTPMin, OTPMax].
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(OTPMax-OTPMin+1))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+OTPMin, 10), nil
}
