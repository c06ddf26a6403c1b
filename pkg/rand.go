package pkg

import "math/rand"

const alphanum = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RandString returns a random alphanumeric string of length n.
func RandString(n int) string {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = alphanum[rand.Intn(len(alphanum))] //nolint:gosec
	}
	return string(buf)
}
