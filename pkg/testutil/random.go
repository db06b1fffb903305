package testutil

import (
	"fmt"
	"math/rand"
	"time"
)

func RandomString(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}

// RandomProjectName returns a folder name unlikely to collide across runs.
func RandomProjectName() string {
	return fmt.Sprintf("test-game-%s-%d", RandomString(8), time.Now().UnixNano())
}
