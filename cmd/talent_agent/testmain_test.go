package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"testing"

	"github.com/joho/godotenv"
)

// TestMain applies .env.test and then .env when present. Variables already
// set in the environment win, so CI settings are never replaced.
func TestMain(m *testing.M) {
	for _, name := range []string{".env.test", ".env"} {
		if err := godotenv.Load(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "failed to load %s: %v\n", name, err)
			os.Exit(1)
		}
	}
	os.Exit(m.Run())
}
