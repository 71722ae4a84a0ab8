package config

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
)

// LoadDotenv sets BORN_ASP_ overrides from .env files. Variables already set
// in the environment win, and missing files are ignored.
func LoadDotenv(paths ...string) error {
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}
