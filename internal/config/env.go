package config

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads .env-style files into the process environment. Missing
// files are skipped. Variables already set in the environment win, and
// earlier files win over later ones.
func LoadDotEnv(paths ...string) error {
	for _, path := range paths {
		if path == "" {
			continue
		}
		f, err := os.Open(path)
		if err != nil {
			if stderrors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load env file %q: %w", path, err)
		}
		vars, err := godotenv.Parse(f)
		_ = f.Close()
		if err != nil {
			return fmt.Errorf("parse env file %q: %w", path, err)
		}
		for k, v := range vars {
			if _, ok := os.LookupEnv(k); ok {
				continue
			}
			if err := os.Setenv(k, v); err != nil {
				return err
			}
		}
	}
	return nil
}
