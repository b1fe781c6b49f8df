package repository

import (
	"context"
	"errors"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/brawlers/missionboard/internal/model"
)

// Seed creates the brawlers listed in file that do not exist yet and returns
// how many were created. Existing accounts are left as they are.
func Seed(ctx context.Context, r BrawlerRepository, file string) (int, error) {
	if file == "" {
		return 0, nil
	}

	brawlers, err := ReadBrawlersFile(file)
	if err != nil {
		return 0, err
	}

	var n int

	for _, b := range brawlers {
		existing, err := r.GetByUsername(ctx, b.Username)
		if err != nil {
			return n, err
		}

		if existing != nil {
			continue
		}

		if err := r.Create(ctx, b); err != nil {
			if errors.Is(err, ErrUsernameTaken) {
				continue
			}

			return n, err
		}

		n++
	}

	return n, nil
}

// ReadBrawlersFile reads a yaml list of brawlers. Plain text passwords are
// hashed, bcrypt hashes are kept as they are.
func ReadBrawlersFile(name string) ([]*model.Brawler, error) {
	dat, err := os.ReadFile(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}

		return nil, err
	}

	var brawlers []*model.Brawler

	if err := yaml.Unmarshal(dat, &brawlers); err != nil {
		return nil, err
	}

	res := make([]*model.Brawler, 0, len(brawlers))

	for _, b := range brawlers {
		if b == nil || strings.TrimSpace(b.Username) == "" {
			continue
		}

		if b.DisplayName == "" {
			b.DisplayName = b.Username
		}

		if !b.HashedPassword() {
			if err := b.SetPassword(b.Password); err != nil {
				return nil, err
			}
		}

		res = append(res, b)
	}

	return res, nil
}
