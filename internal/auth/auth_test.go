package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brawlers/missionboard/internal/mission"
	"github.com/brawlers/missionboard/internal/model"
	"github.com/brawlers/missionboard/internal/repository"
)

func TestPassport(t *testing.T) {
	p := NewPassports("secret", time.Hour)

	pass, err := p.Issue(&model.Brawler{ID: 7, DisplayName: "Seven"})
	require.NoError(t, err)
	assert.Equal(t, uint(7), pass.BrawlerID)

	id, err := p.Verify(pass.Token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), id)

	_, err = NewPassports("other", time.Hour).Verify(pass.Token)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = p.Verify("garbage")
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = p.Issue(nil)
	require.Error(t, err)
}

func TestPassportExpired(t *testing.T) {
	p := NewPassports("secret", time.Minute)
	p.now = func() time.Time { return time.Now().Add(-time.Hour) }

	pass, err := p.Issue(&model.Brawler{ID: 1})
	require.NoError(t, err)

	p.now = time.Now

	_, err = p.Verify(pass.Token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestRegisterLogin(t *testing.T) {
	ctx := context.Background()
	s := NewService(repository.NewMemoryRepo(), NewPassports("secret", time.Hour))

	pass, err := s.Register(ctx, " Eve ", "hunter22", "")
	require.NoError(t, err)
	assert.Equal(t, "eve", pass.DisplayName)

	_, err = s.Register(ctx, "eve", "hunter22", "Eve")
	require.ErrorIs(t, err, repository.ErrUsernameTaken)

	_, err = s.Register(ctx, "frank", "123", "")
	require.ErrorIs(t, err, mission.ErrInvalidArgument)

	_, err = s.Register(ctx, "   ", "hunter22", "")
	require.ErrorIs(t, err, mission.ErrInvalidArgument)

	login, err := s.Login(ctx, "EVE", "hunter22")
	require.NoError(t, err)

	b, err := s.Authenticate(ctx, login.Token)
	require.NoError(t, err)
	assert.Equal(t, pass.BrawlerID, b.ID)

	_, err = s.Login(ctx, "eve", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = s.Login(ctx, "nobody", "hunter22")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	b, err = s.UpdateDisplayName(ctx, b.ID, " Eve the Great ")
	require.NoError(t, err)
	assert.Equal(t, "Eve the Great", b.DisplayName)

	_, err = s.UpdateDisplayName(ctx, b.ID, " ")
	require.ErrorIs(t, err, mission.ErrInvalidArgument)
}
