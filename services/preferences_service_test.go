package services

import (
	"rally-metrics-go/models"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPreferencesRoundTrip(t *testing.T) {
	p := NewPreferencesService("test-secret")
	want := models.SortConfig{Field: models.SortByPtsWonPercent, Direction: models.SortDesc}

	token, err := p.GenerateToken(want)
	require.NoError(t, err)

	got, err := p.ParseToken(token)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestPreferencesRejectsForeignSignature(t *testing.T) {
	other := NewPreferencesService("other-secret")
	token, err := other.GenerateToken(models.SortConfig{Field: models.SortByGamesWon, Direction: models.SortDesc})
	require.NoError(t, err)

	p := NewPreferencesService("test-secret")
	_, err = p.ParseToken(token)
	require.Error(t, err)
	require.Equal(t, models.DefaultSortConfig(), p.SortConfigOrDefault(token))
}

func TestPreferencesRejectsInvalidField(t *testing.T) {
	p := NewPreferencesService("test-secret")
	token, err := p.GenerateToken(models.SortConfig{Field: "height", Direction: models.SortAsc})
	require.NoError(t, err)

	_, err = p.ParseToken(token)
	require.Error(t, err)
	require.Equal(t, models.DefaultSortConfig(), p.SortConfigOrDefault(""))
	require.Equal(t, models.DefaultSortConfig(), p.SortConfigOrDefault("not-a-jwt"))
}
