package services

import (
	"context"
	"rally-metrics-go/models"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParsePlayerCSV(t *testing.T) {
	in := "Name,Rank,Team,Games Won,Games Lost,Games Won Percent,Pts Won,Pts Lost,Pts Won Percent\n" +
		"Mia Cole,1,Chicago Slice,12,3,80.0,330,240,57.9%\n"

	players, err := ParsePlayerCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Equal(t, []models.Player{{
		Name: "Mia Cole", Rank: 1, Team: "Chicago Slice",
		GamesWon: 12, GamesLost: 3, GamesWonPercent: 80,
		PtsWon: 330, PtsLost: 240, PtsWonPercent: 57.9,
	}}, players)
}

func TestParsePlayerCSVErrors(t *testing.T) {
	header := "Name,Rank,Team,Games Won,Games Lost,Games Won Percent,Pts Won,Pts Lost,Pts Won Percent\n"

	_, err := ParsePlayerCSV(strings.NewReader(header + "Mia Cole,first,Chicago Slice,12,3,80.0,330,240,57.9\n"))
	require.ErrorContains(t, err, "csv line 2")

	_, err = ParsePlayerCSV(strings.NewReader(header + "Mia Cole,1,Chicago Slice\n"))
	require.Error(t, err)

	players, err := ParsePlayerCSV(strings.NewReader(""))
	require.NoError(t, err)
	require.Empty(t, players)
}

func TestDemoPlayerServiceEmbeddedSnapshot(t *testing.T) {
	d, err := NewDemoPlayerService()
	require.NoError(t, err)

	all, err := d.GetPlayers(context.Background(), models.PlayerQuery{})
	require.NoError(t, err)
	require.Len(t, all, 24)

	teams := NewStaticTeamService()
	for _, p := range all {
		_, ok := teams.GetTeamByName(p.Team)
		require.True(t, ok, "team %q of %s is not in the directory", p.Team, p.Name)
	}
}

func TestDemoPlayerServiceFilters(t *testing.T) {
	d := NewDemoPlayerServiceWithPlayers(samplePlayers())
	ctx := context.Background()

	got, err := d.GetPlayers(ctx, models.PlayerQuery{Team: "chicago slice"})
	require.NoError(t, err)
	require.Equal(t, []string{"Zoe Park", "Mia Cole"}, names(got))

	got, err = d.GetPlayers(ctx, models.PlayerQuery{Name: "mia", Team: "Chicago Slice"})
	require.NoError(t, err)
	require.Equal(t, []string{"Mia Cole"}, names(got))

	got, err = d.GetPlayers(ctx, models.PlayerQuery{Name: "ben"})
	require.NoError(t, err)
	require.Equal(t, []string{"Ben Ortiz"}, names(got))
}

func TestDemoPlayerServiceSummaryAndPredict(t *testing.T) {
	d := NewDemoPlayerServiceWithPlayers(samplePlayers())
	ctx := context.Background()

	summary, err := d.GetSummary(ctx, "mia cole")
	require.NoError(t, err)
	require.Contains(t, summary, "Mia Cole of the Chicago Slice")
	require.Contains(t, summary, "You should")

	missing, err := d.GetSummary(ctx, "Nobody")
	require.NoError(t, err)
	require.Equal(t, "Player not found", missing)

	prediction, err := d.Predict(ctx, "Ben Ortiz", "Mia Cole")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(prediction, "Mia Cole is favored over Ben Ortiz"), prediction)

	_, err = d.Predict(ctx, "Mia Cole", "Nobody")
	require.Error(t, err)
}
