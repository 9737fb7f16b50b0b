package internal

import (
	"testing"
)

func matchDoc(puuid, champion string, win bool, kills, deaths, assists int, startMillis int64) map[string]interface{} {
	return map[string]interface{}{
		"metadata": map[string]interface{}{},
		"info": map[string]interface{}{
			"gameStartTimestamp": float64(startMillis),
			"participants": []interface{}{
				map[string]interface{}{
					"puuid":        "someone-else",
					"championName": "Teemo",
					"win":          !win,
					"kills":        float64(1),
					"deaths":       float64(2),
					"assists":      float64(3),
				},
				map[string]interface{}{
					"puuid":        puuid,
					"championName": champion,
					"win":          win,
					"kills":        float64(kills),
					"deaths":       float64(deaths),
					"assists":      float64(assists),
				},
			},
		},
	}
}

func TestSummarize_NoGames(t *testing.T) {
	summary := Summarize("puuid1", nil)

	if summary.Games != 0 || summary.Wins != 0 {
		t.Errorf("expected zero games and wins, got %d/%d", summary.Games, summary.Wins)
	}
	if summary.Winrate != 0 || summary.AvgKills != 0 || summary.AvgDeaths != 0 || summary.AvgAssists != 0 {
		t.Errorf("expected zero rates, got %+v", summary)
	}
	if summary.MostPlayedChampion != NoChampionSentinel {
		t.Errorf("expected champion sentinel %q, got %q", NoChampionSentinel, summary.MostPlayedChampion)
	}
}

func TestSummarize_Winrate(t *testing.T) {
	tests := []struct {
		wins     int
		games    int
		expected float64
	}{
		{3, 5, 60.0},
		{1, 3, 33.3},
		{2, 3, 66.7},
		{5, 5, 100.0},
		{0, 4, 0.0},
	}

	for _, tt := range tests {
		matches := make([]map[string]interface{}, 0, tt.games)
		for i := 0; i < tt.games; i++ {
			matches = append(matches, matchDoc("puuid1", "Ahri", i < tt.wins, 0, 0, 0, 0))
		}

		summary := Summarize("puuid1", matches)
		if summary.Winrate != tt.expected {
			t.Errorf("winrate for %d/%d: expected %v, got %v", tt.wins, tt.games, tt.expected, summary.Winrate)
		}
	}
}

func TestSummarize_Averages(t *testing.T) {
	matches := []map[string]interface{}{
		matchDoc("puuid1", "Ahri", true, 7, 1, 10, 0),
		matchDoc("puuid1", "Ahri", false, 3, 2, 5, 0),
		matchDoc("puuid1", "Ahri", false, 1, 2, 5, 0),
	}

	summary := Summarize("puuid1", matches)

	// 11/3 = 3.666... -> 3.7, 5/3 = 1.666... -> 1.7, 20/3 = 6.666... -> 6.7
	if summary.AvgKills != 3.7 {
		t.Errorf("expected avgKills 3.7, got %v", summary.AvgKills)
	}
	if summary.AvgDeaths != 1.7 {
		t.Errorf("expected avgDeaths 1.7, got %v", summary.AvgDeaths)
	}
	if summary.AvgAssists != 6.7 {
		t.Errorf("expected avgAssists 6.7, got %v", summary.AvgAssists)
	}
}

func TestSummarize_ChampionTieBreak(t *testing.T) {
	// A and B both reach two games; A appears first in most-recent-first
	// order, so A must win the tie.
	matches := []map[string]interface{}{
		matchDoc("puuid1", "Ahri", true, 0, 0, 0, 0),
		matchDoc("puuid1", "Brand", true, 0, 0, 0, 0),
		matchDoc("puuid1", "Ahri", true, 0, 0, 0, 0),
		matchDoc("puuid1", "Brand", true, 0, 0, 0, 0),
	}

	summary := Summarize("puuid1", matches)
	if summary.MostPlayedChampion != "Ahri" {
		t.Errorf("expected Ahri to win the tie, got %s", summary.MostPlayedChampion)
	}
}

func TestSummarize_MostPlayedChampion(t *testing.T) {
	matches := []map[string]interface{}{
		matchDoc("puuid1", "Ahri", true, 0, 0, 0, 0),
		matchDoc("puuid1", "Brand", true, 0, 0, 0, 0),
		matchDoc("puuid1", "Brand", true, 0, 0, 0, 0),
	}

	summary := Summarize("puuid1", matches)
	if summary.MostPlayedChampion != "Brand" {
		t.Errorf("expected Brand, got %s", summary.MostPlayedChampion)
	}
}

func TestSummarize_MissingChampionName(t *testing.T) {
	match := matchDoc("puuid1", "", true, 0, 0, 0, 0)

	summary := Summarize("puuid1", []map[string]interface{}{match})
	if summary.MostPlayedChampion != "Unknown" {
		t.Errorf("expected Unknown for missing champion name, got %s", summary.MostPlayedChampion)
	}
}

func TestSummarize_SkipsMalformedMatches(t *testing.T) {
	matches := []map[string]interface{}{
		{},
		{"info": "not an object"},
		{"info": map[string]interface{}{"participants": "nope"}},
		matchDoc("other-puuid", "Ahri", true, 0, 0, 0, 0),
		matchDoc("puuid1", "Ahri", true, 4, 2, 6, 0),
	}

	summary := Summarize("puuid1", matches)
	if summary.Games != 1 {
		t.Errorf("expected 1 counted game, got %d", summary.Games)
	}
	if summary.Wins != 1 {
		t.Errorf("expected 1 win, got %d", summary.Wins)
	}
}

func TestSummarize_LastGameStart(t *testing.T) {
	matches := []map[string]interface{}{
		matchDoc("puuid1", "Ahri", true, 0, 0, 0, 1700000300000),
		matchDoc("puuid1", "Ahri", true, 0, 0, 0, 1700000100000),
	}
	// One match without a timestamp must not reset the max.
	noStamp := matchDoc("puuid1", "Ahri", false, 0, 0, 0, 0)
	delete(noStamp["info"].(map[string]interface{}), "gameStartTimestamp")
	matches = append(matches, noStamp)

	summary := Summarize("puuid1", matches)
	if summary.LastGameStartMillis != 1700000300000 {
		t.Errorf("expected last game start 1700000300000, got %d", summary.LastGameStartMillis)
	}
}
