package internal

import "math"

// championTally is an insertion-ordered play count. The slice keeps
// first-seen order so a tie on the max count resolves to whichever champion
// reached it first under most-recent-match-first iteration. A plain map
// would make the tie-break an accident of iteration order.
type championTally struct {
	names  []string
	counts map[string]int
}

func newChampionTally() *championTally {
	return &championTally{counts: make(map[string]int)}
}

func (t *championTally) add(name string) {
	if _, seen := t.counts[name]; !seen {
		t.names = append(t.names, name)
	}
	t.counts[name]++
}

func (t *championTally) mostPlayed() string {
	best := ""
	bestCount := 0
	for _, name := range t.names {
		if t.counts[name] > bestCount {
			best = name
			bestCount = t.counts[name]
		}
	}
	return best
}

// Summarize reduces a most-recent-first sequence of raw match documents into
// a statistical snapshot for one puuid. Matches with a malformed shape or
// without a participant entry for the puuid are skipped silently.
func Summarize(puuid string, matches []map[string]interface{}) Summary {
	var games, wins int
	var kills, deaths, assists float64
	var lastStart int64
	tally := newChampionTally()

	for _, match := range matches {
		p := participantFor(match, puuid)
		if p == nil {
			continue
		}
		games++

		if win, _ := p["win"].(bool); win {
			wins++
		}

		kills += jsonNumber(p["kills"])
		deaths += jsonNumber(p["deaths"])
		assists += jsonNumber(p["assists"])

		champion, _ := p["championName"].(string)
		if champion == "" {
			champion = "Unknown"
		}
		tally.add(champion)

		if start := gameStartMillis(match); start > lastStart {
			lastStart = start
		}
	}

	if games == 0 {
		return Summary{MostPlayedChampion: NoChampionSentinel}
	}

	return Summary{
		Games:               games,
		Wins:                wins,
		Winrate:             math.Round(float64(wins)/float64(games)*1000) / 10,
		AvgKills:            math.Round(kills/float64(games)*10) / 10,
		AvgDeaths:           math.Round(deaths/float64(games)*10) / 10,
		AvgAssists:          math.Round(assists/float64(games)*10) / 10,
		MostPlayedChampion:  tally.mostPlayed(),
		LastGameStartMillis: lastStart,
	}
}

func participantFor(match map[string]interface{}, puuid string) map[string]interface{} {
	info, ok := match["info"].(map[string]interface{})
	if !ok {
		return nil
	}
	participants, ok := info["participants"].([]interface{})
	if !ok {
		return nil
	}
	for _, v := range participants {
		p, ok := v.(map[string]interface{})
		if !ok {
			continue
		}
		if id, _ := p["puuid"].(string); id == puuid {
			return p
		}
	}
	return nil
}

func gameStartMillis(match map[string]interface{}) int64 {
	info, ok := match["info"].(map[string]interface{})
	if !ok {
		return 0
	}
	start, ok := info["gameStartTimestamp"].(float64)
	if !ok {
		return 0
	}
	return int64(start)
}

func jsonNumber(v interface{}) float64 {
	n, _ := v.(float64)
	return n
}
