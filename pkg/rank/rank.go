// Package rank computes day-over-day ranking movement from captured history.
package rank

import (
	"sort"

	"github.com/nightfeed/nightfeed/pkg/store"
)

// Delta is one app's position for a day together with its movement since the
// most recent prior capture. Change is nil when the app was absent from the
// prior capture, which is distinct from a change of zero.
type Delta struct {
	AppID  int64  `json:"app_id"`
	Name   string `json:"name"`
	Rank   int    `json:"rank"`
	Change *int   `json:"rank_change"`
}

// ComputeDeltas compares the current day's ranking against the most recent
// prior date in history. Positive change means the app climbed. Input order
// is preserved. With no prior date every change is nil.
func ComputeDeltas(today string, current []store.Ranking, history map[string]map[int64]store.RankEntry) []Delta {
	previous := latestBefore(today, history)

	deltas := make([]Delta, 0, len(current))
	for _, item := range current {
		d := Delta{AppID: item.AppID, Name: item.Name, Rank: item.Rank}
		if prev, ok := previous[item.AppID]; ok {
			change := prev.Rank - item.Rank
			d.Change = &change
		}
		deltas = append(deltas, d)
	}
	return deltas
}

// latestBefore picks the most recent captured day strictly before the given
// date. Dates are ISO formatted so string order is chronological.
func latestBefore(date string, history map[string]map[int64]store.RankEntry) map[int64]store.RankEntry {
	dates := make([]string, 0, len(history))
	for d := range history {
		if d < date {
			dates = append(dates, d)
		}
	}
	if len(dates) == 0 {
		return nil
	}
	sort.Strings(dates)
	return history[dates[len(dates)-1]]
}
