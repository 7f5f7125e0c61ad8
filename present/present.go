// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package present

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/vote-tally/models"
)

// DefaultTopN is how many candidates per group the public page shows.
const DefaultTopN = 4

// Options controls grouping.
type Options struct {
	// TopN truncates each group; 0 shows everyone.
	TopN int
	// ByName lists each group alphabetically instead of by rank. Ranks are
	// still computed from votes.
	ByName bool
}

// Group partitions candidates by category in display order (fixed
// categories first, then any other label alphabetically, Other last) and
// ranks each group by votes descending. Ties keep input order.
func Group(candidates []models.Candidate, opts Options) []models.ResultGroup {
	buckets := make(map[string][]models.Candidate)
	for _, c := range candidates {
		label := c.CategoryLabel()
		buckets[label] = append(buckets[label], c)
	}

	groups := make([]models.ResultGroup, 0, len(buckets))
	for _, label := range groupOrder(buckets) {
		groups = append(groups, rankGroup(label, buckets[label], opts))
	}
	return groups
}

func groupOrder(buckets map[string][]models.Candidate) []string {
	order := make([]string, 0, len(buckets))
	for _, label := range models.Categories {
		if _, ok := buckets[label]; ok {
			order = append(order, label)
		}
	}

	var extra []string
	for label := range buckets {
		if label != models.CategoryOther && !models.ValidCategory(label) {
			extra = append(extra, label)
		}
	}
	sort.Strings(extra)
	order = append(order, extra...)

	if _, ok := buckets[models.CategoryOther]; ok {
		order = append(order, models.CategoryOther)
	}
	return order
}

func rankGroup(label string, members []models.Candidate, opts Options) models.ResultGroup {
	sorted := SortByVotes(members)
	total := TotalVotes(sorted)

	ranks := make(map[int64]int, len(sorted))
	for i, c := range sorted {
		ranks[c.ID] = i + 1
	}

	display := sorted
	if opts.ByName {
		display = SortByName(members)
	}

	hidden := 0
	if opts.TopN > 0 && len(display) > opts.TopN {
		hidden = len(display) - opts.TopN
		display = display[:opts.TopN]
	}

	ranked := make([]models.RankedCandidate, len(display))
	for i, c := range display {
		rank := ranks[c.ID]
		ranked[i] = models.RankedCandidate{
			Candidate:  c,
			Rank:       rank,
			RankLabel:  RankLabel(rank),
			Share:      Share(c.Votes, total),
			VotesLabel: VotesLabel(c.Votes),
		}
	}

	return models.ResultGroup{
		Category:    label,
		Total:       total,
		Count:       len(sorted),
		Candidates:  ranked,
		Hidden:      hidden,
		HiddenLabel: RemainderLabel(hidden),
	}
}

// SortByVotes returns a copy sorted by votes descending, stable.
func SortByVotes(candidates []models.Candidate) []models.Candidate {
	sorted := make([]models.Candidate, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Votes > sorted[j].Votes
	})
	return sorted
}

// SortByName returns a copy sorted by name, case-insensitively, the order
// of the admin panel.
func SortByName(candidates []models.Candidate) []models.Candidate {
	sorted := make([]models.Candidate, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return strings.ToLower(sorted[i].Name) < strings.ToLower(sorted[j].Name)
	})
	return sorted
}

// TotalVotes sums the votes of candidates.
func TotalVotes(candidates []models.Candidate) int64 {
	var total int64
	for _, c := range candidates {
		total += c.Votes
	}
	return total
}

// Share formats votes as a percentage of total with two decimals,
// "0.00" when total is zero.
func Share(votes, total int64) string {
	if total <= 0 {
		return "0.00"
	}
	return fmt.Sprintf("%.2f", float64(votes)/float64(total)*100)
}

// RankSuffix returns the English ordinal suffix for ranks 1 to 3, "th" otherwise.
func RankSuffix(rank int) string {
	switch rank {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}

// RankLabel renders a rank as "1st", "2nd", ...
func RankLabel(rank int) string {
	return fmt.Sprintf("%d%s", rank, RankSuffix(rank))
}

// VotesLabel renders a vote count with thousands separators.
func VotesLabel(votes int64) string {
	return humanize.Comma(votes)
}

// RemainderLabel renders the "N more candidates not shown" line, empty
// when nothing is hidden.
func RemainderLabel(hidden int) string {
	switch {
	case hidden <= 0:
		return ""
	case hidden == 1:
		return "1 more candidate not shown"
	default:
		return fmt.Sprintf("%d more candidates not shown", hidden)
	}
}
