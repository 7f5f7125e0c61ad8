// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package present turns a flat candidate list into ranked result groups.

	groups := present.Group(candidates, present.Options{TopN: present.DefaultTopN})

Candidates are grouped by category (Board of Director, Audit Committee,
Election Committee, then Other), sorted by votes descending with ties in input
order, and given a vote share of their group total formatted to two decimals.
*/
package present
