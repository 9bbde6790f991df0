package connectors

import (
	"sort"
	"strings"
)

// ScopeList returns primary followed by extra, with blanks and duplicates
// removed. Order of first appearance is kept.
func ScopeList(primary string, extra []string) []string {
	seen := make(map[string]bool, len(extra)+1)
	var out []string
	add := func(v string) {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			return
		}
		seen[v] = true
		out = append(out, v)
	}
	add(primary)
	for _, v := range extra {
		add(v)
	}
	return out
}

// FilterAllowList keeps the items whose name or any secondary key matches
// an allow-list entry. Matching is exact but case-insensitive. An empty
// allow-list keeps everything.
func FilterAllowList[T any](items []T, allow []string, keys ...func(T) string) []T {
	if len(allow) == 0 {
		return items
	}
	wanted := make(map[string]bool, len(allow))
	for _, a := range allow {
		if a = strings.TrimSpace(a); a != "" {
			wanted[strings.ToLower(a)] = true
		}
	}
	if len(wanted) == 0 {
		return items
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		for _, key := range keys {
			if wanted[strings.ToLower(key(item))] {
				out = append(out, item)
				break
			}
		}
	}
	return out
}

// CountBy groups items by key and counts each group.
func CountBy[T any](items []T, key func(T) string) map[string]int {
	counts := make(map[string]int)
	for _, item := range items {
		counts[key(item)]++
	}
	return counts
}

// Count returns how many items satisfy pred.
func Count[T any](items []T, pred func(T) bool) int {
	n := 0
	for _, item := range items {
		if pred(item) {
			n++
		}
	}
	return n
}

// Select returns the items satisfying pred.
func Select[T any](items []T, pred func(T) bool) []T {
	var out []T
	for _, item := range items {
		if pred(item) {
			out = append(out, item)
		}
	}
	return out
}

// DerivePermissions returns the permissions implied by the enabled services,
// de-duplicated and sorted. Services absent from the mapping contribute nothing.
func DerivePermissions(services Services, known []string, mapping map[string][]string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, name := range services.EnabledOf(known) {
		for _, p := range mapping[name] {
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		}
	}
	sort.Strings(out)
	return out
}
