package subscription

import "sort"

// SortByPublishPriority orders subscriptions highest priority first, ties
// broken by ascending subscription id.
func SortByPublishPriority(subs []*Subscription) {
	sort.Slice(subs, func(i, j int) bool {
		if subs[i].Params.Priority != subs[j].Params.Priority {
			return subs[i].Params.Priority > subs[j].Params.Priority
		}
		return subs[i].ID < subs[j].ID
	})
}
