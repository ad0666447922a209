package requests

// InferCategory derives a request's category from its item mix: the catalog
// category appearing on the most item entries wins. Ties resolve to the
// category that reached the winning count first in item order, which keeps
// the result deterministic for a given item ordering.
func InferCategory(items ItemList, categories map[string]Category) Category {
	counts := make(map[Category]int, len(categories))
	var winner Category
	best := 0

	for _, item := range items {
		cat, ok := categories[item.ItemID]
		if !ok {
			continue
		}
		counts[cat]++
		if counts[cat] > best {
			best = counts[cat]
			winner = cat
		}
	}

	return winner
}
