package util

import (
	"html/template"
	"sort"
	"strconv"
)

// Pages returns the page numbers which are worth linking from the current page: the first and the last page,
// and pages at exponentially growing distances around the current page.
func Pages(current, count int) []int {

	var set = map[int]struct{}{
		1:       {},
		current: {},
		count:   {},
	}

	for delta := 1; current-delta > 1 || current+delta < count; delta *= 2 {
		if p := current - delta; p > 0 {
			set[p] = struct{}{}
		}
		if p := current + delta; p < count {
			set[p] = struct{}{}
		}
	}

	var pages = make([]int, 0, len(set))
	for p := range set {
		pages = append(pages, p)
	}
	sort.Ints(pages)
	return pages
}

// PageLinks renders the result of Pages, enclosed by links to the previous and the next page.
// The link func renders links to other pages, the current func renders the current page.
func PageLinks(current, count int, link func(page int, name string) string, currentPage func(page int, name string) string) []template.HTML {

	var result = []template.HTML{}
	if current < 1 || count < 1 {
		return result
	}

	if current > 1 {
		result = append(result, template.HTML(link(current-1, "&laquo;")))
	}

	for _, p := range Pages(current, count) {
		if p == current {
			result = append(result, template.HTML(currentPage(p, strconv.Itoa(p))))
		} else {
			result = append(result, template.HTML(link(p, strconv.Itoa(p))))
		}
	}

	if current < count {
		result = append(result, template.HTML(link(current+1, "&raquo;")))
	}

	return result
}
