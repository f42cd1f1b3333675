package util

import "strings"

// SplitList splits a comma separated value, dropping blanks and repeats while
// keeping the first occurrence order
func SplitList(value string) []string {
	presentStrings := make(map[string]bool)
	var list []string

	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)

		if _, present := presentStrings[item]; !present && item != "" {
			presentStrings[item] = true
			list = append(list, item)
		}
	}

	return list
}
