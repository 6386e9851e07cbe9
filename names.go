package main

import (
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Display-name casing. The server stores names exactly as typed at account
// creation; nametags render them title-cased. Cased results are memoized —
// the caser is not cheap and names repeat every frame.

var (
	nameCaser = cases.Title(language.Und, cases.NoLower)
	nameCache sync.Map // raw -> cased
)

func displayName(raw string) string {
	if v, ok := nameCache.Load(raw); ok {
		return v.(string)
	}
	cased := nameCaser.String(strings.TrimSpace(raw))
	nameCache.Store(raw, cased)
	return cased
}
