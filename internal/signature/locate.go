package signature

import (
	"bytes"
	"errors"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	// e.g. /s/player/f676c671/player_ias.vflset/en_US/base.js
	scriptPathPattern = regexp.MustCompile(`/s/player/[\w-]+/[\w.-]+/[\w-]+/base\.js`)
	jsURLPattern      = regexp.MustCompile(`"jsUrl"\s*:\s*"([^"]+)"`)
)

var errScriptNotReferenced = errors.New("embed page references no player script")

// FindScriptPath locates the player script reference in an embed page.
// Script tags are checked first, then the inline player config, then any
// bare path in the page.
func FindScriptPath(page []byte) (string, error) {
	if doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page)); err == nil {
		var found string
		doc.Find("script[src]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			src, _ := s.Attr("src")
			if strings.HasSuffix(src, "/base.js") {
				found = src
				return false
			}
			return true
		})
		if found != "" {
			return found, nil
		}
	}

	if m := jsURLPattern.FindSubmatch(page); len(m) > 1 {
		return strings.ReplaceAll(string(m[1]), `\/`, "/"), nil
	}
	if m := scriptPathPattern.Find(page); m != nil {
		return string(m), nil
	}
	return "", errScriptNotReferenced
}
