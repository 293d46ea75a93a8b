package core

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// SlugMaxLength is the length of the slug database column.
const SlugMaxLength = 256

var ErrSlug = errors.New("could not generate slug")

var ligatures = strings.NewReplacer(
	"ß", "ss",
	"æ", "ae",
	"œ", "oe",
	"ø", "o",
	"ł", "l",
	"đ", "d",
)

// Slugify turns a text into a lowercase ASCII slug of at most maxLength bytes.
func Slugify(text string, maxLength int) string {

	// a transform.Chain is stateful, so it can't be shared
	var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	ascii, _, err := transform.String(stripMarks, ligatures.Replace(strings.ToLower(text)))
	if err != nil {
		ascii = strings.ToLower(text)
	}

	var b strings.Builder
	var dash = false
	for _, r := range ascii {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
		} else if b.Len() > 0 && !dash {
			b.WriteByte('-')
			dash = true
		}
	}

	var slug = b.String()
	if maxLength > 0 && len(slug) > maxLength {
		slug = slug[:maxLength]
	}
	return strings.Trim(slug, "-")
}

// UniqueSlug generates a slug from the title which is not used by any post yet.
// The first candidate has no suffix, then "-1", "-2" and so on are appended.
func (c *CoreDB) UniqueSlug(title string) (string, error) {
	for i := 0; i < 99; i++ {
		var unifier = fmt.Sprintf("-%d", i)
		var slug = Slugify(title, SlugMaxLength-len(unifier))
		if slug == "" {
			return "", fmt.Errorf("%w: %q has no usable characters", ErrSlug, title)
		}
		if i > 0 {
			slug += unifier
		}
		exists, err := c.SlugExists(slug)
		if err != nil {
			return "", err
		}
		if !exists {
			return slug, nil
		}
	}
	return "", fmt.Errorf("%w for %q", ErrSlug, title)
}
