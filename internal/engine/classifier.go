package engine

import (
	"fmt"
	"strings"

	"github.com/sammaes/SiouxBelgiumParser/internal/config"
)

// Classifier infers the relative time of a birthday entry from where its text
// first occurs in the page: the three section headers split the page into
// [today, future), [future, past) and [past, end).
//
// Known limitation: an entry whose text also occurs earlier in the page (a
// duplicate name, or a name contained in a header) is classified by that
// earlier occurrence.
type Classifier struct {
	page   string
	today  int
	future int
	past   int
}

// NewClassifier locates the first occurrence of each marker in page.
func NewClassifier(page string, markers config.SectionMarkers) (*Classifier, error) {
	c := &Classifier{page: page}
	for _, m := range []struct {
		name   string
		marker string
		pos    *int
	}{
		{config.KeyTitleToday, markers.Today, &c.today},
		{config.KeyTitleFuture, markers.Future, &c.future},
		{config.KeyTitlePast, markers.Past, &c.past},
	} {
		if m.marker == "" {
			return nil, fmt.Errorf("%w: empty marker %s", ErrClassification, m.name)
		}
		*m.pos = strings.Index(page, m.marker)
		if *m.pos < 0 {
			return nil, fmt.Errorf("%w: marker %s %q not found", ErrClassification, m.name, m.marker)
		}
	}
	return c, nil
}

// Classify returns the bucket holding the first occurrence of entry.
func (c *Classifier) Classify(entry string) (RelativeTime, error) {
	pos := strings.Index(c.page, entry)
	if entry == "" || pos < 0 {
		return "", fmt.Errorf("%w: entry %q not found in page", ErrClassification, CleanText(entry))
	}
	return c.bucket(pos, entry)
}

func (c *Classifier) bucket(pos int, entry string) (RelativeTime, error) {
	switch {
	case c.today <= pos && pos < c.future:
		return RelToday, nil
	case c.future <= pos && pos < c.past:
		return RelFuture, nil
	case pos >= c.past:
		return RelPast, nil
	}
	return "", fmt.Errorf("%w: entry %q precedes the today section", ErrClassification, CleanText(entry))
}
