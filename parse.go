package somfy

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

func ParseGeneralState(r io.Reader) (GeneralState, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return GeneralState{}, fmt.Errorf("could not parse page: %w", err)
	}
	return generalState(doc.Selection)
}

func ParseZoneState(r io.Reader) (ZoneState, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return ZoneState{}, fmt.Errorf("could not parse page: %w", err)
	}
	return zoneState(doc.Selection)
}

func generalState(sel *goquery.Selection) (GeneralState, error) {
	var state GeneralState
	anchor := sel.Find("div#alarmstate").First()
	if anchor.Length() == 0 {
		return state, fmt.Errorf("alarm state %w", ErrSectionNotFound)
	}

	anchor.Find("div[class]").Each(func(_ int, div *goquery.Selection) {
		classes := strings.Fields(div.AttrOr("class", ""))
		if len(classes) == 0 || !strings.HasPrefix(classes[0], "p") {
			return
		}
		if field := state.flag(classes[0]); field != nil {
			*field = text(div)
		}
	})
	return state, nil
}

func zoneState(sel *goquery.Selection) (ZoneState, error) {
	var state ZoneState
	anchor := sel.Find("div#groupstate").First()
	if anchor.Length() == 0 {
		return state, fmt.Errorf("group state %w", ErrSectionNotFound)
	}

	for _, id := range groupIDs {
		group := state.group(id)
		div := anchor.Find("div#" + id).First()
		if div.Length() == 0 {
			*group = Group{Status: groupNotFound, Info: groupNotFound}
			continue
		}
		group.Status = firstText(div, statusNotFound, "div.alarmoff", "div.alarmon")
		group.Info = firstText(div, infoNotFound, "div.noalarm", "div.alarm")
	}
	return state, nil
}

// firstText returns the text of the first element matching one of the
// selectors, tried in order.
func firstText(sel *goquery.Selection, fallback string, selectors ...string) string {
	for _, s := range selectors {
		if found := sel.Find(s).First(); found.Length() > 0 {
			return text(found)
		}
	}
	return fallback
}

// text joins the trimmed text nodes under sel with no separator, so markup
// splitting a label does not leak its indentation into the value.
func text(sel *goquery.Selection) string {
	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(strings.TrimSpace(n.Data))
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return sb.String()
}
