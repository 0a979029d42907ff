package tracker

import (
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// promoClasses maps the stylesheet class tokens the site uses for
// promotion markers to promotion values.
var promoClasses = map[string]Promotion{
	"free":          PromotionFree,
	"twoup":         PromotionTwoUp,
	"twoupfree":     PromotionTwoUpFree,
	"halfdown":      PromotionHalfDown,
	"twouphalfdown": PromotionTwoUpHalfDown,
	"thirtypercent": PromotionThirtyPercent,
}

// parseListingPage extracts torrents from a torrents.php page. Rows
// that do not look like torrent rows (headers, ads) are skipped; a page
// without the listing table at all is a layout error.
func parseListingPage(r io.Reader) ([]Torrent, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLayout, err)
	}

	table := findNode(doc, func(n *html.Node) bool {
		return n.Data == "table" && hasClassToken(n, "torrents")
	})
	if table == nil {
		return nil, fmt.Errorf("%w: no torrents table", ErrPageLayout)
	}

	torrents := []Torrent{}
	for _, row := range tableRows(table) {
		if t, ok := parseListingRow(row); ok {
			torrents = append(torrents, t)
		}
	}
	return torrents, nil
}

// parseListingRow converts one table row into a Torrent. The second
// cell holds a nested table with the details link, title, promotion
// markers and subtitle; the remaining cells are positional.
func parseListingRow(row *html.Node) (Torrent, bool) {
	cells := rowCells(row)
	if len(cells) < 8 {
		return Torrent{}, false
	}

	nameCell := cells[1]
	link := findNode(nameCell, func(n *html.Node) bool {
		return n.Data == "a" && strings.Contains(nodeAttr(n, "href"), "details.php")
	})
	if link == nil {
		return Torrent{}, false
	}
	id, ok := torrentIDFromHref(nodeAttr(link, "href"))
	if !ok {
		return Torrent{}, false
	}

	t := Torrent{ID: id}

	if b := findNode(link, func(n *html.Node) bool { return n.Data == "b" }); b != nil {
		t.Title = strings.TrimSpace(nodeText(b))
	} else {
		t.Title = strings.TrimSpace(nodeText(link))
	}

	if img := findNode(cells[0], func(n *html.Node) bool { return n.Data == "img" }); img != nil {
		t.Category = nodeAttr(img, "title")
	}

	t.Promotion, t.Hot = promotionOf(nameCell)
	t.Subtitle = subtitleOf(nameCell)
	t.Seeding = hasImage(nameCell, "seeding")
	t.Finished = hasImage(nameCell, "finished")

	t.Size = parseSize(cellText(cells[4]))
	t.Seeders = parseCount(nodeText(cells[5]))
	t.Leechers = parseCount(nodeText(cells[6]))
	t.Snatched = parseCount(nodeText(cells[7]))

	return t, true
}

// parseDetailPage extracts the download link and category from a
// details.php page.
func parseDetailPage(r io.Reader) (*TorrentDetail, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLayout, err)
	}

	link := findNode(doc, func(n *html.Node) bool {
		return n.Data == "a" && hasClassToken(n, "index") &&
			strings.Contains(nodeAttr(n, "href"), "download.php")
	})
	if link == nil {
		return nil, fmt.Errorf("%w: no download link on detail page", ErrPageLayout)
	}

	detail := &TorrentDetail{
		Name:        strings.TrimSpace(nodeText(link)),
		DownloadURL: nodeAttr(link, "href"),
	}

	if span := findNode(doc, func(n *html.Node) bool {
		return n.Data == "span" && nodeAttr(n, "id") == "type"
	}); span != nil {
		detail.Category = strings.TrimSpace(nodeText(span))
	}

	return detail, nil
}

// parseLoginPage extracts the captcha image source and the imagehash
// form value from a login.php page.
func parseLoginPage(r io.Reader) (imageSrc, imageHash string, err error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrPageLayout, err)
	}

	img := findNode(doc, func(n *html.Node) bool {
		return n.Data == "img" && strings.Contains(nodeAttr(n, "src"), "image.php")
	})
	if img == nil {
		return "", "", fmt.Errorf("%w: no captcha image on login page", ErrPageLayout)
	}

	input := findNode(doc, func(n *html.Node) bool {
		return n.Data == "input" && nodeAttr(n, "name") == "imagehash"
	})
	if input == nil {
		return "", "", fmt.Errorf("%w: no imagehash field on login page", ErrPageLayout)
	}

	return nodeAttr(img, "src"), nodeAttr(input, "value"), nil
}

// promotionOf scans a name cell for promotion and hot markers. The
// markers are class tokens on whatever element the site's skin uses
// (font, img or the cell itself).
func promotionOf(cell *html.Node) (Promotion, bool) {
	promo := PromotionNone
	hot := false
	walkNodes(cell, func(n *html.Node) {
		if n.Type != html.ElementNode {
			return
		}
		for _, token := range strings.Fields(nodeAttr(n, "class")) {
			if p, ok := promoClasses[token]; ok && promo == PromotionNone {
				promo = p
			}
			if token == "hot" {
				hot = true
			}
		}
	})
	return promo, hot
}

// subtitleOf returns the text after the first line break in a name
// cell, skipping promotion label decorations.
func subtitleOf(cell *html.Node) string {
	var sb strings.Builder
	seenBr := false
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if n.Data == "br" {
				seenBr = true
				return
			}
			if isPromoNode(n) {
				return
			}
		}
		if n.Type == html.TextNode && seenBr {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(cell)
	return strings.Join(strings.Fields(sb.String()), " ")
}

func isPromoNode(n *html.Node) bool {
	for _, token := range strings.Fields(nodeAttr(n, "class")) {
		if _, ok := promoClasses[token]; ok || token == "hot" {
			return true
		}
	}
	return false
}

// hasImage reports whether the cell contains an img whose source names
// the given icon.
func hasImage(cell *html.Node, icon string) bool {
	return findNode(cell, func(n *html.Node) bool {
		return n.Data == "img" && strings.Contains(nodeAttr(n, "src"), icon)
	}) != nil
}

// torrentIDFromHref pulls the id parameter out of a details link.
func torrentIDFromHref(href string) (int, bool) {
	u, err := url.Parse(href)
	if err != nil {
		return 0, false
	}
	id, err := strconv.Atoi(u.Query().Get("id"))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// sizeUnits maps size suffixes to byte multipliers. The site uses
// binary units with decimal-style names.
var sizeUnits = map[string]int64{
	"B":   1,
	"KB":  1 << 10,
	"KIB": 1 << 10,
	"MB":  1 << 20,
	"MIB": 1 << 20,
	"GB":  1 << 30,
	"GIB": 1 << 30,
	"TB":  1 << 40,
	"TIB": 1 << 40,
	"PB":  1 << 50,
	"PIB": 1 << 50,
}

// parseSize converts a human-readable size like "1.21 GB" (or "1.21GB",
// the listing separates number and unit with a line break) into bytes.
// Unparseable sizes come back as 0.
func parseSize(s string) int64 {
	s = strings.ReplaceAll(s, " ", " ")
	s = strings.ReplaceAll(s, ",", "")

	var num, unit string
	fields := strings.Fields(s)
	switch len(fields) {
	case 1:
		raw := fields[0]
		i := strings.LastIndexFunc(raw, func(r rune) bool {
			return (r >= '0' && r <= '9') || r == '.'
		})
		if i < 0 {
			return 0
		}
		num, unit = raw[:i+1], raw[i+1:]
	case 2:
		num, unit = fields[0], fields[1]
	default:
		return 0
	}

	v, err := strconv.ParseFloat(num, 64)
	if err != nil || v < 0 {
		return 0
	}
	mult, ok := sizeUnits[strings.ToUpper(unit)]
	if !ok {
		return 0
	}
	return int64(v * float64(mult))
}

// parseCount reads an integer out of a cell, tolerating separators and
// surrounding markup remnants.
func parseCount(s string) int {
	var digits strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	n, _ := strconv.Atoi(digits.String())
	return n
}

// findNode returns the first element node in the subtree matching pred,
// depth first.
func findNode(n *html.Node, pred func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && pred(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findNode(c, pred); found != nil {
			return found
		}
	}
	return nil
}

// walkNodes visits every node in the subtree, depth first.
func walkNodes(n *html.Node, visit func(*html.Node)) {
	visit(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkNodes(c, visit)
	}
}

// tableRows returns the rows belonging to the table itself, without
// descending into nested tables.
func tableRows(table *html.Node) []*html.Node {
	var rows []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.Data == "tr" {
				rows = append(rows, c)
				continue
			}
			walk(c)
		}
	}
	walk(table)
	return rows
}

// rowCells returns the direct td children of a row.
func rowCells(row *html.Node) []*html.Node {
	var cells []*html.Node
	for c := row.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "td" {
			cells = append(cells, c)
		}
	}
	return cells
}

// nodeAttr returns the value of an attribute, or "".
func nodeAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// hasClassToken reports whether the node's class attribute contains the
// given token.
func hasClassToken(n *html.Node, token string) bool {
	for _, t := range strings.Fields(nodeAttr(n, "class")) {
		if t == token {
			return true
		}
	}
	return false
}

// nodeText concatenates all text in the subtree.
func nodeText(n *html.Node) string {
	var sb strings.Builder
	walkNodes(n, func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
	})
	return sb.String()
}

// cellText concatenates all text in the subtree with line breaks
// rendered as spaces, for cells like the size column that split their
// value across a <br>.
func cellText(n *html.Node) string {
	var sb strings.Builder
	walkNodes(n, func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		if n.Type == html.ElementNode && n.Data == "br" {
			sb.WriteString(" ")
		}
	})
	return strings.TrimSpace(sb.String())
}
