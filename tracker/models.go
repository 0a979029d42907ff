package tracker

import "time"

// Promotion is a download-cost promotion attached to a torrent.
type Promotion string

// Promotion values as the site's stylesheet names them.
const (
	PromotionNone          Promotion = ""
	PromotionFree          Promotion = "free"
	PromotionTwoUp         Promotion = "twoup"
	PromotionTwoUpFree     Promotion = "twoupfree"
	PromotionHalfDown      Promotion = "halfdown"
	PromotionTwoUpHalfDown Promotion = "twouphalfdown"
	PromotionThirtyPercent Promotion = "thirtypercent"
)

// Label returns a short display label for the promotion.
func (p Promotion) Label() string {
	switch p {
	case PromotionFree:
		return "FREE"
	case PromotionTwoUp:
		return "2X"
	case PromotionTwoUpFree:
		return "2X FREE"
	case PromotionHalfDown:
		return "50%"
	case PromotionTwoUpHalfDown:
		return "2X 50%"
	case PromotionThirtyPercent:
		return "30%"
	default:
		return ""
	}
}

// FreeLeech reports whether downloading the torrent costs no download
// quota at all.
func (p Promotion) FreeLeech() bool {
	return p == PromotionFree || p == PromotionTwoUpFree
}

// Torrent is one row of the tracker's listing page.
type Torrent struct {
	// ID is the site's torrent id, taken from the details link.
	ID int
	// Category is the site's category label, e.g. 电影.
	Category string
	Title    string
	// Subtitle is the free-form second line under the title.
	Subtitle  string
	Promotion Promotion
	// Hot marks torrents the site flags as popular.
	Hot bool
	// Seeding and Finished reflect the user's own relationship with the
	// torrent as shown by the listing icons.
	Seeding  bool
	Finished bool
	// Size in bytes, parsed from the listing's human-readable size.
	Size     int64
	Seeders  int
	Leechers int
	Snatched int
}

// TorrentDetail is the part of a torrent's detail page needed to
// download it.
type TorrentDetail struct {
	ID int
	// Name is the .torrent file name offered by the site.
	Name string
	// Category is the site's category label.
	Category string
	// DownloadURL is the absolute URL of the .torrent file.
	DownloadURL string
}

// ListingQuery selects a slice of the tracker's listing. Zero values
// mean "no restriction".
type ListingQuery struct {
	// Category is the site's numeric category code (cat parameter).
	Category int
	// Promotion is the site's numeric promotion code (spstate parameter).
	Promotion int
	// Search is a free text query.
	Search string
	// Page is the zero-based result page.
	Page int
}

// ClientTorrent is a torrent as reported by the external download
// client, normalized across client implementations.
type ClientTorrent struct {
	// ID identifies the torrent inside the client: a numeric id for
	// transmission, an info hash for qBittorrent.
	ID     string
	Name   string
	Status string
	// Progress is the completed percentage, 0 to 100.
	Progress float64
	Ratio    float64
	// Size in bytes as far as the client reports it.
	Size int64
	ETA  string
}

// DownloadRecord is one completed tracker-to-client handoff, as written
// to the history store.
type DownloadRecord struct {
	TorrentID    int
	Name         string
	Category     string
	SaveDir      string
	Client       string
	DownloadedAt time.Time
}
