// Package tracker implements the client side of the bt.byr.cn private
// tracker: captcha-gated session login, torrent listing and detail
// scraping, and .torrent file retrieval.
//
// The site is a NexusPHP installation with no JSON API, so every
// operation works over the regular HTML pages. The client keeps its
// session cookies in an http.CookieJar and can persist them to disk, so
// a fresh process reuses the previous session instead of burning a
// login (and a captcha solve) every run. When the site decides the
// session is stale it redirects to the login page; requests then fail
// with ErrNotLoggedIn and Operations transparently logs in once and
// retries.
//
// # Usage
//
//	client, err := tracker.NewClient(baseURL, username, password, solver, logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ops := tracker.NewOperations(client, logger)
//	torrents, err := ops.ListTorrents(ctx, tracker.ListingQuery{}, nil)
package tracker
