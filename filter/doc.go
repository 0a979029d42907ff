// Package filter compiles expression-language filters over tracker
// listings.
//
// Expressions are written in expr (https://expr-lang.org) and evaluate
// against one torrent at a time. Listing fields are exposed directly
// (Title, Subtitle, Category, Size, Seeders, Leechers, Snatched,
// Promotion, Hot, Seeding, Finished) next to a few helpers:
//
//	isFree() and Size > GB(10)
//	contains(Title, "1080p") and Seeders > 50
//	Hot or Promotion == "twoupfree"
//
// Compiled filters are cached, so repeated use of the same preset does
// not recompile it.
package filter
