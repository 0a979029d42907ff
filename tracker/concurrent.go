package tracker

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// downloadConcurrency limits parallel downloads so the site is not
// hammered.
const downloadConcurrency = 3

// BatchDownloadResult contains the results of a batch download
type BatchDownloadResult struct {
	Requested  int
	Successful []DownloadResult
	Failed     []DownloadError
}

// DownloadError contains information about a failed download
type DownloadError struct {
	TorrentID int
	Err       error
}

// Error implements the error interface
func (e DownloadError) Error() string {
	return fmt.Sprintf("failed to download torrent %d: %v", e.TorrentID, e.Err)
}

// DownloadAll downloads several torrents with bounded concurrency.
// Individual failures do not stop the batch.
func (o *Operations) DownloadAll(ctx context.Context, ids []int, opts DownloadOptions) BatchDownloadResult {
	result := BatchDownloadResult{Requested: len(ids)}
	if len(ids) == 0 {
		return result
	}

	successChan := make(chan DownloadResult, len(ids))
	errorChan := make(chan DownloadError, len(ids))

	// The first download runs alone so a needed re-login happens once
	// instead of racing across workers.
	first, rest := ids[0], ids[1:]
	if res, err := o.Download(ctx, first, opts); err != nil {
		errorChan <- DownloadError{TorrentID: first, Err: err}
	} else {
		successChan <- *res
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(downloadConcurrency)

	for _, id := range rest {
		g.Go(func() error {
			res, err := o.Download(ctx, id, opts)
			if err != nil {
				errorChan <- DownloadError{TorrentID: id, Err: err}
			} else {
				successChan <- *res
			}
			return nil // Don't stop on individual errors
		})
	}

	g.Wait()
	close(successChan)
	close(errorChan)

	for res := range successChan {
		result.Successful = append(result.Successful, res)
	}
	for err := range errorChan {
		result.Failed = append(result.Failed, err)
	}

	return result
}
