// Package httputil provides the HTTP plumbing used to fetch remote image
// assets.
//
// # Status classification
//
// [Fetch] maps responses onto the error codes of pkg/errors:
//
//   - 2xx: the body is returned
//   - 404: NOT_FOUND, not retried
//   - 5xx and 429: NETWORK, marked errors.Transient
//   - transport failures: NETWORK, marked errors.Transient
//   - any other status: NETWORK, not retried
//
// Combine it with errors.Retry to get resilient fetches:
//
//	var body []byte
//	err := errors.Retry(ctx, errors.FetchBackoff, func() (err error) {
//	    body, err = httputil.Fetch(ctx, client, url)
//	    return err
//	})
//
// Every request reports to the HTTP hooks registered in pkg/observability.
package httputil
