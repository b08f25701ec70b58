// Package httputil provides outbound HTTP helpers shared by webhook
// notifiers and other clients.
//
//   - [NewClient]: an http.Client with a bounded timeout
//   - [CheckStatus]: classifies responses, marking 5xx and 429 as retryable
//   - [Retry]: retries [RetryableError] failures with exponential backoff
//
// Usage:
//
//	err := httputil.Retry(ctx, 3, 200*time.Millisecond, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return &httputil.RetryableError{Err: err}
//	    }
//	    defer resp.Body.Close()
//	    return httputil.CheckStatus(resp)
//	})
package httputil
