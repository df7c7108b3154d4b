// Package integrations provides the shared HTTP client used by lookup
// provider clients.
//
// # Overview
//
// Provider clients embed [Client], which handles:
//
//   - Default headers (bearer token, Accept)
//   - Response caching through any [cache.Cache] with a TTL
//   - Retry with exponential backoff for network errors, 5xx and 429
//   - Status classification into [ErrNotFound], [ErrUnauthorized],
//     [ErrRateLimited] and [ErrNetwork]
//
// The social-network provider lives in the [twitter] subpackage:
//
//	client := twitter.NewClient(c, twitter.Options{Token: token, TTL: 24 * time.Hour})
//	profile, err := client.LookupUser(ctx, "gitcoin")
//
// # Decoding
//
// Responses are decoded with json.Decoder.UseNumber so provider ids stored
// in opaque profile maps survive without float rounding.
package integrations
