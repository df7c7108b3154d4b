// Package twitter implements the lookup provider against the Twitter v1.1
// REST API.
//
// # Endpoints
//
//   - GET /1.1/users/show.json?screen_name=  (profile lookup)
//   - GET /1.1/friends/ids.json?user_id=&cursor=  (accounts a user follows)
//   - GET /1.1/followers/ids.json?user_id=&cursor=  (accounts following a user)
//
// Requests authenticate with an app bearer token. Id lists are paginated
// with cursors until next_cursor is 0 or the page limit is reached.
//
// # Caching
//
// Profiles and complete id lists are cached through the shared
// [integrations.Client] with the configured TTL. Handles are cached
// case-insensitively since screen names are.
package twitter
