// Package entity defines the persisted project record and the value types
// shared by the resolver, the store and the display pipeline.
//
// A [Record] is created exactly once per provider identifier and is never
// mutated in place. Its JSON encoding is the on-disk format:
//
//	{
//	  "id": 1,
//	  "name": "Gitcoin",
//	  "handle": "gitcoin",
//	  "updated_at": "2024-05-01 12:00:00",
//	  "profile": {"id": 1, "screen_name": "gitcoin", ...},
//	  "friend_ids": [2, 3],
//	  "follower_ids": []
//	}
//
// The profile is an opaque snapshot of the provider payload. Only the
// identifier is ever interpreted; description and url are read as display
// fallbacks by [Record.Detail].
package entity
