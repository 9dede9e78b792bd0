// Package igdb provides the IGDB record source and the Twitch identity
// lookup used by refsync.
//
// IGDB is queried with Apicalypse bodies POSTed to {base}/{endpoint} and
// {base}/{endpoint}/count. Requests carry the application's Client-ID and a
// bearer token obtained through the Twitch client-credentials flow.
//
// # Rate Limiting
//
// IGDB allows four requests per second per client. The client throttles
// proactively with a token bucket and converts 429 responses into
// RateLimitError so callers can retry.
package igdb
