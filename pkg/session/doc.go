/*
Package session implements session management and persistence orchestration.

Manager serializes access to a session across goroutines, and across
replicas when a DistributedLocker is configured. Previewer builds on it to
host stateless preview sessions: each request restores an engine from its
snapshot on a virtual clock, applies one operation and saves the result, so
any replica sharing the store can serve the next request.
*/
package session
