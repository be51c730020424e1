/*
Package session implements session management and persistence orchestration.

A session is a stepping run saved between requests: the live snapshot plus its
undo history. The Manager serializes Step and Undo on one session with a local
reference-counted mutex and, when configured, a distributed lock, so several
replicas can share one store.
*/
package session
