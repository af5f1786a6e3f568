/*
Package session serialises mutating access to projects.

Every mutating lifecycle operation runs inside Manager.WithLock, which combines an
in-process try-lock with an optional cross-process ports.Locker (an OS file lock
or a Redis lease). A lock that is already held fails fast with a
*domain.ConcurrentRunError instead of waiting.
*/
package session
