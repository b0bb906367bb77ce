// Package store defines the persistence contracts of the task desk: the
// credential store for users and the task store for tasks. Implementations live
// under internal/platform and are chosen at start-up.
package store
