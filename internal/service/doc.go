// Package service contains the task desk's use cases: registration and login,
// student listing, and the task lifecycle.
//
// Services receive stores and collaborators through constructor injection and
// depend only on the store interfaces, never on a storage implementation.
// Every operation takes the caller's domain.AuthContext and is checked against
// the Policy table before any state changes. Expected conditions come back as
// sentinel errors (ErrForbidden, store.ErrTaskNotFound, ...) for the API layer
// to map; unexpected failures are wrapped in ServiceError.
package service
