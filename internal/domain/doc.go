// Package domain contains the core business entities of the task desk: users with
// their roles, and tasks with their lifecycle. It is independent of any storage or
// delivery mechanism.
package domain
