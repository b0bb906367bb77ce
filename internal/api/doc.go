// Package api holds the HTTP handlers of the task desk. Handlers decode and
// validate JSON requests, pass the caller from the auth middleware to the
// services, and translate service errors into status codes and safe messages
// through HandleAPIError.
package api
