// Package memory implements the store contracts with mutex-guarded maps. It backs
// the service when database.storage is "memory" and is used throughout the tests.
package memory
