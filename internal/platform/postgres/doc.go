// Package postgres provides PostgreSQL implementations of the credential and
// task stores defined in internal/store. Stores run against store.DBTX, so the
// same code works on a pool or inside a transaction; driver errors are mapped
// to the store's sentinel errors by MapError.
package postgres
