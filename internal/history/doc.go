// Package history persists completed predictions in a SQLite database.
//
// The store applies embedded migrations on open and keeps one row per
// successful prediction so operators can audit what the classifier said and
// which model artifact said it.
package history
