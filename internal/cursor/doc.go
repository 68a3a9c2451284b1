// Package cursor persists the round-robin pointer into the product list
// between runs. The state survives process restarts in a single JSON file;
// loss of the file costs at most a repeat of already-published rows.
package cursor
