// Package application wires the resolved configuration into the SPARQL
// client, the rate-limited runner and file storage, keeping the main package
// focused on CLI parsing and orchestration.
package application
