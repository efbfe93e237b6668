// Package cli implements rdbctl, the command-line client for the registry:
// submitting a mod from a JSON file and querying the public endpoints.
package cli
