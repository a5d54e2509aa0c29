// Package cli implements blockctl, the BlockKeeper command-line client.
//
// Every command dials the server, attaches the identity token stored by the
// last "login" (see --token-file) and prints the result. Secrets are read
// from --secret, BLOCKCTL_SECRET or an echo-free terminal prompt.
package cli
