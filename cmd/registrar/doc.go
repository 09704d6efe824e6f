// Package main (cmd/registrar) is the command-line front end of the registrar.
//
// It drives the same registration engine as the HTTP server, reading configuration
// from the environment (and .env outside production).
//
// Commands:
//
//	run             - register every entry of a JSON or CSV list, printing progress
//	list            - print stored registration records, newest first
//	delete          - delete a registration record by id
//	gmail auth-url  - print the Gmail consent URL
//	gmail exchange  - trade a consent code for the refresh token
//	token issue     - mint an operator bearer token for the HTTP API
package main
