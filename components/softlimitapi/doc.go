// Package softlimitapi exposes soft-limit marker checks over net/http.
//
// The handler answers POST requests on three sub-routes below its mount path:
// validate (save-time marker and field checks), render (counter markup for a
// field) and strip (instructions with markers removed). Request and response
// bodies are JSON.
package softlimitapi
