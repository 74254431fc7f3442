// Package api implements the HTTP handlers for the deck service: deck and
// card lifecycle, card queries, and the scheduler activity endpoints.
// Handlers decode and validate requests, delegate to the service layer,
// and map the error taxonomy onto HTTP status codes.
package api
