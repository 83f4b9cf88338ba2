// Package client talks to the earshot backend over HTTP.
//
// Every method maps to exactly one backend route and issues exactly one
// request; there is no caching or offline mode. Non-2xx responses surface as
// *StatusError carrying the backend's {"error": ...} message.
package client
