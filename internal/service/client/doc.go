// Package client implements the alarm-clockctl control commands on top of
// the server's HTTP API.
package client
