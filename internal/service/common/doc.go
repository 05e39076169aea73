// Package common holds shared helpers used by multiple services, most
// importantly the HTTP client for the alarm server's API.
package common
