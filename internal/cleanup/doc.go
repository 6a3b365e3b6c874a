// Package cleanup relays memory cleanup requests pushed by the backend over
// its event stream to the backend's HTTP free endpoint.
package cleanup
