// Package monitor publishes node state changes of audio contexts to a
// socket.io server, one `node_state` event per transition.
package monitor
