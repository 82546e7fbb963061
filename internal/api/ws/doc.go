// Package ws streams desktop events to the UI over a WebSocket.
//
// Every event published on the desktop bus is sent to all connected
// clients as {"type":"event","event":{...}}. Clients may send "ping" and
// "state" messages; the latter answers with the full desktop snapshot.
// A client that stops reading is disconnected once its buffer fills.
package ws
