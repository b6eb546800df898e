// Package patch loads declarative patch files written in HCL and builds the
// graph they describe into an audio context.
//
// A patch declares nodes by kind and name, their construction options,
// scheduled start and stop times and param automation, plus the
// connections between them:
//
//	context {
//	  sample_rate = 44100
//	  length      = 44100
//	}
//
//	node "oscillator" "osc" {
//	  start   = 0
//	  stop    = 1
//	  options = { type = "square" }
//	}
//
//	node "gain" "amp" {
//	  automation "gain" {
//	    event "linear_ramp" {
//	      value = 1
//	      time  = 0.5
//	    }
//	  }
//	}
//
//	connect {
//	  from = "osc"
//	  to   = "amp"
//	}
//
// Connection endpoints are addresses: `name`, `name[port]` or `name.param`.
// The name `destination` is reserved for the context's destination node.
package patch
