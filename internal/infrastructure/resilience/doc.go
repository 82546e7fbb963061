/*
Package resilience provides a circuit breaker for calls to language model
providers.

# Overview

Each provider family gets its own breaker from a Group, so an outage of one
provider never blocks requests to another.

# Usage

	group := resilience.NewGroup(resilience.Settings{
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	err := group.Get("anthropic").Execute(ctx, func(ctx context.Context) error {
		return call(ctx)
	})

A call that fails because its own context ended, such as a chat the user
abandoned, is neither a success nor a failure for the provider.

# States

	Closed --[failures]-> Open --[timeout]-> Half-Open --[successes]-> Closed
	                                           |
	                                       [failure]
	                                           v
	                                          Open
*/
package resilience
