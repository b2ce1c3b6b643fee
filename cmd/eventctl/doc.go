// Command eventctl talks to a running event gateway: it submits RSVPs,
// uploads photos and videos in batches, and inspects stored travel details.
package main
