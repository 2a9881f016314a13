package period

// SilencePrefillFrames computes how many silent frames an InputAdapter
// should prefill so the client side can always eventually fire before the
// server outpaces it, given the server's fixed period serverPeriod and the
// client's fixed period clientPeriod. When the ratio between the two is
// exact, no slack is needed; otherwise up to one full client period of
// silence covers the initial transient.
func SilencePrefillFrames(serverPeriod, clientPeriod uint32) uint32 {
	switch {
	case serverPeriod == clientPeriod:
		return 0
	case serverPeriod > clientPeriod && serverPeriod%clientPeriod == 0:
		return 0
	case serverPeriod > clientPeriod:
		return clientPeriod
	case clientPeriod%serverPeriod == 0:
		return clientPeriod - serverPeriod
	default:
		return clientPeriod
	}
}
