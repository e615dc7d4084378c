package clicks

// Sentinel values for derived fields that could not be resolved.
const (
	DirectReferrer = "direct"
	UnknownCountry = "Unknown"
	UnknownDevice  = "unknown"
)
