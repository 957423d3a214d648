package scan

// Request is the immutable input to a scan session.
type Request struct {
	// RepositoryURL is the clone location of the repository to scan.
	RepositoryURL string

	// AccessToken optionally authenticates the clone against the source
	// host. It is forwarded to the forge only and must never appear in
	// emitted events or logs.
	AccessToken string
}
