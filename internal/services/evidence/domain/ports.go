package domain

import "context"

// PackagerPort publishes canonical evidence documents and returns their
// content identifiers. Publishing fails loudly; an unpublished document
// must never be referenced by a certificate.
type PackagerPort interface {
	PublishRequest(ctx context.Context, p RequestPayload) (string, error)
	PublishResult(ctx context.Context, p ResultPayload) (string, error)
	PublishProfile(ctx context.Context, p ProfilePayload) (string, error)
}

// ResolverPort dereferences a content identifier for display and verification
type ResolverPort interface {
	Resolve(ctx context.Context, cid string) (ResolvedDocument, error)
	GatewayURL(cid string) string
}
