package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/OrderSheet/internal/core"
)

// withClient adds the client address and User-Agent to the request context
// for the build history. RemoteAddr is already rewritten by TrustedRealIP.
func withClient(ctx context.Context, r *http.Request) context.Context {
	return core.ContextWithClient(ctx, r.RemoteAddr, r.UserAgent())
}
