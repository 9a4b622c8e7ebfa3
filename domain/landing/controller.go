package landing

import (
	"net/http"

	"github.com/onedotone/landing-api/config/router"
	"github.com/onedotone/landing-api/pkg/iplookup"
	g "maragu.dev/gomponents"
)

func Page(lookup iplookup.BrowserLookup) g.Node {
	return Layout(
		PageConfig{IPLookup: lookup},
		Hero(),
		HowItWorks(),
		Benefits(),
		ChatDemo(),
		EarlyAccess(),
		SiteFooter(),
	)
}

// NewLandingController serves the page. lookup tells the page script where the
// browser learns its public address for waitlist signups.
func NewLandingController(lookup iplookup.BrowserLookup) *router.RESTController {
	return router.NewRESTController(
		"LandingController",
		"/",
		func(rs *router.RouterService, c *router.RESTController) {
			rs.AddRawGetHandler(c, nil, "", pageHandler(lookup))
		},
	)
}

func pageHandler(lookup iplookup.BrowserLookup) router.MiddlewareFunc {
	return func(ctx *router.RequestContext) {
		ctx.Header("Content-Type", "text/html; charset=utf-8")
		ctx.Header("Cache-Control", "public, max-age=300")
		ctx.Status(http.StatusOK)

		if err := Page(lookup).Render(ctx.Writer); err != nil {
			router.GetLogger(ctx).Error("Failed to render landing page", "error", err)
		}
	}
}
