package landing

import (
	"strconv"

	"github.com/onedotone/landing-api/pkg/iplookup"
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

type PageConfig struct {
	Title       string
	Description string
	IPLookup    iplookup.BrowserLookup
}

func Layout(config PageConfig, content ...g.Node) g.Node {
	if config.Title == "" {
		config.Title = "1dot1 - Turn Every Business Card Into Your Smart Digital Network"
	}

	if config.Description == "" {
		config.Description = "1dot1 creates perfect 1:1 connections. Upload, search and connect with AI."
	}

	return g.Group([]g.Node{
		g.Raw("<!DOCTYPE html>"),
		HTML(
			Lang("en"),
			Head(
				Meta(Charset("utf-8")),
				Meta(Name("viewport"), Content("width=device-width, initial-scale=1.0")),
				TitleEl(g.Text(config.Title)),
				Meta(Name("description"), Content(config.Description)),

				Meta(g.Attr("property", "og:title"), Content(config.Title)),
				Meta(g.Attr("property", "og:description"), Content(config.Description)),
				Meta(g.Attr("property", "og:type"), Content("website")),
			),
			Body(
				g.If(config.IPLookup.Enabled && config.IPLookup.Endpoint != "",
					g.Group([]g.Node{
						g.Attr("data-ip-lookup", config.IPLookup.Endpoint),
						g.Attr("data-ip-lookup-timeout", strconv.FormatInt(config.IPLookup.TimeoutMs, 10)),
					}),
				),
				g.Group(content),
				Script(g.Raw(pageScript)),
			),
		),
	})
}
