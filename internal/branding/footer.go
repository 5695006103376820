// internal/branding/footer.go
//
// Footer content assembly.
//
// Context
// -------
// The footer API returns one JSON document per site: copyright text, the
// heading blurb, the logo URL, the ordered social-link list, and the
// about-link map.  Everything derives from deployment config plus the
// site's own overrides, so the result is stable between config reloads and
// is cached per host in a small LRU.
//
// The branded-domain feature flag switches the copyright and logo to the
// first-party variants; branded microsites keep the generic wording with a
// link back to the platform owner.
//
// Notes
// -----
// • Social links follow the configured provider-name order; providers with
//   no URL fall back to "#" so themes can still render the icon.
// • About links are the union of the link map and the absolute-URL map;
//   absolute URLs win when a key appears in both.
// • Oxford commas, two spaces after periods.
package branding

import (
	"sort"

	"github.com/campushq/campus/internal/cache"
	"github.com/campushq/campus/internal/config"
	"github.com/campushq/campus/internal/metrics"
	"github.com/campushq/campus/internal/site"
)

// SocialLink is one entry of the footer's social block.
type SocialLink struct {
	Provider string `json:"provider"`
	Title    string `json:"title"`
	URL      string `json:"url"`
}

// Footer is the assembled footer document.  Field names follow the wire
// contract consumed by the mobile apps and the marketing site.
type Footer struct {
	CopyRight   string            `json:"copy_right"`
	Heading     string            `json:"heading"`
	LogoImg     string            `json:"logo_img"`
	SocialLinks []SocialLink      `json:"social_links"`
	AboutLinks  map[string]string `json:"about_links"`
}

// Builder assembles and caches footers.
type Builder struct {
	cfg   func() *config.Config
	cache *cache.LRU
}

// NewBuilder returns a Builder reading live config through cfg.  Cache
// capacity bounds one entry per active site host.
func NewBuilder(cfg func() *config.Config, capacity int) *Builder {
	return &Builder{cfg: cfg, cache: cache.New(capacity)}
}

// Footer returns the footer for s, building it on first request.  s may be
// nil when no site middleware ran; the deployment defaults apply.
func (b *Builder) Footer(s *site.Site) Footer {
	key := ""
	if s != nil {
		key = s.Meta.Host
	}

	if v, ok := b.cache.Get(key); ok {
		metrics.FooterCacheHitsTotal.Inc()
		return v.(Footer)
	}

	f := b.build(s)
	b.cache.Add(key, f)
	return f
}

// Invalidate drops the cached footer for host.
func (b *Builder) Invalidate(host string) { b.cache.Remove(host) }

func (b *Builder) build(s *site.Site) Footer {
	cfg := b.cfg()
	branded := cfg.Features.BrandedDomain

	siteName := cfg.Branding.SiteName
	platform := cfg.Branding.PlatformName
	if s != nil {
		siteName = s.Value("SITE_NAME", siteName)
		platform = s.Value("platform_name", platform)
	}

	return Footer{
		CopyRight:   copyRight(branded, platform),
		Heading:     heading(platform),
		LogoImg:     footerLogo(branded, siteName),
		SocialLinks: socialLinks(&cfg.Branding),
		AboutLinks:  aboutLinks(&cfg.Branding),
	}
}

// copyRight returns the footer copyright line.  The first-party domain
// claims the trademarks outright; branded sites link back instead.
func copyRight(branded bool, platform string) string {
	if branded {
		return "(c) 2026 " + platform + " Inc.  " + platform +
			" and the " + platform + " logo are registered trademarks or trademarks of " +
			platform + " Inc."
	}
	return platform + " and the " + platform +
		" logo are registered trademarks or trademarks of <a href='https://www.campushq.io/'>" +
		platform + " Inc.</a>"
}

// heading returns the descriptive blurb shown above the link columns.
func heading(platform string) string {
	return platform + " offers interactive online classes and MOOCs from universities, " +
		"colleges, and organizations worldwide.  Topics include biology, business, " +
		"chemistry, computer science, economics, engineering, history, law, " +
		"mathematics, medicine, music, philosophy, physics, statistics, and more."
}

// footerLogo picks the theme logo and prefixes it with the site name so
// clients resolve it against the right host.
func footerLogo(branded bool, siteName string) string {
	logoFile := "images/default-theme/logo.png"
	if branded {
		logoFile = "images/campus-theme/header-logo.png"
	}
	return siteName + "/static/" + logoFile
}

// socialLinks walks the configured provider order and joins the display and
// URL maps.
func socialLinks(b *config.Branding) []SocialLink {
	links := make([]SocialLink, 0, len(b.SocialNames))
	for _, name := range b.SocialNames {
		url, ok := b.SocialURLs[name]
		if !ok || url == "" {
			url = "#"
		}
		links = append(links, SocialLink{
			Provider: name,
			Title:    b.SocialTitles[name],
			URL:      url,
		})
	}
	return links
}

// aboutLinks unions the relative link map and the absolute URL map.
// Absolute URLs shadow relative paths for the same key.
func aboutLinks(b *config.Branding) map[string]string {
	keys := make([]string, 0, len(b.MarketingLinks)+len(b.MarketingURLs))
	seen := make(map[string]struct{}, cap(keys))
	for k := range b.MarketingLinks {
		seen[k] = struct{}{}
	}
	for k := range b.MarketingURLs {
		seen[k] = struct{}{}
	}
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys) // stable JSON for tests and caches

	out := make(map[string]string, len(keys))
	for _, k := range keys {
		if u, ok := b.MarketingURLs[k]; ok && u != "" {
			out[k] = u
			continue
		}
		if p, ok := b.MarketingLinks[k]; ok && p != "" {
			out[k] = p
			continue
		}
		out[k] = "#"
	}
	return out
}
