// internal/branding/footer_test.go
//
// Unit-tests for footer assembly.
//
// Run: go test ./internal/branding -v

package branding

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/campushq/campus/internal/config"
	"github.com/campushq/campus/internal/site"
)

func testConfig() *config.Config {
	return &config.Config{
		Features: config.Features{BrandedDomain: false},
		Branding: config.Branding{
			PlatformName: "Campus",
			SiteName:     "campus.example.org",
			SocialNames:  []string{"facebook", "twitter", "linkedin"},
			SocialTitles: map[string]string{
				"facebook": "Facebook",
				"twitter":  "Twitter",
			},
			SocialURLs: map[string]string{
				"facebook": "https://facebook.example.org/campus",
				"twitter":  "https://twitter.example.org/campus",
			},
			MarketingLinks: map[string]string{
				"ABOUT": "/about",
				"FAQ":   "/faq",
			},
			MarketingURLs: map[string]string{
				"ABOUT": "https://www.campushq.io/about",
				"BLOG":  "https://blog.campushq.io",
			},
		},
	}
}

func TestFooterShape(t *testing.T) {
	cfg := testConfig()
	b := NewBuilder(func() *config.Config { return cfg }, 8)

	f := b.Footer(nil)

	if f.Heading == "" {
		t.Error("heading must not be empty")
	}
	if !strings.Contains(f.CopyRight, "Campus Inc.") {
		t.Errorf("copy_right = %q", f.CopyRight)
	}
	if !strings.Contains(f.CopyRight, "<a href=") {
		t.Error("non-branded copyright should carry the owner link")
	}
	if f.LogoImg != "campus.example.org/static/images/default-theme/logo.png" {
		t.Errorf("logo_img = %q", f.LogoImg)
	}
}

func TestFooterBrandedDomain(t *testing.T) {
	cfg := testConfig()
	cfg.Features.BrandedDomain = true
	b := NewBuilder(func() *config.Config { return cfg }, 8)

	f := b.Footer(nil)
	if !strings.HasPrefix(f.CopyRight, "(c) ") {
		t.Errorf("branded copy_right = %q", f.CopyRight)
	}
	if strings.Contains(f.CopyRight, "<a href=") {
		t.Error("branded copyright should not carry an outbound link")
	}
	if !strings.Contains(f.LogoImg, "campus-theme") {
		t.Errorf("branded logo_img = %q", f.LogoImg)
	}
}

func TestSocialLinksOrderAndFallback(t *testing.T) {
	b := NewBuilder(func() *config.Config { return testConfig() }, 8)

	links := b.Footer(nil).SocialLinks
	if len(links) != 3 {
		t.Fatalf("social links = %d, want 3", len(links))
	}
	order := []string{"facebook", "twitter", "linkedin"}
	for i, want := range order {
		if links[i].Provider != want {
			t.Errorf("links[%d].Provider = %q, want %q", i, links[i].Provider, want)
		}
	}
	// linkedin has no URL and no title configured.
	if links[2].URL != "#" {
		t.Errorf("missing URL should fall back to #, got %q", links[2].URL)
	}
	if links[2].Title != "" {
		t.Errorf("missing title should stay empty, got %q", links[2].Title)
	}
}

func TestAboutLinksUnion(t *testing.T) {
	b := NewBuilder(func() *config.Config { return testConfig() }, 8)

	about := b.Footer(nil).AboutLinks
	if len(about) != 3 {
		t.Fatalf("about links = %v", about)
	}
	// Absolute URL shadows the relative path for ABOUT.
	if about["ABOUT"] != "https://www.campushq.io/about" {
		t.Errorf("ABOUT = %q", about["ABOUT"])
	}
	if about["FAQ"] != "/faq" {
		t.Errorf("FAQ = %q", about["FAQ"])
	}
	if about["BLOG"] != "https://blog.campushq.io" {
		t.Errorf("BLOG = %q", about["BLOG"])
	}
}

func TestFooterSiteOverrides(t *testing.T) {
	b := NewBuilder(func() *config.Config { return testConfig() }, 8)

	s := &site.Site{
		Meta: site.Record{Host: "branded.example.org"},
		Config: map[string]string{
			"SITE_NAME":     "branded.example.org",
			"platform_name": "Branded Campus",
		},
	}
	f := b.Footer(s)
	if !strings.HasPrefix(f.LogoImg, "branded.example.org/") {
		t.Errorf("logo_img = %q", f.LogoImg)
	}
	if !strings.Contains(f.CopyRight, "Branded Campus") {
		t.Errorf("copy_right = %q", f.CopyRight)
	}
}

func TestFooterCached(t *testing.T) {
	cfg := testConfig()
	b := NewBuilder(func() *config.Config { return cfg }, 8)

	first := b.Footer(nil)
	cfg.Branding.PlatformName = "Renamed"
	second := b.Footer(nil)
	if first.CopyRight != second.CopyRight {
		t.Error("second read should come from the cache")
	}

	b.Invalidate("")
	third := b.Footer(nil)
	if !strings.Contains(third.CopyRight, "Renamed") {
		t.Error("invalidate should force a rebuild")
	}
}

func TestStaticTraversal(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "footer.css"), []byte("footer{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := Static(dir, "footer.css")
	if err != nil || string(got) != "footer{}" {
		t.Fatalf("Static = %q, %v", got, err)
	}

	if _, err := Static(dir, "../../etc/passwd"); err == nil {
		t.Fatal("traversal must be rejected")
	}
}
