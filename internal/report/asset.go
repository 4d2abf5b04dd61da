package report

import (
	"strings"

	"github.com/vbonduro/fieldsurvey/internal/domain"
)

// ResolveAssetURL returns self-contained and absolute references unchanged and
// turns anything else into a storage-relative path under baseURL.
func ResolveAssetURL(candidate, baseURL string) string {
	if candidate == "" {
		return ""
	}
	if isSelfContained(candidate) {
		return candidate
	}
	path := "/" + strings.TrimLeft(candidate, "/")
	if baseURL == "" {
		return path
	}
	return strings.TrimRight(baseURL, "/") + path
}

func isSelfContained(candidate string) bool {
	return strings.HasPrefix(candidate, "data:") ||
		strings.HasPrefix(candidate, "http://") ||
		strings.HasPrefix(candidate, "https://")
}

// AssetResolver maps a stored photo reference to the src used in the report.
// Implementations correspond to the supported photo delivery backends.
type AssetResolver interface {
	Resolve(candidate string) string
}

// StaticPathAssets serves files from a path on the same host, e.g. "/files".
type StaticPathAssets struct {
	Prefix string
}

func (a StaticPathAssets) Resolve(candidate string) string {
	return ResolveAssetURL(candidate, a.Prefix)
}

// RemoteAssets points at an object storage bucket with public URLs.
type RemoteAssets struct {
	BaseURL string
}

func (a RemoteAssets) Resolve(candidate string) string {
	return ResolveAssetURL(candidate, a.BaseURL)
}

// EmbeddedOnlyAssets is used when every image is delivered inline. Storage
// keys have nowhere to be served from and resolve to "".
type EmbeddedOnlyAssets struct{}

func (EmbeddedOnlyAssets) Resolve(candidate string) string {
	if isSelfContained(candidate) {
		return candidate
	}
	return ""
}

// PhotoSource applies the delivery precedence: inline data, then a remote
// URL, then the filename through the resolver.
func PhotoSource(p domain.Photo, assets AssetResolver) string {
	if p.Embedded != "" {
		return p.Embedded
	}
	if p.URL != "" {
		return p.URL
	}
	if assets == nil {
		return ResolveAssetURL(p.Filename, "")
	}
	return assets.Resolve(p.Filename)
}
