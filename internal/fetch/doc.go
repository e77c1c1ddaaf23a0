// Package fetch resolves a source link into a validated local asset.
//
// Storage backends serving large binaries frequently redirect to interstitial
// HTML (quota or consent pages) instead of the binary, so the fetcher inspects
// the declared content type before consuming any body and falls back through
// an ordered list of mirror candidates. Silently accepting an HTML error page
// as the asset is the single most damaging failure this package guards
// against.
package fetch
