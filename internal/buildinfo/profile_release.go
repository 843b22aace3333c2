//go:build !dev && !devtools

package buildinfo

// DevTools enables developer inspection tooling. Set by the dev or devtools build tag.
const DevTools = false
