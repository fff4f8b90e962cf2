//go:build vercel

package endpoint

const buildProfile = "vercel"
