package softlimit

import (
	"embed"
	"io/fs"
)

//go:embed pkg/runtime/assets/*.js
var embeddedRuntimeAssets embed.FS

// RuntimeAssetsFS exposes the browser runtime (committed under
// pkg/runtime/assets) so Go applications can serve it without a build step.
//
// Typical mount, matching render.DefaultRuntimePath:
//
//	mux.Handle("/softlimit/runtime/",
//	  http.StripPrefix("/softlimit/runtime/",
//	    http.FileServerFS(softlimit.RuntimeAssetsFS()),
//	  ),
//	)
func RuntimeAssetsFS() fs.FS {
	sub, err := fs.Sub(embeddedRuntimeAssets, "pkg/runtime/assets")
	if err != nil {
		return embeddedRuntimeAssets
	}
	return sub
}
