// Package resolve turns a share handle into a platform-specific
// viewable asset: a time-boxed display URL plus the AR launch
// artifact the requesting device understands.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/mixtugu/ARization/internal/keys"
	"github.com/mixtugu/ARization/internal/storage"
	"github.com/mixtugu/ARization/pkg/device"
)

// SignedURLTTL bounds how long a resolved view's URLs stay valid.
const SignedURLTTL = time.Hour

// sceneViewerEndpoint is Google's Android AR launcher.
const sceneViewerEndpoint = "https://arvr.google.com/scene-viewer/1.0"

// ErrAssetUnavailable means the primary asset could not be located or
// signed; the handle resolves to nothing.
var ErrAssetUnavailable = errors.New("resolve: asset unavailable")

// View is the per-request resolution result. It is never persisted
// and implicitly expires with its signed URLs.
type View struct {
	Key      string          `json:"key"`
	Platform device.Platform `json:"platform"`
	// DisplayURL is the signed URL of the original asset, for 3D
	// preview widgets and for Scene Viewer.
	DisplayURL string `json:"display_url"`
	// USDZURL is the signed URL of the usdz sibling, empty when none
	// exists. Consumers must treat it as optional.
	USDZURL string `json:"usdz_url,omitempty"`
	// LaunchURI is the AR invocation artifact: a Scene Viewer intent
	// URL on Android, the usdz link on iOS, empty otherwise.
	LaunchURI string `json:"launch_uri,omitempty"`
	// Degraded is set on iOS when no usdz sibling exists yet: the
	// viewer shows an informational fallback instead of an AR button.
	Degraded bool `json:"degraded,omitempty"`
}

// Resolver resolves share handles against the object store.
type Resolver struct {
	store storage.ObjectStore
}

// NewResolver wires a resolver over the given store.
func NewResolver(store storage.ObjectStore) *Resolver {
	return &Resolver{store: store}
}

// Resolve issues the signed URLs for the handle's key and picks the
// AR launch mechanism for the platform. Only a failure on the primary
// asset is an error; a missing usdz sibling degrades the view.
func (r *Resolver) Resolve(ctx context.Context, key string, platform device.Platform) (View, error) {
	displayURL, err := r.store.SignedURL(ctx, key, SignedURLTTL)
	if err != nil {
		return View{}, fmt.Errorf("%w: %v", ErrAssetUnavailable, err)
	}

	view := View{
		Key:        key,
		Platform:   platform,
		DisplayURL: displayURL,
	}

	// The sibling is optional; probe, never require.
	if derivedKey := keys.Derived(key); derivedKey != key {
		usdzURL, err := r.store.SignedURL(ctx, derivedKey, SignedURLTTL)
		switch {
		case err == nil:
			view.USDZURL = usdzURL
		case errors.Is(err, storage.ErrNotFound):
			// Expected when derivation failed or has not run yet.
		default:
			log.Printf("signing usdz sibling %q failed, serving without it: %v", derivedKey, err)
		}
	}

	switch platform {
	case device.Android:
		view.LaunchURI = SceneViewerURI(displayURL)
	case device.IOS:
		if view.USDZURL != "" {
			view.LaunchURI = view.USDZURL
		} else {
			view.Degraded = true
		}
	}
	return view, nil
}

// SceneViewerURI builds the Android AR intent URL for a model file,
// pinned to AR-only mode.
func SceneViewerURI(fileURL string) string {
	params := url.Values{}
	params.Set("file", fileURL)
	params.Set("mode", "ar_only")
	return sceneViewerEndpoint + "?" + params.Encode()
}
