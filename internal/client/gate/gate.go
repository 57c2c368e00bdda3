// Package gate picks the top-level view for a session.
package gate

import "github.com/dmitrijs2005/capgallery/internal/client/models"

// Render returns the view for s. An unresolved session shows a neutral
// loading view rather than the auth form.
func Render(s models.Session) models.View {
	switch s.Status {
	case models.StatusAuthenticated:
		if s.Username == "" {
			return models.ViewAuth
		}
		return models.ViewGallery
	case models.StatusUnknown:
		return models.ViewLoading
	default:
		return models.ViewAuth
	}
}

// RequiresRedirect reports whether a page that needs a user must navigate
// away. Only a confirmed anonymous verdict does; unknown waits.
func RequiresRedirect(s models.Session) bool {
	return Render(s) == models.ViewAuth
}
