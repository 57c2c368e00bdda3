package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/capgallery/internal/client/feed"
	"github.com/dmitrijs2005/capgallery/internal/client/models"
	"github.com/dmitrijs2005/capgallery/internal/client/services"
	"github.com/dmitrijs2005/capgallery/internal/client/upload"
	"github.com/dmitrijs2005/capgallery/internal/common"
)

// Gallery opens the global feed.
func (a *App) Gallery(ctx context.Context) error {
	m := a.gallery.Mount(ctx)
	a.swap(m)
	if err := m.Wait(ctx); err != nil {
		return err
	}
	a.render(m)
	return nil
}

// Profile opens the user's own feed. A confirmed anonymous session redirects
// to the gallery, which then shows the auth form.
func (a *App) Profile(ctx context.Context) error {
	m := a.profile.Mount(ctx)
	a.swap(m)
	if err := m.Wait(ctx); err != nil {
		return err
	}
	if m.RequiresRedirect() {
		fmt.Fprintln(a.out, "Not logged in, redirecting.")
		return a.Gallery(ctx)
	}
	a.render(m)
	return nil
}

// Refresh re-probes the session and reloads the open view.
func (a *App) Refresh(ctx context.Context) error {
	m := a.mount()
	if m == nil {
		return a.Gallery(ctx)
	}
	if err := m.Refresh(ctx); err != nil {
		return err
	}
	if m.Kind() == feed.KindMine && m.RequiresRedirect() {
		fmt.Fprintln(a.out, "Session expired, redirecting.")
		return a.Gallery(ctx)
	}
	a.render(m)
	return nil
}

func (a *App) render(m *services.Mount) {
	switch m.View() {
	case models.ViewLoading:
		fmt.Fprintln(a.out, "Loading...")
	case models.ViewAuth:
		fmt.Fprintf(a.out, "Please log in or register (form mode: %s).\n", a.auth.Mode())
	case models.ViewGallery:
		posts := m.Visible()
		title := "Gallery"
		if m.Kind() == feed.KindMine {
			fmt.Fprintf(a.out, "Hi, %s\n", m.Session().Username)
			title = "My posts"
		}
		fmt.Fprintf(a.out, "%s (%d)\n", title, len(posts))
		if len(posts) == 0 && m.Kind() == feed.KindMine {
			fmt.Fprintln(a.out, "  No posts yet.")
		}
		for _, p := range posts {
			caption := p.CaptionText()
			if caption == "" {
				caption = "(captioning...)"
			}
			fmt.Fprintf(a.out, "  [%s] %s\n      %s\n", p.ID, caption, p.ImageURL)
		}
		a.renderFetchErr(m)
	}
}

func (a *App) renderFetchErr(m *services.Mount) {
	if m.FetchErr() == nil {
		return
	}
	if m.Populated() {
		fmt.Fprintln(a.out, "  (could not refresh, showing previous posts)")
		return
	}
	fmt.Fprintln(a.out, "  (could not load posts)")
}

func (a *App) uploads() (*upload.Pipeline, error) {
	m := a.mount()
	if m == nil || m.Uploads() == nil {
		fmt.Fprintln(a.out, "Open your profile first.")
		return nil, common.ErrViewClosed
	}
	return m.Uploads(), nil
}

// Select reads path and makes it the pending upload.
func (a *App) Select(ctx context.Context, path string) error {
	p, err := a.uploads()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(a.out, "Cannot read %s: %v\n", path, err)
		return err
	}

	pending, err := p.Select(filepath.Base(path), data)
	if err != nil {
		fmt.Fprintf(a.out, "Cannot use %s: %v\n", path, err)
		return err
	}
	fmt.Fprintf(a.out, "Selected %s (%s, %d bytes), preview %s\n",
		pending.FileName, pending.ContentType, pending.Size(), pending.PreviewURL)
	return nil
}

// Post submits the pending upload. Caption generation happens during the
// request, so this blocks until the post comes back captioned.
func (a *App) Post(ctx context.Context) error {
	p, err := a.uploads()
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Posting, this may take a while...")
	post, err := p.Submit(ctx)
	switch {
	case errors.Is(err, upload.ErrNoFile):
		fmt.Fprintln(a.out, "Please select an image first: select <path>")
		return err
	case errors.Is(err, common.ErrUnauthorized):
		fmt.Fprintln(a.out, "Please log in first.")
		return err
	case errors.Is(err, upload.ErrBusy):
		fmt.Fprintln(a.out, "An upload is already in progress.")
		return err
	case err != nil:
		fmt.Fprintln(a.out, "Upload failed, the file is still selected; run 'post' to retry.")
		return err
	}

	fmt.Fprintf(a.out, "Posted [%s] %s\n", post.ID, post.CaptionText())
	if m := a.mount(); m != nil {
		a.render(m)
	}
	return nil
}

// Pending shows the upload form state.
func (a *App) Pending(ctx context.Context) error {
	p, err := a.uploads()
	if err != nil {
		return err
	}
	pending := p.Pending()
	if pending == nil {
		fmt.Fprintf(a.out, "Upload: %s, no file selected\n", p.State())
		return nil
	}
	fmt.Fprintf(a.out, "Upload: %s, %s (%s, %d bytes), preview %s\n",
		p.State(), pending.FileName, pending.ContentType, pending.Size(), pending.PreviewURL)
	return nil
}

// Status prints the session belief and the open view.
func (a *App) Status(ctx context.Context) error {
	s := a.session()
	fmt.Fprintf(a.out, "Session: %s\n", s.Status)
	if s.IsAuthenticated() {
		fmt.Fprintf(a.out, "User: %s\n", s.Username)
	}
	if m := a.mount(); m != nil {
		fmt.Fprintf(a.out, "View: %s (%s)\n", m.Kind(), m.View())
	}
	fmt.Fprintf(a.out, "Auth form mode: %s\n", a.auth.Mode())
	fmt.Fprintf(a.out, "API: %s\n", a.config.BaseURL())
	return nil
}
