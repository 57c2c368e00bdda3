package cli

import (
	"bufio"
	"context"
	"fmt"
)

func (a *App) getStatus() string {
	s := a.session()
	if s.IsAuthenticated() {
		return fmt.Sprintf("(%s)", s.Username)
	}
	return fmt.Sprintf("(%s)", s.Status)
}

// Root greets the user, opens the gallery and runs the REPL on a.reader.
func (a *App) Root(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to capgallery (type 'help' for commands)")

	if err := a.Gallery(ctx); err != nil {
		a.logger.Warn(ctx, "initial gallery load interrupted", "error", err)
	}

	runREPL(ctx, a, a.getStatus, bufio.NewScanner(&lineReader{r: a.reader}))
}
