package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

// spinnerFrames and spinnerInterval drive the status animation.
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

// spinner animates a one-line status while a slow step runs: Graphviz
// layout, photo encoding or an export to a remote store. On anything other
// than a terminal it stays silent so piped output and logs are not garbled.
type spinner struct {
	w       io.Writer
	message string
	animate bool

	parent  context.Context
	ctx     context.Context
	cancel  context.CancelFunc
	stopped chan struct{}

	startOnce sync.Once
	stopOnce  sync.Once
}

// newSpinner returns a spinner bound to ctx. Cancelling ctx stops the
// animation without waiting for the step to finish.
func newSpinner(ctx context.Context, w io.Writer, message string) *spinner {
	sctx, cancel := context.WithCancel(ctx)
	return &spinner{
		w:       w,
		message: message,
		animate: isTerminal(w),
		parent:  ctx,
		ctx:     sctx,
		cancel:  cancel,
		stopped: make(chan struct{}),
	}
}

// renderSpinner shows progress of a Graphviz run for the given formats.
func renderSpinner(ctx context.Context, w io.Writer, formats []string) *spinner {
	return newSpinner(ctx, w, fmt.Sprintf("Rendering diagram (%s)...", strings.Join(formats, ", ")))
}

// photoSpinner shows progress of reading and encoding n photo files.
func photoSpinner(ctx context.Context, w io.Writer, n int) *spinner {
	noun := "photos"
	if n == 1 {
		noun = "photo"
	}
	return newSpinner(ctx, w, fmt.Sprintf("Encoding %d %s...", n, noun))
}

// exportSpinner shows progress of writing the snapshot through a store driver.
func exportSpinner(ctx context.Context, w io.Writer, driver string) *spinner {
	return newSpinner(ctx, w, fmt.Sprintf("Exporting snapshot from %s storage...", driver))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

// start begins the animation. It is a no-op after the first call.
func (s *spinner) start() {
	s.startOnce.Do(func() {
		if !s.animate {
			close(s.stopped)
			return
		}
		go s.loop()
	})
}

func (s *spinner) loop() {
	defer close(s.stopped)
	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()

	for i := 0; ; i++ {
		s.draw(spinnerFrames[i%len(spinnerFrames)])
		select {
		case <-s.ctx.Done():
			s.clear()
			return
		case <-ticker.C:
		}
	}
}

func (s *spinner) draw(frame string) {
	fmt.Fprintf(s.w, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(s.message))
}

func (s *spinner) clear() {
	fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", len([]rune(s.message))+2))
}

// stop ends the animation and waits for the line to be cleared. Calling it
// more than once, or without start, is safe.
func (s *spinner) stop() {
	s.stopOnce.Do(func() {
		s.cancel()
		s.startOnce.Do(func() { close(s.stopped) })
		<-s.stopped
	})
}

// cancelled reports whether the context passed to newSpinner ended.
func (s *spinner) cancelled() bool {
	return s.parent.Err() != nil
}

// run shows the spinner while fn runs and prints a failure line when fn
// returns an error.
func (s *spinner) run(fn func() error) error {
	s.start()
	err := fn()
	s.stop()
	if err != nil && s.animate {
		printError("%s failed", strings.TrimSuffix(s.message, "..."))
	}
	return err
}
