package tui

import tea "github.com/charmbracelet/bubbletea"

// continueMsg carries a continuation back onto the event loop.
type continueMsg func()

// programLoop posts continuations to a running bubbletea program. It
// implements loop.Loop.
type programLoop struct {
	program *tea.Program
}

func (l *programLoop) Post(fn func()) {
	if fn == nil || l.program == nil {
		return
	}
	l.program.Send(continueMsg(fn))
}

func (l *programLoop) Go(work func() func()) {
	go func() {
		l.Post(work())
	}()
}
