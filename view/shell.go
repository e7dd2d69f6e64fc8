package view

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/itiky/employee-sync/model"
	"github.com/itiky/employee-sync/service/client"
)

const shellHelp = `Commands:
  list                  show the local list
  load                  fetch the list from the server
  add                   open the form to add an employee
  edit <id>             open the form to update an employee
  set <field> <value>   set a form field (name, salary, age)
  form                  show the form
  save                  submit the form
  cancel                close the form
  delete <id>           delete an employee
  wait                  wait for in-flight requests
  help                  show this message
  quit                  wait for in-flight requests and exit`

type (
	// Controller is the RecordSyncController API used by the Shell.
	Controller interface {
		Records() model.RecordList
		Pending() model.PendingEdit
		FormState() client.FormState
		Load(ctx context.Context) error
		BeginCreate()
		BeginUpdate(id model.RecordId)
		SetField(fieldName, value string) error
		Submit(ctx context.Context) error
		Delete(ctx context.Context, id model.RecordId) error
		CancelForm()
	}

	// Shell is a line based view driving the Controller.
	// Remote operations are dispatched in background, so the shell keeps reading input meanwhile.
	Shell struct {
		ctrl Controller
		in   io.Reader
		out  io.Writer
		//
		inFlight sync.WaitGroup
		log      *log.Entry
	}

	// SyncWriter serializes writes of the shell and notifiers sharing the same output.
	SyncWriter struct {
		sync.Mutex
		w io.Writer
	}
)

// Run reads commands until "quit", EOF or context cancellation.
// In-flight operations are awaited before return.
func (s *Shell) Run(ctx context.Context) error {
	defer s.inFlight.Wait()

	doneCh := make(chan struct{})
	defer close(doneCh)

	lines := make(chan string)
	scanErrCh := make(chan error, 1)
	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(s.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-doneCh:
				return
			}
		}
		scanErrCh <- scanner.Err()
	}()

	s.printf("%s\n", shellHelp)
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				if err := <-scanErrCh; err != nil {
					return fmt.Errorf("reading input: %w", err)
				}
				return nil
			}
			if quit := s.handle(ctx, line); quit {
				return nil
			}
		}
	}
}

// handle executes a single command line, returns true on quit.
func (s *Shell) handle(ctx context.Context, line string) bool {
	args := strings.Fields(line)
	if len(args) == 0 {
		return false
	}
	cmd, args := strings.ToLower(args[0]), args[1:]
	s.log.Debugf("command: %s %v", cmd, args)

	switch cmd {
	case "quit", "exit":
		return true
	case "help":
		s.printf("%s\n", shellHelp)
	case "list":
		s.render(func(w io.Writer) { RenderCards(w, s.ctrl.Records()) })
	case "form":
		s.render(func(w io.Writer) { RenderForm(w, s.ctrl.FormState(), s.ctrl.Pending()) })
	case "load":
		s.dispatch(func() {
			if err := s.ctrl.Load(ctx); err != nil {
				return
			}
			s.render(func(w io.Writer) { RenderCards(w, s.ctrl.Records()) })
		})
	case "add":
		s.ctrl.BeginCreate()
		s.render(func(w io.Writer) { RenderForm(w, s.ctrl.FormState(), s.ctrl.Pending()) })
	case "edit":
		if len(args) != 1 {
			s.printf("usage: edit <id>\n")
			return false
		}
		s.ctrl.BeginUpdate(model.RecordId(args[0]))
		s.render(func(w io.Writer) { RenderForm(w, s.ctrl.FormState(), s.ctrl.Pending()) })
	case "set":
		if len(args) < 1 {
			s.printf("usage: set <field> <value>\n")
			return false
		}
		if err := s.ctrl.SetField(args[0], strings.Join(args[1:], " ")); err != nil {
			s.printf("set: %v\n", err)
		}
	case "save":
		s.dispatch(func() {
			if err := s.ctrl.Submit(ctx); errors.Is(err, client.ErrFormClosed) {
				s.printf("save: %v\n", err)
			}
		})
	case "cancel":
		s.ctrl.CancelForm()
	case "delete":
		if len(args) != 1 {
			s.printf("usage: delete <id>\n")
			return false
		}
		id := model.RecordId(args[0])
		s.dispatch(func() {
			_ = s.ctrl.Delete(ctx, id)
		})
	case "wait":
		s.inFlight.Wait()
	default:
		s.printf("unknown command %q (try \"help\")\n", cmd)
	}

	return false
}

// dispatch runs the operation in background.
// Failures are already logged and notified by the Controller.
func (s *Shell) dispatch(op func()) {
	s.inFlight.Add(1)
	go func() {
		defer s.inFlight.Done()
		op()
	}()
}

// render builds the output first, so it is written at once.
func (s *Shell) render(fn func(w io.Writer)) {
	buf := &bytes.Buffer{}
	fn(buf)

	s.out.Write(buf.Bytes())
}

func (s *Shell) printf(format string, args ...interface{}) {
	fmt.Fprintf(s.out, format, args...)
}

// Write implements io.Writer.
func (w *SyncWriter) Write(p []byte) (int, error) {
	w.Lock()
	defer w.Unlock()

	return w.w.Write(p)
}

// NewSyncWriter creates a new SyncWriter object.
func NewSyncWriter(w io.Writer) *SyncWriter {
	return &SyncWriter{w: w}
}

// NewShell creates a new Shell object.
func NewShell(ctrl Controller, in io.Reader, out io.Writer) *Shell {
	return &Shell{
		ctrl: ctrl,
		in:   in,
		out:  out,
		log:  log.WithField("component", "shell"),
	}
}
