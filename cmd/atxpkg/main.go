package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"golang.org/x/xerrors"

	"github.com/rpodgorny/atxpkg"
)

var debug = false

func funcmain() error {
	args := os.Args[1:]
	verb := "list_installed"
	if len(args) > 0 {
		verb, args = args[0], args[1:]
	}

	ctx, canc := atxpkg.InterruptibleContext()
	defer canc()

	fn, ok := verbs[verb]
	if !ok {
		return xerrors.Errorf("unknown command %q; syntax: atxpkg <command> [options]", verb)
	}
	return fn(ctx, args)
}

var verbs = map[string]func(context.Context, []string) error{
	"install":        cmdInstall,
	"update":         cmdUpdate,
	"remove":         cmdRemove,
	"check":          cmdCheck,
	"list_available": cmdListAvailable,
	"list_installed": cmdListInstalled,
	"show_untracked": cmdShowUntracked,
	"clean_cache":    cmdCleanCache,
}

func setupLog(logPath string) (io.Closer, error) {
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	log.SetOutput(io.MultiWriter(os.Stderr, f))
	log.SetFlags(log.LstdFlags)
	return f, nil
}

func main() {
	if err := funcmain(); err != nil {
		if debug {
			fmt.Fprintf(os.Stderr, "%+v\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "%v\n", err)
		}
		os.Exit(1)
	}
}
